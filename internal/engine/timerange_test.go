package engine

import "testing"

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantFrom string
		wantTo   string
	}{
		{"year", "2026", "2026-01-01 00:00:00", "2026-12-31 23:59:00"},
		{"month", "2026-07", "2026-07-01 00:00:00", "2026-07-31 23:59:00"},
		{"february leap year", "2024-02", "2024-02-01 00:00:00", "2024-02-29 23:59:00"},
		{"day", "2026-07-15", "2026-07-15 00:00:00", "2026-07-15 23:59:00"},
		{"hour", "2026-07-15 14", "2026-07-15 14:00:00", "2026-07-15 14:59:00"},
		{"minute", "2026-07-15 14:30", "2026-07-15 14:30:00", "2026-07-15 14:30:00"},
		{"december rolls into next year", "2026-12", "2026-12-01 00:00:00", "2026-12-31 23:59:00"},
		{"unpadded month", "2026-7", "2026-07-01 00:00:00", "2026-07-31 23:59:00"},
		{"last minute of hour", "2026-07-15 23", "2026-07-15 23:00:00", "2026-07-15 23:59:00"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			from, to, err := ParseTimeRange(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if from.String() != tc.wantFrom {
				t.Fatalf("from = %s, want %s", from.String(), tc.wantFrom)
			}
			if to.String() != tc.wantTo {
				t.Fatalf("to = %s, want %s", to.String(), tc.wantTo)
			}
		})
	}
}

func TestParseTimeRangeErrors(t *testing.T) {
	inputs := []string{
		"",
		"abcd",
		"2026-",
		"2026-13",
		"2026-02-30",
		"2026-07-15 25",
		"2026-07-15 14:60",
		"2026-07-15 14:30 extra",
		"2026-07-15T14:30",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			if _, _, err := ParseTimeRange(in); err == nil {
				t.Fatalf("expected a parse error for %q", in)
			}
		})
	}
}
