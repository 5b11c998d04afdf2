package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/logrange/internal/common"
)

type fakeGC struct {
	calls int32
}

func (f *fakeGC) RunValueLogGC(discardRatio float64) error {
	atomic.AddInt32(&f.calls, 1)
	return nil
}

func TestSchedulerRunsRegisteredJob(t *testing.T) {
	fake := &fakeGC{}
	s := New(fake, arbor.NewLogger())

	if err := s.Start(common.SchedulerConfig{Enabled: true, Schedule: "@every 1s"}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(&fake.calls) > 0 {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("ledger GC job never ran")
}

func TestSchedulerRejectsInvalidSchedule(t *testing.T) {
	fake := &fakeGC{}
	s := New(fake, arbor.NewLogger())

	if err := s.Start(common.SchedulerConfig{Enabled: true, Schedule: "not a cron expression"}); err == nil {
		t.Fatal("expected error for invalid cron schedule")
	}
}

func TestSchedulerDisabledSkipsRegistration(t *testing.T) {
	fake := &fakeGC{}
	s := New(fake, arbor.NewLogger())

	if err := s.Start(common.SchedulerConfig{Enabled: false}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if atomic.LoadInt32(&fake.calls) != 0 {
		t.Fatalf("disabled scheduler ran GC anyway")
	}
}
