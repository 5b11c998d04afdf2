package engine

// CountedQuery pairs an interned query with its observed count over some
// range. It is the element type selected by topKHeap.
type CountedQuery struct {
	QueryID uint64
	Text    string
	Count   int
}

// topKHeap is a fixed-capacity array-based binary min-heap keyed on Count,
// used to select the k largest CountedQuery values in O(n log k) instead
// of sorting the whole candidate set.
type topKHeap struct {
	items []CountedQuery
	cap   int
}

func newTopKHeap(k int) *topKHeap {
	return &topKHeap{items: make([]CountedQuery, 0, k), cap: k}
}

func (h *topKHeap) Len() int { return len(h.items) }

// Offer inserts c if the heap has room, or if c outranks the current
// minimum, evicting that minimum. Ties keep whichever entry arrived
// first.
func (h *topKHeap) Offer(c CountedQuery) {
	if h.cap == 0 {
		return
	}
	if len(h.items) < h.cap {
		h.items = append(h.items, c)
		h.siftUp(len(h.items) - 1)
		return
	}
	if c.Count <= h.items[0].Count {
		return
	}
	h.items[0] = c
	h.siftDown(0)
}

func (h *topKHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[parent].Count <= h.items[i].Count {
			break
		}
		h.items[parent], h.items[i] = h.items[i], h.items[parent]
		i = parent
	}
}

func (h *topKHeap) siftDown(i int) {
	n := len(h.items)
	for {
		left, right := 2*i+1, 2*i+2
		smallest := i
		if left < n && h.items[left].Count < h.items[smallest].Count {
			smallest = left
		}
		if right < n && h.items[right].Count < h.items[smallest].Count {
			smallest = right
		}
		if smallest == i {
			return
		}
		h.items[smallest], h.items[i] = h.items[i], h.items[smallest]
		i = smallest
	}
}

// Drain empties the heap and returns its contents sorted by descending
// count (ties broken by QueryID for a stable, deterministic order).
func (h *topKHeap) Drain() []CountedQuery {
	out := make([]CountedQuery, len(h.items))
	copy(out, h.items)
	h.items = h.items[:0]

	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			a, b := out[j-1], out[j]
			if a.Count > b.Count || (a.Count == b.Count && a.QueryID <= b.QueryID) {
				break
			}
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
