package strategy

import (
	"container/heap"
	"math"

	"BreakoutSentinel/internal/model"
)

// target is one pending take-profit level of one entry.
type target struct {
	price   float64
	portion float64
	entry   int
	tier    int
}

// targetQueue orders pending targets by how soon price can reach them:
// lowest first for longs, highest first for shorts.
type targetQueue struct {
	items []target
	side  model.Side
}

func (q *targetQueue) Len() int { return len(q.items) }

func (q *targetQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.price != b.price {
		if q.side == model.SideShort {
			return a.price > b.price
		}
		return a.price < b.price
	}
	if a.entry != b.entry {
		return a.entry < b.entry
	}
	return a.tier < b.tier
}

func (q *targetQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }
func (q *targetQueue) Push(x any)   { q.items = append(q.items, x.(target)) }

func (q *targetQueue) Pop() any {
	old := q.items
	it := old[len(old)-1]
	q.items = old[:len(old)-1]
	return it
}

func (q *targetQueue) peek() target { return q.items[0] }

// RewardLadder turns each entry into a set of risk-multiple targets and fires them in one
// forward sweep: every candle pops all pending targets its range reaches. Each target
// fires at most once, on the first candle after its entry that trades through it.
// O(N log N) over the series instead of a forward scan per entry.
type RewardLadder struct {
	side    model.Side
	tiers   []model.RewardTier
	pending *targetQueue
	// whether any tier of an entry has fired
	reached map[int]bool
	order   []int
}

// NewRewardLadder returns an empty ladder for side.
func NewRewardLadder(side model.Side, tiers []model.RewardTier) *RewardLadder {
	return &RewardLadder{
		side:      side,
		tiers:     tiers,
		pending:   &targetQueue{side: side},
		reached:   make(map[int]bool),
	}
}

// Open registers an entry on candle i. The entry price is the close; the initial stop is
// the candle's low for longs and its high for shorts.
func (l *RewardLadder) Open(i int, c model.OHLCV) {
	entry := c.Close
	risk := entry - c.Low
	dir := 1.0
	if l.side == model.SideShort {
		risk = c.High - entry
		dir = -1.0
	}
	for k, t := range l.tiers {
		heap.Push(l.pending, target{
			price:   entry + dir*risk*t.Multiple,
			portion: t.Portion,
			entry:   i,
			tier:    k,
		})
	}
	if _, ok := l.reached[i]; !ok {
		l.order = append(l.order, i)
		l.reached[i] = false
	}
}

// Sweep fires every pending target reached by candle j.
func (l *RewardLadder) Sweep(j int, c model.OHLCV) []model.ExitEvent {
	var events []model.ExitEvent
	for l.pending.Len() > 0 && l.hits(l.pending.peek().price, c) {
		t := heap.Pop(l.pending).(target)
		l.reached[t.entry] = true
		events = append(events, model.ExitEvent{
			Side:       l.side,
			EntryIndex: t.entry,
			ExitIndex:  j,
			Portion:    t.portion,
			Level:      t.price,
			Reason:     model.ExitRewardTier,
		})
	}
	return events
}

// Flush fully closes, on candle last, every entry none of whose tiers was reached.
// Entries that took at least one partial exit are left alone.
func (l *RewardLadder) Flush(last int) []model.ExitEvent {
	var events []model.ExitEvent
	for _, i := range l.order {
		if l.reached[i] {
			continue
		}
		events = append(events, model.ExitEvent{
			Side:       l.side,
			EntryIndex: i,
			ExitIndex:  last,
			Portion:    1.0,
			Reason:     model.ExitEndOfData,
		})
	}
	l.pending.items = nil
	return events
}

func (l *RewardLadder) hits(price float64, c model.OHLCV) bool {
	if l.side == model.SideShort {
		return c.Low <= price
	}
	return c.High >= price
}

// ScanLadder applies the reward ladder to every entry in the series.
// Portions accumulate into the exit columns, capped at 1.0.
func ScanLadder(bars []model.OHLCV, skip []bool, enterLong, enterShort []int, p Params) (exitLong, exitShort []float64, events []model.ExitEvent) {
	n := len(bars)
	exitLong = make([]float64, n)
	exitShort = make([]float64, n)

	long := NewRewardLadder(model.SideLong, p.Tiers)
	short := NewRewardLadder(model.SideShort, p.Tiers)

	for j, c := range bars {
		if skip != nil && skip[j] {
			continue
		}
		// targets of earlier entries first, so an entry never fires on its own candle
		for _, ev := range long.Sweep(j, c) {
			exitLong[j] = math.Min(1, exitLong[j]+ev.Portion)
			events = append(events, ev)
		}
		for _, ev := range short.Sweep(j, c) {
			exitShort[j] = math.Min(1, exitShort[j]+ev.Portion)
			events = append(events, ev)
		}
		if enterLong[j] == 1 {
			long.Open(j, c)
		}
		if enterShort[j] == 1 {
			short.Open(j, c)
		}
	}

	if p.ForceExitAtEnd && n > 0 {
		last := n - 1
		for _, ev := range long.Flush(last) {
			exitLong[last] = 1.0
			events = append(events, ev)
		}
		for _, ev := range short.Flush(last) {
			exitShort[last] = 1.0
			events = append(events, ev)
		}
	}
	return exitLong, exitShort, events
}
