package matching

import (
	"sort"
	"time"
)

// Score weights. Tunable; must sum to 1.0 so scores stay in [0, 1].
const (
	TimingWeight     = 0.4
	AmountWeight     = 0.3
	OppositionWeight = 0.3
)

// MinMatchScore is the floor below which candidates are discarded.
const MinMatchScore = 0.5

// ExecutionWindowLength is how long both parties have to complete their
// legs once the window opens.
const ExecutionWindowLength = 24 * time.Hour

// Input describes one potential pairing: the searching user (A) and a
// counterpart (B), each with their bill amount, bill due day and payday
// calendar.
type Input struct {
	AmountA  float64
	DueDayA  int
	PaydaysA []int

	AmountB  float64
	DueDayB  int
	PaydaysB []int
}

// AmountSimilarity is 1 − |Δamount| / max(a, b), and 1.0 when both amounts
// are zero (two free bills are perfectly similar).
func AmountSimilarity(a, b float64) float64 {
	if a == 0 && b == 0 {
		return 1.0
	}
	maxAmount := a
	if b > maxAmount {
		maxAmount = b
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return 1.0 - diff/maxAmount
}

// Score combines timing, amount similarity and calendar opposition into a
// single match score in [0, 1]. Timing is symmetric: each side's paydays are
// scored against the other side's due day and the two are averaged.
func Score(in Input) float64 {
	timing := (TimingScore(in.PaydaysA, in.DueDayB) + TimingScore(in.PaydaysB, in.DueDayA)) / 2
	amount := AmountSimilarity(in.AmountA, in.AmountB)
	opposition := OppositionScore(in.PaydaysA, in.PaydaysB)
	return TimingWeight*timing + AmountWeight*amount + OppositionWeight*opposition
}

// ExecutionWindow computes [start, end] for a swap: start is the earliest
// upcoming payday among both parties after now, end is start plus 24 hours.
// If no payday remains in the current cycle, the window rolls to the first
// anchor day of the next cycle. Returns zero times when both calendars are
// empty.
func ExecutionWindow(paydaysA, paydaysB []int, now time.Time) (time.Time, time.Time) {
	days := append(append([]int{}, paydaysA...), paydaysB...)
	if len(days) == 0 {
		return time.Time{}, time.Time{}
	}
	sort.Ints(days)

	today := now.Day()
	start := time.Time{}
	for _, d := range days {
		if d > today {
			start = dayOfMonth(now, d)
			break
		}
	}
	if start.IsZero() {
		// Cycle exhausted: roll to the first anchor day next month.
		start = dayOfMonth(now.AddDate(0, 1, 0), days[0])
	}
	return start, start.Add(ExecutionWindowLength)
}

// dayOfMonth returns midnight UTC on the given day of ref's month, clamping
// days past the end of the month (e.g. day 31 in February) to the last day.
func dayOfMonth(ref time.Time, day int) time.Time {
	firstOfMonth := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfMonth.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(ref.Year(), ref.Month(), day, 0, 0, 0, 0, time.UTC)
}

// Candidate pairs an opaque ID with its score, for ranking.
type Candidate struct {
	ID    string
	Score float64
}

// Rank filters out candidates below MinMatchScore, sorts the rest descending
// by score and truncates to limit. The sort breaks ties on ID so ranking is
// deterministic for identical inputs.
func Rank(candidates []Candidate, limit int) []Candidate {
	kept := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Score >= MinMatchScore {
			kept = append(kept, c)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Score != kept[j].Score {
			return kept[i].Score > kept[j].Score
		}
		return kept[i].ID < kept[j].ID
	})
	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}
