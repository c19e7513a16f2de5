// Package matching implements the schedule-alignment math and candidate
// scoring behind mirror-partner search. Everything here is a pure function:
// identical inputs always produce identical outputs, so results are
// reproducible and safe for unrestricted concurrent use.
package matching

// Calendars are lists of day-of-month integers (1-31) treated as a 31-day
// cycle with wraparound: day 30 and day 2 are 3 apart, not 28.
const cycleDays = 31

// Timing credit bands: a payday landing 1-7 days before a due date earns
// full credit, 8-14 days earns partial credit, anything else earns none.
const (
	fullCreditWindow    = 7
	partialCreditWindow = 14
	partialCredit       = 0.5
)

// idealOpposition is the maximal circular distance on a 31-day cycle;
// opposition is normalized against it.
const idealOpposition = 15.0

// daysBefore returns how many days before dueDay the payday falls, on the
// wrapped 31-day cycle. The result is in [0, 30].
func daysBefore(payday, dueDay int) int {
	gap := (dueDay - payday) % cycleDays
	if gap < 0 {
		gap += cycleDays
	}
	return gap
}

// TimingScore rewards a payday falling shortly before a due date. The best
// payday wins: full credit for 1-7 days before, partial for 8-14, else zero.
// An empty calendar scores zero rather than erroring.
func TimingScore(payerDays []int, dueDay int) float64 {
	best := 0.0
	for _, payday := range payerDays {
		gap := daysBefore(payday, dueDay)
		switch {
		case gap >= 1 && gap <= fullCreditWindow:
			return 1.0
		case gap > fullCreditWindow && gap <= partialCreditWindow:
			if partialCredit > best {
				best = partialCredit
			}
		}
	}
	return best
}

// circularDistance is the shorter way around the 31-day cycle between two days.
func circularDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	d %= cycleDays
	if wrapped := cycleDays - d; wrapped < d {
		return wrapped
	}
	return d
}

// OppositionScore measures how calendar-opposite two payday sets are: the
// minimum circular distance between any pair of days, normalized against an
// ideal opposition of 15 days and capped at 1.0. Either calendar being empty
// scores zero.
func OppositionScore(daysA, daysB []int) float64 {
	if len(daysA) == 0 || len(daysB) == 0 {
		return 0
	}
	minDist := cycleDays
	for _, a := range daysA {
		for _, b := range daysB {
			if d := circularDistance(a, b); d < minDist {
				minDist = d
			}
		}
	}
	score := float64(minDist) / idealOpposition
	if score > 1.0 {
		return 1.0
	}
	return score
}
