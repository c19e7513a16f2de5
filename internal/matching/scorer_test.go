package matching

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimingScore(t *testing.T) {
	tests := []struct {
		name     string
		paydays  []int
		dueDay   int
		expected float64
	}{
		{"payday one day before due", []int{14}, 15, 1.0},
		{"payday seven days before due", []int{8}, 15, 1.0},
		{"payday eight days before due", []int{7}, 15, 0.5},
		{"payday fourteen days before due", []int{1}, 15, 0.5},
		{"payday fifteen days before due", []int{15}, 30, 0.0},
		{"payday on due day", []int{15}, 15, 0.0},
		{"wraparound: payday 28, due day 2", []int{28}, 2, 1.0},
		{"wraparound: payday 25, due day 5", []int{25}, 5, 0.5},
		{"best payday wins", []int{1, 14}, 15, 1.0},
		{"empty calendar", nil, 15, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TimingScore(tt.paydays, tt.dueDay))
		})
	}
}

func TestOppositionScore(t *testing.T) {
	tests := []struct {
		name     string
		daysA    []int
		daysB    []int
		expected float64
	}{
		{"identical days", []int{1}, []int{1}, 0.0},
		{"ideal opposition", []int{1}, []int{16}, 1.0},
		{"five days apart", []int{1}, []int{6}, 5.0 / 15.0},
		{"wraparound distance", []int{30}, []int{2}, 3.0 / 15.0},
		{"closest pair counts", []int{1, 15}, []int{16}, 1.0 / 15.0},
		{"empty side scores zero", nil, []int{15}, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, OppositionScore(tt.daysA, tt.daysB), 1e-9)
		})
	}
}

func TestAmountSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, AmountSimilarity(14.99, 14.99))
	assert.Equal(t, 1.0, AmountSimilarity(0, 0))
	assert.InDelta(t, 0.5, AmountSimilarity(100, 50), 1e-9)
	assert.InDelta(t, 0.5, AmountSimilarity(50, 100), 1e-9)
}

func TestScorePerfectPairing(t *testing.T) {
	// Both sides get paid shortly before the other's due date, amounts match
	// and the calendars are maximally opposed.
	score := Score(Input{
		AmountA: 15.49, DueDayA: 20, PaydaysA: []int{1},
		AmountB: 15.49, DueDayB: 5, PaydaysB: []int{16},
	})
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestScoreIsSymmetricInTiming(t *testing.T) {
	a := Input{
		AmountA: 20, DueDayA: 10, PaydaysA: []int{1},
		AmountB: 20, DueDayB: 25, PaydaysB: []int{20},
	}
	b := Input{
		AmountA: 20, DueDayA: 25, PaydaysA: []int{20},
		AmountB: 20, DueDayB: 10, PaydaysB: []int{1},
	}
	assert.Equal(t, Score(a), Score(b))
}

func TestRank(t *testing.T) {
	candidates := []Candidate{
		{ID: "bil-c", Score: 0.8},
		{ID: "bil-a", Score: 0.9},
		{ID: "bil-d", Score: 0.3},
		{ID: "bil-b", Score: 0.9},
	}

	ranked := Rank(candidates, 0)
	require.Len(t, ranked, 3, "below-threshold candidate should be dropped")
	assert.Equal(t, "bil-a", ranked[0].ID)
	assert.Equal(t, "bil-b", ranked[1].ID, "ties break on ID")
	assert.Equal(t, "bil-c", ranked[2].ID)

	truncated := Rank(candidates, 2)
	require.Len(t, truncated, 2)
	assert.Equal(t, "bil-a", truncated[0].ID)
}

func TestRankDeterminism(t *testing.T) {
	candidates := []Candidate{
		{ID: "bil-x", Score: 0.7},
		{ID: "bil-y", Score: 0.7},
		{ID: "bil-z", Score: 0.7},
	}
	first := Rank(candidates, 0)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Rank(candidates, 0))
	}
}

func TestExecutionWindow(t *testing.T) {
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("earliest upcoming payday wins", func(t *testing.T) {
		start, end := ExecutionWindow([]int{15}, []int{20}, now)
		assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, start.Add(24*time.Hour), end)
	})

	t.Run("today does not count", func(t *testing.T) {
		start, _ := ExecutionWindow([]int{10}, []int{12}, now)
		assert.Equal(t, 12, start.Day())
	})

	t.Run("cycle exhausted rolls to next month", func(t *testing.T) {
		start, _ := ExecutionWindow([]int{1}, []int{5}, now)
		assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), start)
	})

	t.Run("day clamped to month length", func(t *testing.T) {
		feb := time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC)
		start, _ := ExecutionWindow([]int{31}, nil, feb)
		assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), start)
	})

	t.Run("empty calendars yield zero window", func(t *testing.T) {
		start, end := ExecutionWindow(nil, nil, now)
		assert.True(t, start.IsZero())
		assert.True(t, end.IsZero())
	})
}

func genDayOfMonth() gopter.Gen {
	return gen.IntRange(1, 31)
}

func TestScoreBoundsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("score stays within [0, 1]", prop.ForAll(
		func(amountA, amountB float64, dueA, dueB int, paydaysA, paydaysB []int) bool {
			s := Score(Input{
				AmountA: amountA, DueDayA: dueA, PaydaysA: paydaysA,
				AmountB: amountB, DueDayB: dueB, PaydaysB: paydaysB,
			})
			return s >= 0.0 && s <= 1.0
		},
		gen.Float64Range(0.01, 10000),
		gen.Float64Range(0.01, 10000),
		genDayOfMonth(),
		genDayOfMonth(),
		gen.SliceOf(genDayOfMonth()),
		gen.SliceOf(genDayOfMonth()),
	))

	properties.Property("opposition is symmetric", prop.ForAll(
		func(daysA, daysB []int) bool {
			return OppositionScore(daysA, daysB) == OppositionScore(daysB, daysA)
		},
		gen.SliceOf(genDayOfMonth()),
		gen.SliceOf(genDayOfMonth()),
	))

	properties.Property("empty calendar never scores timing credit", prop.ForAll(
		func(dueDay int) bool {
			return TimingScore(nil, dueDay) == 0.0
		},
		genDayOfMonth(),
	))

	properties.TestingRun(t)
}
