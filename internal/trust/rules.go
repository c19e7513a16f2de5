// Package trust holds the reputation rules: point deltas, ghost-strike
// banning and tier graduation requirements. The functions are pure; the
// trust repository applies the resulting deltas atomically in SQL so that
// concurrent awards for the same user cannot race.
package trust

import (
	"errors"

	"github.com/BillixOfficial/Billix-sub006/shared/models"
)

// Point awards.
const (
	SuccessPoints = 50
	OnTimeBonus   = 10
)

// GhostStrikesForBan is the hard ban threshold. The third strike bans
// irrespective of tier or point total, and nothing in this service lifts it.
const GhostStrikesForBan = 3

// BanReasonGhosting is recorded when the strike threshold is hit.
const BanReasonGhosting = "three ghost strikes"

// ratingDeltas maps a 1-5 star rating to its point delta. Deliberately
// nonlinear: praise is cheap, a one-star review hurts.
var ratingDeltas = map[int]int{
	5: 5,
	4: 2,
	3: 0,
	2: -3,
	1: -5,
}

var ErrInvalidRating = errors.New("rating must be between 1 and 5 stars")

// SuccessDelta is the point award for a completed swap.
func SuccessDelta(onTime bool) int {
	if onTime {
		return SuccessPoints + OnTimeBonus
	}
	return SuccessPoints
}

// RatingDelta is the point delta for a star rating.
func RatingDelta(stars int) (int, error) {
	delta, ok := ratingDeltas[stars]
	if !ok {
		return 0, ErrInvalidRating
	}
	return delta, nil
}

// Tier describes one rung of the trust ladder. Privileges are strictly
// monotonic in the ordinal: each tier's max amount is higher and its
// category set a superset of the tier below.
type Tier struct {
	Ordinal            int
	Name               string
	SuccessesToAdvance int
	MinRating          float64 // 0 means no rating requirement
	RequirePhone       bool
	RequireGovID       bool
	MaxSwapAmount      float64
	Categories         []string
}

// Tiers is the ladder, ordered by ordinal. Every user starts at tier 1.
var Tiers = []Tier{
	{
		Ordinal:            1,
		Name:               "starter",
		SuccessesToAdvance: 5,
		MaxSwapAmount:      100,
		Categories:         []string{models.CategoryStreaming, models.CategoryTelecom},
	},
	{
		Ordinal:            2,
		Name:               "bronze",
		SuccessesToAdvance: 15,
		MinRating:          3.5,
		RequirePhone:       true,
		MaxSwapAmount:      250,
		Categories: []string{
			models.CategoryStreaming, models.CategoryTelecom, models.CategoryUtilities,
		},
	},
	{
		Ordinal:            3,
		Name:               "silver",
		SuccessesToAdvance: 40,
		MinRating:          4.0,
		RequirePhone:       true,
		MaxSwapAmount:      500,
		Categories: []string{
			models.CategoryStreaming, models.CategoryTelecom, models.CategoryUtilities,
			models.CategoryInsurance, models.CategoryOther,
		},
	},
	{
		Ordinal:       4,
		Name:          "gold",
		MinRating:     4.5,
		RequirePhone:  true,
		RequireGovID:  true,
		MaxSwapAmount: 1000,
		Categories: []string{
			models.CategoryStreaming, models.CategoryTelecom, models.CategoryUtilities,
			models.CategoryInsurance, models.CategoryOther, models.CategoryRent,
		},
	},
}

// Graduation failure reasons. graduate fails closed: the first unmet
// requirement aborts with a reason and the tier is left untouched.
var (
	ErrMaxTier              = errors.New("already at the highest tier")
	ErrInsufficientSwaps    = errors.New("not enough successful swaps at current tier")
	ErrRatingTooLow         = errors.New("average rating below tier requirement")
	ErrVerificationRequired = errors.New("identity verification requirements not met")
)

// TierByOrdinal returns the tier for an ordinal, defaulting to the first
// tier for anything out of range.
func TierByOrdinal(ordinal int) Tier {
	for _, t := range Tiers {
		if t.Ordinal == ordinal {
			return t
		}
	}
	return Tiers[0]
}

// CategoryAllowed reports whether a bill category is swappable at a tier.
func CategoryAllowed(t Tier, category string) bool {
	for _, c := range t.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// CheckGraduation validates every requirement for advancing one tier from
// the given status snapshot. It returns the next tier on success. The caller
// must still apply the advance with a tier-preconditioned update, since the
// snapshot may be stale.
func CheckGraduation(ts *models.TrustStatus) (Tier, error) {
	current := TierByOrdinal(ts.Tier)
	if current.Ordinal >= Tiers[len(Tiers)-1].Ordinal {
		return Tier{}, ErrMaxTier
	}
	next := TierByOrdinal(current.Ordinal + 1)

	if ts.TierSuccesses < current.SuccessesToAdvance {
		return Tier{}, ErrInsufficientSwaps
	}
	if next.MinRating > 0 && ts.RatingCount > 0 && ts.AverageRating < next.MinRating {
		return Tier{}, ErrRatingTooLow
	}
	if !ts.EmailVerified {
		return Tier{}, ErrVerificationRequired
	}
	if next.RequirePhone && !ts.PhoneVerified {
		return Tier{}, ErrVerificationRequired
	}
	if next.RequireGovID && !ts.GovIDVerified {
		return Tier{}, ErrVerificationRequired
	}
	return next, nil
}
