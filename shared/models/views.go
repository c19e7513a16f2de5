package models

import "time"

// SwapView is the read-optimised projection of a swap. UserAID/UserBID are
// kept for involvement checks; the fee transaction IDs and screenshot refs
// never leave the write model.
type SwapView struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	UserAID      string     `json:"userAId"`
	BillAID      string     `json:"billAId"`
	AmountA      float64    `json:"amountA"`
	FeeAPaid     bool       `json:"feeAPaid"`
	ConfidenceA  float64    `json:"confidenceA"`
	DispositionA string     `json:"dispositionA,omitempty"`
	CompletedAAt *time.Time `json:"completedATimestamp,omitempty"`
	UserBID      string     `json:"userBId"`
	BillBID      string     `json:"billBId"`
	AmountB      float64    `json:"amountB"`
	FeeBPaid     bool       `json:"feeBPaid"`
	ConfidenceB  float64    `json:"confidenceB"`
	DispositionB string     `json:"dispositionB,omitempty"`
	CompletedBAt *time.Time `json:"completedBTimestamp,omitempty"`
	MatchScore   float64    `json:"matchScore"`
	WindowStart  time.Time  `json:"windowStart"`
	Deadline     time.Time  `json:"deadline"`
	GhostedBy    string     `json:"ghostedBy,omitempty"`
	CreatedAt    time.Time  `json:"createdTimestamp"`
	UpdatedAt    time.Time  `json:"updatedTimestamp"`
}

// TrustStatusView is the read-optimised projection of a trust record.
type TrustStatusView struct {
	UserID          string    `json:"userId"`
	Tier            int       `json:"tier"`
	TierName        string    `json:"tierName"`
	Points          int       `json:"points"`
	SuccessfulSwaps int       `json:"successfulSwaps"`
	TierSuccesses   int       `json:"tierSuccesses"`
	FailedSwaps     int       `json:"failedSwaps"`
	GhostedSwaps    int       `json:"ghostedSwaps"`
	Banned          bool      `json:"banned"`
	BanReason       string    `json:"banReason,omitempty"`
	AverageRating   float64   `json:"averageRating"`
	RatingCount     int       `json:"ratingCount"`
	UpdatedAt       time.Time `json:"updatedTimestamp"`
}

// MatchCandidate is ephemeral: computed on demand, never persisted, and
// discarded once a swap is created or the search re-runs.
type MatchCandidate struct {
	CounterpartUserID string    `json:"counterpartUserId"`
	CounterpartBill   Bill      `json:"counterpartBill"`
	OwnBillID         string    `json:"ownBillId"`
	Score             float64   `json:"score"`
	WindowStart       time.Time `json:"windowStart"`
	WindowEnd         time.Time `json:"windowEnd"`
}
