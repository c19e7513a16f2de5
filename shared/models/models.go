package models

import "time"

// Bill categories. Tier privileges widen over this set, so the order here
// mirrors the order in which categories unlock.
const (
	CategoryStreaming = "streaming"
	CategoryTelecom   = "telecom"
	CategoryUtilities = "utilities"
	CategoryInsurance = "insurance"
	CategoryRent      = "rent"
	CategoryOther     = "other"
)

// Payday schedule types.
const (
	ScheduleWeekly      = "weekly"
	ScheduleBiweekly    = "biweekly"
	ScheduleSemiMonthly = "semi_monthly"
	ScheduleMonthly     = "monthly"
)

// Swap statuses. completed, failed, cancelled and refunded are terminal.
const (
	SwapPending      = "pending"
	SwapMatched      = "matched"
	SwapFeePending   = "fee_pending"
	SwapFeePaid      = "fee_paid"
	SwapLegAComplete = "leg_a_complete"
	SwapLegBComplete = "leg_b_complete"
	SwapCompleted    = "completed"
	SwapDisputed     = "disputed"
	SwapFailed       = "failed"
	SwapCancelled    = "cancelled"
	SwapRefunded     = "refunded"
)

// Dispute statuses.
const (
	DisputeOpen     = "open"
	DisputeResolved = "resolved"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	PhoneNumber  string    `json:"phoneNumber"`
	CreatedAt    time.Time `json:"createdTimestamp"`
	UpdatedAt    time.Time `json:"updatedTimestamp"`
}

// Bill is a recurring obligation owned by a single user. Bills are never
// hard-deleted: deactivation preserves the history of swaps that reference them.
type Bill struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Category  string    `json:"category"`
	Provider  string    `json:"provider"`
	Amount    float64   `json:"amount"`
	DueDay    int       `json:"dueDay"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdTimestamp"`
	UpdatedAt time.Time `json:"updatedTimestamp"`
}

// PaydaySchedule is a user's income cadence. At most one active schedule
// exists per user; replacing it deactivates the previous one.
type PaydaySchedule struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	Type       string    `json:"type"`
	AnchorDays []int     `json:"anchorDays"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"createdTimestamp"`
	UpdatedAt  time.Time `json:"updatedTimestamp"`
}

// Swap is the authoritative settlement record between exactly two parties.
// Side A is always the initiating party. All mutations go through
// status-preconditioned updates; see repository.SwapWriteRepository.
type Swap struct {
	ID     string `json:"id"`
	Status string `json:"status"`

	UserAID           string     `json:"userAId"`
	BillAID           string     `json:"billAId"`
	AmountA           float64    `json:"amountA"`
	FeeAPaid          bool       `json:"feeAPaid"`
	FeeATransactionID string     `json:"-"`
	ScreenshotARef    string     `json:"-"`
	ConfidenceA       float64    `json:"confidenceA"`
	DispositionA      string     `json:"dispositionA,omitempty"`
	CompletedAAt      *time.Time `json:"completedATimestamp,omitempty"`

	UserBID           string     `json:"userBId"`
	BillBID           string     `json:"billBId"`
	AmountB           float64    `json:"amountB"`
	FeeBPaid          bool       `json:"feeBPaid"`
	FeeBTransactionID string     `json:"-"`
	ScreenshotBRef    string     `json:"-"`
	ConfidenceB       float64    `json:"confidenceB"`
	DispositionB      string     `json:"dispositionB,omitempty"`
	CompletedBAt      *time.Time `json:"completedBTimestamp,omitempty"`

	MatchScore  float64   `json:"matchScore"`
	WindowStart time.Time `json:"windowStart"`
	Deadline    time.Time `json:"deadline"`
	GhostedBy   string    `json:"ghostedBy,omitempty"`

	CreatedAt time.Time `json:"createdTimestamp"`
	UpdatedAt time.Time `json:"updatedTimestamp"`
}

// TrustStatus is the per-user reputation record. Points never go below zero
// and a set ban flag is terminal: nothing in this service ever clears it.
type TrustStatus struct {
	UserID          string    `json:"userId"`
	Tier            int       `json:"tier"`
	Points          int       `json:"points"`
	SuccessfulSwaps int       `json:"successfulSwaps"`
	TierSuccesses   int       `json:"tierSuccesses"`
	FailedSwaps     int       `json:"failedSwaps"`
	GhostedSwaps    int       `json:"ghostedSwaps"`
	Banned          bool      `json:"banned"`
	BanReason       string    `json:"banReason,omitempty"`
	EmailVerified   bool      `json:"emailVerified"`
	PhoneVerified   bool      `json:"phoneVerified"`
	GovIDVerified   bool      `json:"govIdVerified"`
	AverageRating   float64   `json:"averageRating"`
	RatingCount     int       `json:"ratingCount"`
	CreatedAt       time.Time `json:"createdTimestamp"`
	UpdatedAt       time.Time `json:"updatedTimestamp"`
}

// Dispute records a contested or ghosted swap for manual resolution.
type Dispute struct {
	ID        string    `json:"id"`
	SwapID    string    `json:"swapId"`
	OpenedBy  string    `json:"openedBy"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdTimestamp"`
}

// TerminalSwapStatuses is the absorbing set of the swap lifecycle.
var TerminalSwapStatuses = map[string]bool{
	SwapCompleted: true,
	SwapFailed:    true,
	SwapCancelled: true,
	SwapRefunded:  true,
}
