package events

import "time"

// Event types
const (
	SwapCreated   = "swap.created"
	SwapCompleted = "swap.completed"
	SwapDisputed  = "swap.disputed"
	SwapFailed    = "swap.failed"
	SwapCancelled = "swap.cancelled"
	SwapRated     = "swap.rated"
)

// Stream names
const (
	SwapEventsStream = "swap.events"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type SwapCreatedEvent struct {
	SwapID  string `json:"swapId"`
	UserAID string `json:"userAId"`
	UserBID string `json:"userBId"`
}

// SwapCompletedEvent awards trust points to both sides.
// OnTime is true when both legs finished before the execution deadline.
type SwapCompletedEvent struct {
	SwapID  string `json:"swapId"`
	UserAID string `json:"userAId"`
	UserBID string `json:"userBId"`
	OnTime  bool   `json:"onTime"`
}

type SwapDisputedEvent struct {
	SwapID    string `json:"swapId"`
	DisputeID string `json:"disputeId"`
}

// SwapFailedEvent carries the ghosters, if any: every user whose leg was
// still incomplete when the deadline elapsed. Empty for failures that are
// nobody's fault.
type SwapFailedEvent struct {
	SwapID         string   `json:"swapId"`
	UserAID        string   `json:"userAId"`
	UserBID        string   `json:"userBId"`
	GhostedUserIDs []string `json:"ghostedUserIds,omitempty"`
}

type SwapCancelledEvent struct {
	SwapID string `json:"swapId"`
}

// SwapRatedEvent records a 1-5 star rating of RatedUserID by RaterUserID.
type SwapRatedEvent struct {
	SwapID      string `json:"swapId"`
	RaterUserID string `json:"raterUserId"`
	RatedUserID string `json:"ratedUserId"`
	Stars       int    `json:"stars"`
}
