// Package swap defines the swap lifecycle graph. The rules here are pure;
// the command service owns orchestration and persistence, and every
// transition it applies must be legal under CanTransition.
package swap

import (
	"github.com/BillixOfficial/Billix-sub006/shared/models"
)

// transitions is the legal edge set of the lifecycle graph.
//
//	pending -> matched -> fee_pending -> fee_paid -> leg_a_complete | leg_b_complete -> completed
//
// with side branches to disputed, failed, cancelled and refunded.
// Cancellation is only reachable pre-fee (pending, matched) by the initiator,
// or via the deadline sweep while fees were never both paid (fee_pending).
// Once money has moved (fee_paid and later), an elapsed deadline fails the
// swap with ghosting semantics instead.
var transitions = map[string][]string{
	models.SwapPending:    {models.SwapMatched, models.SwapCancelled},
	models.SwapMatched:    {models.SwapFeePending, models.SwapCancelled},
	models.SwapFeePending: {models.SwapFeePaid, models.SwapCancelled},
	models.SwapFeePaid: {
		models.SwapLegAComplete,
		models.SwapLegBComplete,
		models.SwapDisputed,
		models.SwapFailed,
	},
	models.SwapLegAComplete: {models.SwapCompleted, models.SwapDisputed, models.SwapFailed},
	models.SwapLegBComplete: {models.SwapCompleted, models.SwapDisputed, models.SwapFailed},
	// Dispute resolution happens out-of-band; the administrative process can
	// close a dispute in any terminal direction.
	models.SwapDisputed: {models.SwapCompleted, models.SwapFailed, models.SwapRefunded},
}

// CanTransition reports whether from -> to is a legal lifecycle edge.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status is absorbing.
func IsTerminal(status string) bool {
	return models.TerminalSwapStatuses[status]
}

// Ghostable reports whether an elapsed deadline in this state means a party
// abandoned the swap after money moved.
func Ghostable(status string) bool {
	switch status {
	case models.SwapFeePaid, models.SwapLegAComplete, models.SwapLegBComplete:
		return true
	}
	return false
}

// AutoCancellable reports whether an elapsed deadline cancels the swap
// without ghosting: fees were never both paid, so nobody is on the hook.
func AutoCancellable(status string) bool {
	switch status {
	case models.SwapPending, models.SwapMatched, models.SwapFeePending:
		return true
	}
	return false
}

// Ghosters returns the user IDs whose legs were incomplete when the deadline
// elapsed. In a leg_x_complete state that is exactly the counterpart; at
// fee_paid neither side performed, so both take the strike.
func Ghosters(s *models.Swap) []string {
	var ghosters []string
	if s.CompletedAAt == nil {
		ghosters = append(ghosters, s.UserAID)
	}
	if s.CompletedBAt == nil {
		ghosters = append(ghosters, s.UserBID)
	}
	return ghosters
}

// LegCompleteStatus names the single-leg-complete state for the side that
// just finished: side A yields leg_a_complete, side B leg_b_complete.
func LegCompleteStatus(isSideA bool) string {
	if isSideA {
		return models.SwapLegAComplete
	}
	return models.SwapLegBComplete
}
