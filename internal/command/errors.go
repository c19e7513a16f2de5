package command

import "errors"

// Domain errors surfaced to the handler layer. Storage-level errors
// (repository.ErrNotFound, repository.ErrStaleStatus) pass through wrapped.
var (
	// ErrForbidden: the caller is not involved in (or does not own) the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrBanned: the user is banned and may not initiate or accept swaps.
	// Rejected at the authorization layer before any state mutation.
	ErrBanned = errors.New("banned")

	// ErrInvalidStatus: the requested transition is illegal from the swap's
	// current state. The caller must re-fetch before retrying.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrMaxActiveSwaps: the user is at the open-swap cap.
	ErrMaxActiveSwaps = errors.New("max active swaps reached")

	// ErrSwapConflict: a non-terminal swap already involves this (user, bill) pair.
	ErrSwapConflict = errors.New("bill already in an active swap")

	// ErrTierAmountLimit: a bill amount exceeds the user's tier maximum.
	ErrTierAmountLimit = errors.New("amount exceeds tier limit")

	// ErrTierCategory: a bill category is not swappable at the user's tier.
	ErrTierCategory = errors.New("category not allowed at tier")

	// ErrNoSchedule: a party has no active payday schedule, so no execution
	// window can be computed.
	ErrNoSchedule = errors.New("no active payday schedule")

	// ErrInactiveBill: the referenced bill has been deactivated.
	ErrInactiveBill = errors.New("bill is inactive")

	// ErrInvalidSchedule: the anchor days do not fit the schedule type.
	ErrInvalidSchedule = errors.New("anchor days invalid for schedule type")

	// ErrEmailTaken: registration attempted with an email already in use.
	ErrEmailTaken = errors.New("email already registered")
)
