package cqrs

// ---------- Bill queries ----------

type GetBillQuery struct {
	BillID           string
	RequestingUserID string
}

type ListBillsQuery struct {
	UserID string
}

// ---------- Schedule queries ----------

type GetScheduleQuery struct {
	UserID string
}

// ---------- Match queries ----------

// FindMatchesQuery computes ranked candidates for one of the caller's bills.
type FindMatchesQuery struct {
	UserID string
	BillID string
	Limit  int
}

// ---------- Swap queries ----------

type GetSwapQuery struct {
	SwapID           string
	RequestingUserID string
}

type ListSwapsQuery struct {
	UserID string
}

// ListDisputesQuery fetches the open disputes on one of the caller's swaps.
type ListDisputesQuery struct {
	SwapID           string
	RequestingUserID string
}

// ---------- Trust queries ----------

type GetTrustStatusQuery struct {
	UserID string
}
