package cqrs

type CreateUserCommand struct {
	Name        string
	Email       string
	Password    string
	PhoneNumber string
}

type LoginCommand struct {
	Email    string
	Password string
}

type RefreshTokenCommand struct {
	Token string
}

type CreateBillCommand struct {
	UserID   string
	Category string
	Provider string
	Amount   float64
	DueDay   int
}

type UpdateBillCommand struct {
	BillID           string
	RequestingUserID string
	Provider         string
	Amount           float64
	DueDay           int
}

type DeactivateBillCommand struct {
	BillID           string
	RequestingUserID string
}

type SetScheduleCommand struct {
	UserID     string
	Type       string
	AnchorDays []int
}

// CreateSwapCommand opens a swap from a match candidate. The requesting
// user becomes side A.
type CreateSwapCommand struct {
	UserID            string
	BillID            string
	CounterpartUserID string
	CounterpartBillID string
	MatchScore        float64
}

type AcceptSwapCommand struct {
	SwapID           string
	RequestingUserID string
}

type CancelSwapCommand struct {
	SwapID           string
	RequestingUserID string
}

// PayFeeCommand authorizes the coordination fee for one side of a swap.
type PayFeeCommand struct {
	SwapID           string
	RequestingUserID string
	AccountToken     string
}

// SubmitProofCommand submits a payment screenshot for the caller's leg.
type SubmitProofCommand struct {
	SwapID           string
	RequestingUserID string
	Image            []byte
	ScreenshotRef    string
}

type RateSwapCommand struct {
	SwapID           string
	RequestingUserID string
	Stars            int
}

type GraduateCommand struct {
	UserID string
}
