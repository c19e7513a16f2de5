package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BillixOfficial/Billix-sub006/internal/clients"
	"github.com/BillixOfficial/Billix-sub006/internal/command"
	"github.com/BillixOfficial/Billix-sub006/internal/proof"
	"github.com/BillixOfficial/Billix-sub006/internal/repository"
	"github.com/BillixOfficial/Billix-sub006/shared/cqrs"
	"github.com/BillixOfficial/Billix-sub006/shared/models"
	"github.com/gin-gonic/gin"
)

// ---- mock implementations ----

type mockSwapCommander struct {
	createFn func(cqrs.CreateSwapCommand) (*models.Swap, error)
	acceptFn func(cqrs.AcceptSwapCommand) (*models.Swap, error)
	cancelFn func(cqrs.CancelSwapCommand) (*models.Swap, error)
	payFeeFn func(cqrs.PayFeeCommand) (*models.Swap, error)
	proofFn  func(cqrs.SubmitProofCommand) (*models.Swap, *proof.Result, error)
	rateFn   func(cqrs.RateSwapCommand) error
}

func (m *mockSwapCommander) CreateSwap(cmd cqrs.CreateSwapCommand) (*models.Swap, error) {
	if m.createFn != nil {
		return m.createFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockSwapCommander) AcceptSwap(cmd cqrs.AcceptSwapCommand) (*models.Swap, error) {
	if m.acceptFn != nil {
		return m.acceptFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockSwapCommander) CancelSwap(cmd cqrs.CancelSwapCommand) (*models.Swap, error) {
	if m.cancelFn != nil {
		return m.cancelFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockSwapCommander) PayFee(_ context.Context, cmd cqrs.PayFeeCommand) (*models.Swap, error) {
	if m.payFeeFn != nil {
		return m.payFeeFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockSwapCommander) SubmitProof(_ context.Context, cmd cqrs.SubmitProofCommand) (*models.Swap, *proof.Result, error) {
	if m.proofFn != nil {
		return m.proofFn(cmd)
	}
	return nil, nil, fmt.Errorf("not configured")
}
func (m *mockSwapCommander) RateSwap(cmd cqrs.RateSwapCommand) error {
	if m.rateFn != nil {
		return m.rateFn(cmd)
	}
	return fmt.Errorf("not configured")
}

type mockSwapQuerier struct {
	getFn      func(cqrs.GetSwapQuery) (*models.SwapView, error)
	listFn     func(cqrs.ListSwapsQuery) ([]models.SwapView, error)
	disputesFn func(cqrs.ListDisputesQuery) ([]models.Dispute, error)
}

func (m *mockSwapQuerier) GetSwap(q cqrs.GetSwapQuery) (*models.SwapView, error) {
	if m.getFn != nil {
		return m.getFn(q)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockSwapQuerier) ListSwaps(q cqrs.ListSwapsQuery) ([]models.SwapView, error) {
	if m.listFn != nil {
		return m.listFn(q)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockSwapQuerier) ListDisputes(q cqrs.ListDisputesQuery) ([]models.Dispute, error) {
	if m.disputesFn != nil {
		return m.disputesFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helpers ----

func fakeAuthSwap(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	}
}

func newSwapTestRouter(cmds SwapCommander, qrys SwapQuerier, authUserID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(fakeAuthSwap(authUserID))
	h := NewSwapHandler(cmds, qrys)
	v1 := r.Group("/v1/swaps")
	v1.POST("", h.CreateSwap)
	v1.GET("", h.ListSwaps)
	v1.GET("/:swapId", h.GetSwap)
	v1.GET("/:swapId/disputes", h.ListDisputes)
	v1.POST("/:swapId/accept", h.AcceptSwap)
	v1.POST("/:swapId/cancel", h.CancelSwap)
	v1.POST("/:swapId/fee", h.PayFee)
	v1.POST("/:swapId/proof", h.SubmitProof)
	v1.POST("/:swapId/rating", h.RateSwap)
	return r
}

func swapDoRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ---- test data ----

var aTestSwap = &models.Swap{
	ID: "swp-001", Status: models.SwapPending,
	UserAID: "usr-001", BillAID: "bil-001", AmountA: 14.99,
	UserBID: "usr-002", BillBID: "bil-002", AmountB: 15.49,
	MatchScore: 0.8,
	CreatedAt:  time.Now(), UpdatedAt: time.Now(),
}

var aTestSwapView = &models.SwapView{
	ID: "swp-001", Status: models.SwapPending,
	UserAID: "usr-001", BillAID: "bil-001", AmountA: 14.99,
	UserBID: "usr-002", BillBID: "bil-002", AmountB: 15.49,
}

func aValidCreateSwapBody() map[string]interface{} {
	return map[string]interface{}{
		"billId":            "bil-001",
		"counterpartUserId": "usr-002",
		"counterpartBillId": "bil-002",
		"matchScore":        0.8,
	}
}

// ---- tests ----

func TestCreateSwap(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		createFn       func(cqrs.CreateSwapCommand) (*models.Swap, error)
		expectedStatus int
	}{
		{
			name:           "success - open a swap",
			body:           aValidCreateSwapBody(),
			createFn:       func(cmd cqrs.CreateSwapCommand) (*models.Swap, error) { return aTestSwap, nil },
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "bad request - missing fields",
			body:           map[string]interface{}{},
			createFn:       nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "forbidden - banned user",
			body: aValidCreateSwapBody(),
			createFn: func(cmd cqrs.CreateSwapCommand) (*models.Swap, error) {
				return nil, fmt.Errorf("%w: three ghost strikes", command.ErrBanned)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "conflict - bill already in an open swap",
			body: aValidCreateSwapBody(),
			createFn: func(cmd cqrs.CreateSwapCommand) (*models.Swap, error) {
				return nil, command.ErrSwapConflict
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "unprocessable - amount above tier limit",
			body: aValidCreateSwapBody(),
			createFn: func(cmd cqrs.CreateSwapCommand) (*models.Swap, error) {
				return nil, command.ErrTierAmountLimit
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "not found - unknown bill",
			body: aValidCreateSwapBody(),
			createFn: func(cmd cqrs.CreateSwapCommand) (*models.Swap, error) {
				return nil, repository.ErrNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockSwapCommander{createFn: tt.createFn}
			router := newSwapTestRouter(cmds, &mockSwapQuerier{}, "usr-001")
			w := swapDoRequest(router, http.MethodPost, "/v1/swaps", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetSwap(t *testing.T) {
	tests := []struct {
		name           string
		getFn          func(cqrs.GetSwapQuery) (*models.SwapView, error)
		expectedStatus int
	}{
		{
			name:           "success - view own swap",
			getFn:          func(q cqrs.GetSwapQuery) (*models.SwapView, error) { return aTestSwapView, nil },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "forbidden - not a party",
			getFn:          func(q cqrs.GetSwapQuery) (*models.SwapView, error) { return nil, fmt.Errorf("forbidden") },
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "not found",
			getFn:          func(q cqrs.GetSwapQuery) (*models.SwapView, error) { return nil, repository.ErrNotFound },
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newSwapTestRouter(&mockSwapCommander{}, &mockSwapQuerier{getFn: tt.getFn}, "usr-001")
			w := swapDoRequest(router, http.MethodGet, "/v1/swaps/swp-001", nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestAcceptSwap(t *testing.T) {
	tests := []struct {
		name           string
		acceptFn       func(cqrs.AcceptSwapCommand) (*models.Swap, error)
		expectedStatus int
	}{
		{
			name: "success - counterpart accepts",
			acceptFn: func(cmd cqrs.AcceptSwapCommand) (*models.Swap, error) {
				accepted := *aTestSwap
				accepted.Status = models.SwapFeePending
				return &accepted, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "conflict - already accepted",
			acceptFn: func(cmd cqrs.AcceptSwapCommand) (*models.Swap, error) {
				return nil, command.ErrInvalidStatus
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "conflict - lost the race",
			acceptFn: func(cmd cqrs.AcceptSwapCommand) (*models.Swap, error) {
				return nil, repository.ErrStaleStatus
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "forbidden - initiator cannot accept",
			acceptFn: func(cmd cqrs.AcceptSwapCommand) (*models.Swap, error) {
				return nil, command.ErrForbidden
			},
			expectedStatus: http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockSwapCommander{acceptFn: tt.acceptFn}
			router := newSwapTestRouter(cmds, &mockSwapQuerier{}, "usr-002")
			w := swapDoRequest(router, http.MethodPost, "/v1/swaps/swp-001/accept", nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestPayFee(t *testing.T) {
	validBody := map[string]interface{}{"accountToken": "tok-123"}
	tests := []struct {
		name           string
		body           interface{}
		payFeeFn       func(cqrs.PayFeeCommand) (*models.Swap, error)
		expectedStatus int
	}{
		{
			name: "success - fee authorized",
			body: validBody,
			payFeeFn: func(cmd cqrs.PayFeeCommand) (*models.Swap, error) {
				paid := *aTestSwap
				paid.Status = models.SwapFeePending
				paid.FeeAPaid = true
				return &paid, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "bad request - missing token",
			body:           map[string]interface{}{},
			payFeeFn:       nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unprocessable - purchase declined",
			body: validBody,
			payFeeFn: func(cmd cqrs.PayFeeCommand) (*models.Swap, error) {
				return nil, fmt.Errorf("%w: failed", clients.ErrPurchaseNotAuthorized)
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "bad gateway - provider unreachable",
			body: validBody,
			payFeeFn: func(cmd cqrs.PayFeeCommand) (*models.Swap, error) {
				return nil, fmt.Errorf("fee authorization failed: connection refused")
			},
			expectedStatus: http.StatusBadGateway,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockSwapCommander{payFeeFn: tt.payFeeFn}
			router := newSwapTestRouter(cmds, &mockSwapQuerier{}, "usr-001")
			w := swapDoRequest(router, http.MethodPost, "/v1/swaps/swp-001/fee", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestSubmitProof(t *testing.T) {
	validBody := map[string]interface{}{
		"imageData":     []byte("screenshot bytes"),
		"screenshotRef": "shots/a.png",
	}
	tests := []struct {
		name           string
		body           interface{}
		proofFn        func(cqrs.SubmitProofCommand) (*models.Swap, *proof.Result, error)
		expectedStatus int
	}{
		{
			name: "success - leg completed",
			body: validBody,
			proofFn: func(cmd cqrs.SubmitProofCommand) (*models.Swap, *proof.Result, error) {
				done := *aTestSwap
				done.Status = models.SwapLegAComplete
				return &done, &proof.Result{Confidence: 0.9, Disposition: proof.DispositionAutoVerified}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "bad request - missing screenshot",
			body:           map[string]interface{}{},
			proofFn:        nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "conflict - fees not paid yet",
			body: validBody,
			proofFn: func(cmd cqrs.SubmitProofCommand) (*models.Swap, *proof.Result, error) {
				return nil, nil, command.ErrInvalidStatus
			},
			expectedStatus: http.StatusConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockSwapCommander{proofFn: tt.proofFn}
			router := newSwapTestRouter(cmds, &mockSwapQuerier{}, "usr-001")
			w := swapDoRequest(router, http.MethodPost, "/v1/swaps/swp-001/proof", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestRateSwap(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		rateFn         func(cqrs.RateSwapCommand) error
		expectedStatus int
	}{
		{
			name:           "success - five stars",
			body:           map[string]interface{}{"stars": 5},
			rateFn:         func(cmd cqrs.RateSwapCommand) error { return nil },
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "bad request - stars out of range",
			body:           map[string]interface{}{"stars": 9},
			rateFn:         nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "conflict - swap not terminal",
			body:           map[string]interface{}{"stars": 4},
			rateFn:         func(cmd cqrs.RateSwapCommand) error { return command.ErrInvalidStatus },
			expectedStatus: http.StatusConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockSwapCommander{rateFn: tt.rateFn}
			router := newSwapTestRouter(cmds, &mockSwapQuerier{}, "usr-001")
			w := swapDoRequest(router, http.MethodPost, "/v1/swaps/swp-001/rating", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestListDisputes(t *testing.T) {
	tests := []struct {
		name           string
		disputesFn     func(cqrs.ListDisputesQuery) ([]models.Dispute, error)
		expectedStatus int
	}{
		{
			name: "success - open dispute listed",
			disputesFn: func(q cqrs.ListDisputesQuery) ([]models.Dispute, error) {
				return []models.Dispute{{ID: "dsp-001", SwapID: q.SwapID, Status: models.DisputeOpen}}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "forbidden - not a party",
			disputesFn: func(q cqrs.ListDisputesQuery) ([]models.Dispute, error) {
				return nil, fmt.Errorf("forbidden")
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "not found - unknown swap",
			disputesFn: func(q cqrs.ListDisputesQuery) ([]models.Dispute, error) {
				return nil, repository.ErrNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newSwapTestRouter(&mockSwapCommander{}, &mockSwapQuerier{disputesFn: tt.disputesFn}, "usr-001")
			w := swapDoRequest(router, http.MethodGet, "/v1/swaps/swp-001/disputes", nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestListSwaps(t *testing.T) {
	views := []models.SwapView{*aTestSwapView}
	listFn := func(q cqrs.ListSwapsQuery) ([]models.SwapView, error) { return views, nil }
	router := newSwapTestRouter(&mockSwapCommander{}, &mockSwapQuerier{listFn: listFn}, "usr-001")
	w := swapDoRequest(router, http.MethodGet, "/v1/swaps", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d; body: %s", w.Code, w.Body.String())
	}
}
