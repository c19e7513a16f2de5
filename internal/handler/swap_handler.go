package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/BillixOfficial/Billix-sub006/internal/clients"
	"github.com/BillixOfficial/Billix-sub006/internal/command"
	"github.com/BillixOfficial/Billix-sub006/internal/proof"
	"github.com/BillixOfficial/Billix-sub006/internal/repository"
	"github.com/BillixOfficial/Billix-sub006/internal/trust"
	"github.com/BillixOfficial/Billix-sub006/shared/cqrs"
	"github.com/BillixOfficial/Billix-sub006/shared/middleware"
	"github.com/BillixOfficial/Billix-sub006/shared/models"
	"github.com/gin-gonic/gin"
)

// SwapCommander defines the write-side operations used by SwapHandler.
type SwapCommander interface {
	CreateSwap(cqrs.CreateSwapCommand) (*models.Swap, error)
	AcceptSwap(cqrs.AcceptSwapCommand) (*models.Swap, error)
	CancelSwap(cqrs.CancelSwapCommand) (*models.Swap, error)
	PayFee(context.Context, cqrs.PayFeeCommand) (*models.Swap, error)
	SubmitProof(context.Context, cqrs.SubmitProofCommand) (*models.Swap, *proof.Result, error)
	RateSwap(cqrs.RateSwapCommand) error
}

// SwapQuerier defines the read-side operations used by SwapHandler.
type SwapQuerier interface {
	GetSwap(cqrs.GetSwapQuery) (*models.SwapView, error)
	ListSwaps(cqrs.ListSwapsQuery) ([]models.SwapView, error)
	ListDisputes(cqrs.ListDisputesQuery) ([]models.Dispute, error)
}

type SwapHandler struct {
	commands SwapCommander
	queries  SwapQuerier
}

type CreateSwapRequest struct {
	BillID            string  `json:"billId" validate:"required"`
	CounterpartUserID string  `json:"counterpartUserId" validate:"required"`
	CounterpartBillID string  `json:"counterpartBillId" validate:"required"`
	MatchScore        float64 `json:"matchScore" validate:"gte=0,lte=1"`
}

type PayFeeRequest struct {
	AccountToken string `json:"accountToken" validate:"required"`
}

// SubmitProofRequest carries the screenshot as base64 JSON. ScreenshotRef is
// the caller's opaque storage reference, kept for dispute review.
type SubmitProofRequest struct {
	ImageData     []byte `json:"imageData" validate:"required"`
	ScreenshotRef string `json:"screenshotRef" validate:"required"`
}

type RateSwapRequest struct {
	Stars int `json:"stars" validate:"required,gte=1,lte=5"`
}

type ListSwapsResponse struct {
	Swaps []any `json:"swaps"`
}

type ListDisputesResponse struct {
	Disputes []any `json:"disputes"`
}

type SubmitProofResponse struct {
	Swap  *models.Swap  `json:"swap"`
	Proof *proof.Result `json:"proof,omitempty"`
}

func NewSwapHandler(commands SwapCommander, queries SwapQuerier) *SwapHandler {
	return &SwapHandler{commands: commands, queries: queries}
}

func (h *SwapHandler) CreateSwap(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req CreateSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	swap, err := h.commands.CreateSwap(cqrs.CreateSwapCommand{
		UserID:            userID,
		BillID:            req.BillID,
		CounterpartUserID: req.CounterpartUserID,
		CounterpartBillID: req.CounterpartBillID,
		MatchScore:        req.MatchScore,
	})
	if err != nil {
		respondSwapError(c, err, "Failed to create swap")
		return
	}

	c.JSON(http.StatusCreated, swap)
}

func (h *SwapHandler) ListSwaps(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	views, err := h.queries.ListSwaps(cqrs.ListSwapsQuery{UserID: userID})
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to list swaps")
		return
	}

	swapsAny := make([]any, len(views))
	for i, v := range views {
		swapsAny[i] = v
	}
	c.JSON(http.StatusOK, ListSwapsResponse{Swaps: swapsAny})
}

func (h *SwapHandler) GetSwap(c *gin.Context) {
	swapID := c.Param("swapId")
	userID, _ := middleware.GetUserID(c)

	view, err := h.queries.GetSwap(cqrs.GetSwapQuery{
		SwapID:           swapID,
		RequestingUserID: userID,
	})
	if err != nil {
		if err.Error() == "forbidden" {
			middleware.RespondWithError(c, http.StatusForbidden, "You can only view your own swaps")
			return
		}
		middleware.RespondWithError(c, http.StatusNotFound, "Swap not found")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *SwapHandler) ListDisputes(c *gin.Context) {
	swapID := c.Param("swapId")
	userID, _ := middleware.GetUserID(c)

	disputes, err := h.queries.ListDisputes(cqrs.ListDisputesQuery{
		SwapID:           swapID,
		RequestingUserID: userID,
	})
	if err != nil {
		if err.Error() == "forbidden" {
			middleware.RespondWithError(c, http.StatusForbidden, "You can only view your own swaps")
			return
		}
		if errors.Is(err, repository.ErrNotFound) {
			middleware.RespondWithError(c, http.StatusNotFound, "Swap not found")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to list disputes")
		return
	}

	disputesAny := make([]any, len(disputes))
	for i, d := range disputes {
		disputesAny[i] = d
	}
	c.JSON(http.StatusOK, ListDisputesResponse{Disputes: disputesAny})
}

func (h *SwapHandler) AcceptSwap(c *gin.Context) {
	swapID := c.Param("swapId")
	userID, _ := middleware.GetUserID(c)

	swap, err := h.commands.AcceptSwap(cqrs.AcceptSwapCommand{
		SwapID:           swapID,
		RequestingUserID: userID,
	})
	if err != nil {
		respondSwapError(c, err, "Failed to accept swap")
		return
	}

	c.JSON(http.StatusOK, swap)
}

func (h *SwapHandler) CancelSwap(c *gin.Context) {
	swapID := c.Param("swapId")
	userID, _ := middleware.GetUserID(c)

	swap, err := h.commands.CancelSwap(cqrs.CancelSwapCommand{
		SwapID:           swapID,
		RequestingUserID: userID,
	})
	if err != nil {
		respondSwapError(c, err, "Failed to cancel swap")
		return
	}

	c.JSON(http.StatusOK, swap)
}

func (h *SwapHandler) PayFee(c *gin.Context) {
	swapID := c.Param("swapId")
	userID, _ := middleware.GetUserID(c)

	var req PayFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	swap, err := h.commands.PayFee(c.Request.Context(), cqrs.PayFeeCommand{
		SwapID:           swapID,
		RequestingUserID: userID,
		AccountToken:     req.AccountToken,
	})
	if err != nil {
		switch {
		case errors.Is(err, clients.ErrPurchaseNotAuthorized):
			middleware.RespondWithError(c, http.StatusUnprocessableEntity, "Fee purchase was not authorized")
		case strings.Contains(err.Error(), "fee authorization failed"):
			middleware.RespondWithError(c, http.StatusBadGateway, "Payment provider unavailable")
		default:
			respondSwapError(c, err, "Failed to pay fee")
		}
		return
	}

	c.JSON(http.StatusOK, swap)
}

func (h *SwapHandler) SubmitProof(c *gin.Context) {
	swapID := c.Param("swapId")
	userID, _ := middleware.GetUserID(c)

	var req SubmitProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	swap, result, err := h.commands.SubmitProof(c.Request.Context(), cqrs.SubmitProofCommand{
		SwapID:           swapID,
		RequestingUserID: userID,
		Image:            req.ImageData,
		ScreenshotRef:    req.ScreenshotRef,
	})
	if err != nil {
		respondSwapError(c, err, "Failed to submit proof")
		return
	}

	c.JSON(http.StatusOK, SubmitProofResponse{Swap: swap, Proof: result})
}

func (h *SwapHandler) RateSwap(c *gin.Context) {
	swapID := c.Param("swapId")
	userID, _ := middleware.GetUserID(c)

	var req RateSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	err := h.commands.RateSwap(cqrs.RateSwapCommand{
		SwapID:           swapID,
		RequestingUserID: userID,
		Stars:            req.Stars,
	})
	if err != nil {
		if errors.Is(err, trust.ErrInvalidRating) {
			middleware.RespondWithError(c, http.StatusUnprocessableEntity, "Rating must be between 1 and 5 stars")
			return
		}
		respondSwapError(c, err, "Failed to rate swap")
		return
	}

	c.Status(http.StatusNoContent)
}

// respondSwapError maps lifecycle errors to HTTP statuses. Stale-status means
// a concurrent transition won; the caller should re-fetch, so it maps to 409
// alongside the explicit state conflicts.
func respondSwapError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, "Not found")
	case errors.Is(err, command.ErrForbidden):
		middleware.RespondWithError(c, http.StatusForbidden, "You are not a party to this swap")
	case errors.Is(err, command.ErrBanned):
		middleware.RespondWithError(c, http.StatusForbidden, "Account is banned")
	case errors.Is(err, command.ErrInvalidStatus),
		errors.Is(err, repository.ErrStaleStatus),
		errors.Is(err, command.ErrSwapConflict),
		errors.Is(err, command.ErrMaxActiveSwaps):
		middleware.RespondWithError(c, http.StatusConflict, "Swap state does not allow this operation")
	case errors.Is(err, command.ErrTierAmountLimit),
		errors.Is(err, command.ErrTierCategory),
		errors.Is(err, command.ErrNoSchedule),
		errors.Is(err, command.ErrInactiveBill):
		middleware.RespondWithError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		middleware.RespondWithError(c, http.StatusInternalServerError, fallback)
	}
}
