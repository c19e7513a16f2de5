package handler

import (
	"errors"
	"net/http"

	"github.com/BillixOfficial/Billix-sub006/internal/command"
	"github.com/BillixOfficial/Billix-sub006/internal/repository"
	"github.com/BillixOfficial/Billix-sub006/shared/cqrs"
	"github.com/BillixOfficial/Billix-sub006/shared/middleware"
	"github.com/BillixOfficial/Billix-sub006/shared/models"
	"github.com/gin-gonic/gin"
)

// BillCommander defines the write-side operations used by BillHandler.
type BillCommander interface {
	CreateBill(cqrs.CreateBillCommand) (*models.Bill, error)
	UpdateBill(cqrs.UpdateBillCommand) (*models.Bill, error)
	DeactivateBill(cqrs.DeactivateBillCommand) error
}

// BillQuerier defines the read-side operations used by BillHandler.
type BillQuerier interface {
	GetBill(cqrs.GetBillQuery) (*models.Bill, error)
	ListBills(cqrs.ListBillsQuery) ([]models.Bill, error)
}

type BillHandler struct {
	commands BillCommander
	queries  BillQuerier
}

type CreateBillRequest struct {
	Category string  `json:"category" validate:"required,oneof=streaming telecom utilities insurance rent other"`
	Provider string  `json:"provider" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	DueDay   int     `json:"dueDay" validate:"required,gte=1,lte=31"`
}

type UpdateBillRequest struct {
	Provider string  `json:"provider" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	DueDay   int     `json:"dueDay" validate:"required,gte=1,lte=31"`
}

type ListBillsResponse struct {
	Bills []any `json:"bills"`
}

func NewBillHandler(commands BillCommander, queries BillQuerier) *BillHandler {
	return &BillHandler{commands: commands, queries: queries}
}

func (h *BillHandler) CreateBill(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	bill, err := h.commands.CreateBill(cqrs.CreateBillCommand{
		UserID:   userID,
		Category: req.Category,
		Provider: req.Provider,
		Amount:   req.Amount,
		DueDay:   req.DueDay,
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to create bill")
		return
	}

	c.JSON(http.StatusCreated, bill)
}

func (h *BillHandler) ListBills(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	bills, err := h.queries.ListBills(cqrs.ListBillsQuery{UserID: userID})
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to list bills")
		return
	}

	billsAny := make([]any, len(bills))
	for i, b := range bills {
		billsAny[i] = b
	}
	c.JSON(http.StatusOK, ListBillsResponse{Bills: billsAny})
}

func (h *BillHandler) GetBill(c *gin.Context) {
	billID := c.Param("billId")
	userID, _ := middleware.GetUserID(c)

	bill, err := h.queries.GetBill(cqrs.GetBillQuery{
		BillID:           billID,
		RequestingUserID: userID,
	})
	if err != nil {
		if err.Error() == "forbidden" {
			middleware.RespondWithError(c, http.StatusForbidden, "You can only access your own bills")
			return
		}
		middleware.RespondWithError(c, http.StatusNotFound, "Bill not found")
		return
	}

	c.JSON(http.StatusOK, bill)
}

func (h *BillHandler) UpdateBill(c *gin.Context) {
	billID := c.Param("billId")
	userID, _ := middleware.GetUserID(c)

	var req UpdateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	bill, err := h.commands.UpdateBill(cqrs.UpdateBillCommand{
		BillID:           billID,
		RequestingUserID: userID,
		Provider:         req.Provider,
		Amount:           req.Amount,
		DueDay:           req.DueDay,
	})
	if err != nil {
		respondBillMutationError(c, err, "update")
		return
	}

	c.JSON(http.StatusOK, bill)
}

func (h *BillHandler) DeactivateBill(c *gin.Context) {
	billID := c.Param("billId")
	userID, _ := middleware.GetUserID(c)

	err := h.commands.DeactivateBill(cqrs.DeactivateBillCommand{
		BillID:           billID,
		RequestingUserID: userID,
	})
	if err != nil {
		respondBillMutationError(c, err, "deactivate")
		return
	}

	c.Status(http.StatusNoContent)
}

func respondBillMutationError(c *gin.Context, err error, verb string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, "Bill not found")
	case errors.Is(err, command.ErrForbidden):
		middleware.RespondWithError(c, http.StatusForbidden, "You can only "+verb+" your own bills")
	case errors.Is(err, command.ErrSwapConflict):
		middleware.RespondWithError(c, http.StatusConflict, "Bill is locked by an active swap")
	default:
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to "+verb+" bill")
	}
}
