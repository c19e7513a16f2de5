package handler

import (
	"errors"
	"net/http"

	"github.com/BillixOfficial/Billix-sub006/internal/command"
	"github.com/BillixOfficial/Billix-sub006/internal/trust"
	"github.com/BillixOfficial/Billix-sub006/shared/cqrs"
	"github.com/BillixOfficial/Billix-sub006/shared/middleware"
	"github.com/BillixOfficial/Billix-sub006/shared/models"
	"github.com/gin-gonic/gin"
)

// TrustCommander defines the write-side operations used by TrustHandler.
type TrustCommander interface {
	Graduate(cqrs.GraduateCommand) (*models.TrustStatus, error)
}

// TrustQuerier defines the read-side operations used by TrustHandler.
type TrustQuerier interface {
	GetTrustStatus(cqrs.GetTrustStatusQuery) (*models.TrustStatusView, error)
}

type TrustHandler struct {
	commands TrustCommander
	queries  TrustQuerier
}

func NewTrustHandler(commands TrustCommander, queries TrustQuerier) *TrustHandler {
	return &TrustHandler{commands: commands, queries: queries}
}

func (h *TrustHandler) GetTrustStatus(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	view, err := h.queries.GetTrustStatus(cqrs.GetTrustStatusQuery{UserID: userID})
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to get trust status")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *TrustHandler) Graduate(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	status, err := h.commands.Graduate(cqrs.GraduateCommand{UserID: userID})
	if err != nil {
		switch {
		case errors.Is(err, command.ErrBanned):
			middleware.RespondWithError(c, http.StatusForbidden, "Account is banned")
		case errors.Is(err, trust.ErrMaxTier),
			errors.Is(err, trust.ErrInsufficientSwaps),
			errors.Is(err, trust.ErrRatingTooLow),
			errors.Is(err, trust.ErrVerificationRequired):
			middleware.RespondWithError(c, http.StatusUnprocessableEntity, err.Error())
		default:
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to graduate")
		}
		return
	}

	c.JSON(http.StatusOK, status)
}
