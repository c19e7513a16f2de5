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

// ScheduleCommander defines the write-side operations used by ScheduleHandler.
type ScheduleCommander interface {
	SetSchedule(cqrs.SetScheduleCommand) (*models.PaydaySchedule, error)
}

// ScheduleQuerier defines the read-side operations used by ScheduleHandler.
type ScheduleQuerier interface {
	GetSchedule(cqrs.GetScheduleQuery) (*models.PaydaySchedule, error)
}

type ScheduleHandler struct {
	commands ScheduleCommander
	queries  ScheduleQuerier
}

type SetScheduleRequest struct {
	Type       string `json:"type" validate:"required,oneof=weekly biweekly semi_monthly monthly"`
	AnchorDays []int  `json:"anchorDays" validate:"required,min=1,max=5,dive,gte=1,lte=31"`
}

func NewScheduleHandler(commands ScheduleCommander, queries ScheduleQuerier) *ScheduleHandler {
	return &ScheduleHandler{commands: commands, queries: queries}
}

func (h *ScheduleHandler) SetSchedule(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req SetScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	schedule, err := h.commands.SetSchedule(cqrs.SetScheduleCommand{
		UserID:     userID,
		Type:       req.Type,
		AnchorDays: req.AnchorDays,
	})
	if err != nil {
		if errors.Is(err, command.ErrInvalidSchedule) {
			middleware.RespondWithError(c, http.StatusUnprocessableEntity, "Anchor days do not fit the schedule type")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to set schedule")
		return
	}

	c.JSON(http.StatusCreated, schedule)
}

func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	schedule, err := h.queries.GetSchedule(cqrs.GetScheduleQuery{UserID: userID})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			middleware.RespondWithError(c, http.StatusNotFound, "No active schedule")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to get schedule")
		return
	}

	c.JSON(http.StatusOK, schedule)
}
