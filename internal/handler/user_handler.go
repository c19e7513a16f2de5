package handler

import (
	"errors"
	"net/http"

	"github.com/BillixOfficial/Billix-sub006/internal/command"
	"github.com/BillixOfficial/Billix-sub006/shared/cqrs"
	"github.com/BillixOfficial/Billix-sub006/shared/middleware"
	"github.com/BillixOfficial/Billix-sub006/shared/models"
	"github.com/gin-gonic/gin"
)

// UserCommander defines the write-side operations used by UserHandler.
type UserCommander interface {
	CreateUser(cqrs.CreateUserCommand) (*models.User, error)
}

// UserHandler handles registration.
type UserHandler struct {
	commands UserCommander
}

type CreateUserRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
}

func NewUserHandler(commands UserCommander) *UserHandler {
	return &UserHandler{commands: commands}
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	user, err := h.commands.CreateUser(cqrs.CreateUserCommand{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		if errors.Is(err, command.ErrEmailTaken) {
			middleware.RespondWithError(c, http.StatusConflict, "Email already registered")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, user)
}
