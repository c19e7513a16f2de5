package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/BillixOfficial/Billix-sub006/internal/repository"
	"github.com/BillixOfficial/Billix-sub006/shared/cqrs"
	"github.com/BillixOfficial/Billix-sub006/shared/middleware"
	"github.com/BillixOfficial/Billix-sub006/shared/models"
	"github.com/gin-gonic/gin"
)

// MatchQuerier defines the read-side operations used by MatchHandler.
type MatchQuerier interface {
	FindMatches(cqrs.FindMatchesQuery) ([]models.MatchCandidate, error)
}

// MatchHandler serves on-demand candidate searches. Matching has no command
// side: candidates are never persisted.
type MatchHandler struct {
	queries MatchQuerier
}

type FindMatchesResponse struct {
	Matches []any `json:"matches"`
}

func NewMatchHandler(queries MatchQuerier) *MatchHandler {
	return &MatchHandler{queries: queries}
}

func (h *MatchHandler) FindMatches(c *gin.Context) {
	billID := c.Param("billId")
	userID, _ := middleware.GetUserID(c)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			middleware.RespondWithError(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	matches, err := h.queries.FindMatches(cqrs.FindMatchesQuery{
		UserID: userID,
		BillID: billID,
		Limit:  limit,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			middleware.RespondWithError(c, http.StatusNotFound, "Bill or schedule not found")
		case err.Error() == "forbidden":
			middleware.RespondWithError(c, http.StatusForbidden, "You can only search matches for your own bills")
		default:
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to find matches")
		}
		return
	}

	matchesAny := make([]any, len(matches))
	for i, m := range matches {
		matchesAny[i] = m
	}
	c.JSON(http.StatusOK, FindMatchesResponse{Matches: matchesAny})
}
