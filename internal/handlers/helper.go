package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/SAP-F-2025/screening-service/internal/errors"
)

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

// ParseCardIndexParam reads a board position from the path. Positions past
// the end of the deck are left to the game engine.
func ParseCardIndexParam(c *gin.Context, param string) (int, bool) {
	raw := c.Param(param)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: apperrors.FieldError(param, "card_index", "must be a card position on the board", raw),
		})
		return 0, false
	}
	return n, true
}
