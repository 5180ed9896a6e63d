package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"supportly/internal/domain"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto status codes. Each validation failure
// keeps its own message so clients can tell them apart.
func respondError(c *gin.Context, tag string, err error) {
	switch {
	case errors.Is(err, domain.ErrGatewayRejected):
		c.JSON(http.StatusBadGateway, gin.H{"error": "gateway rejected", "detail": err.Error()})
	case errors.Is(err, domain.ErrCapacityExhausted),
		errors.Is(err, domain.ErrPaymentInfoLocked),
		errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrBelowMinimumAmount),
		errors.Is(err, domain.ErrBelowMinimumWithdrawal),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrPaymentInfoMissing):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Printf("[%s] %v", tag, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
