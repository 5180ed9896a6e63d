package handler

import (
	"net/http"

	"supportly/internal/middleware"
	"supportly/internal/repository"

	"github.com/gin-gonic/gin"
)

type MeHandler struct {
	userRepo    *repository.UserRepository
	supportRepo *repository.SupportRepository
}

func NewMeHandler(userRepo *repository.UserRepository, supportRepo *repository.SupportRepository) *MeHandler {
	return &MeHandler{userRepo: userRepo, supportRepo: supportRepo}
}

// RegisterFCMToken saves the FCM token for push notifications.
func (h *MeHandler) RegisterFCMToken(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.userRepo.GetByID(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err := h.userRepo.UpdateFCMToken(c.Request.Context(), userID, req.Token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetSupporters returns the creator's settled support, newest first.
func (h *MeHandler) GetSupporters(c *gin.Context) {
	page, limit := parsePagination(c)
	list, err := h.supportRepo.ListByCreator(c.Request.Context(), middleware.GetCreatorID(c), limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load supporters"})
		return
	}
	out := make([]gin.H, 0, len(list))
	for _, e := range list {
		out = append(out, gin.H{
			"name":        e.ContributorName,
			"amount":      e.Amount,
			"message":     e.Message,
			"kind":        e.Kind,
			"wishlist_id": e.WishlistID,
			"created_at":  e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"supporters": out, "page": page, "limit": limit})
}
