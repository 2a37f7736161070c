package user

import (
	"context"
	"net/http"
	"time"

	"drivea_back_end/internal/middleware"
	"drivea_back_end/internal/storage"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Store storage.Store
	Gate  *middleware.Auth
}

func NewHandler(store storage.Store, gate *middleware.Auth) *Handler {
	return &Handler{Store: store, Gate: gate}
}

// GetProfile renvoie le profil de l'utilisateur courant
func (h *Handler) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

// UpdateProfile met à jour le nom et le flag 2FA
func (h *Handler) UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var input struct {
		Name             string `json:"name"`
		TwoFactorEnabled *bool  `json:"twoFactorEnabled"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upd := storage.UserProfileUpdate{TwoFactorEnabled: input.TwoFactorEnabled}
	if input.Name != "" {
		upd.Name = &input.Name
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	updated, err := h.Store.UpdateUserProfile(ctx, user.ID, upd)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	h.Gate.InvalidateUserCache(ctx, user.ID.Hex())
	c.JSON(http.StatusOK, updated)
}
