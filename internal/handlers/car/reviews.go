package car

import (
	"context"
	"log"
	"math"
	"net/http"
	"time"

	"drivea_back_end/internal/middleware"
	"drivea_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// CreateReview dépose un avis et recalcule la moyenne de la voiture
func (h *Handler) CreateReview(c *gin.Context) {
	carID, err := bson.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID voiture invalide"})
		return
	}

	var input struct {
		Rating  int    `json:"rating" binding:"required,min=1,max=5"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := h.Store.GetCarByID(ctx, carID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Voiture introuvable"})
		return
	}

	review := &models.Review{
		CarID:     carID,
		UserID:    user.ID,
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: time.Now(),
	}
	if err := h.Store.CreateReview(ctx, review); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création de l'avis"})
		return
	}

	h.recomputeAverage(ctx, carID)

	review.UserName = user.Name
	c.JSON(http.StatusCreated, review)
}

// ListReviews renvoie les avis d'une voiture avec le nom de leur auteur
func (h *Handler) ListReviews(c *gin.Context) {
	carID, err := bson.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID voiture invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reviews, err := h.Store.ListReviewsByCar(ctx, carID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture des avis"})
		return
	}

	for i := range reviews {
		if author, err := h.Store.GetUserByID(ctx, reviews[i].UserID); err == nil {
			reviews[i].UserName = author.Name
		}
	}

	c.JSON(http.StatusOK, reviews)
}

// UpdateReview : seul l'auteur peut modifier son avis
func (h *Handler) UpdateReview(c *gin.Context) {
	reviewID, err := bson.ObjectIDFromHex(c.Param("reviewId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID avis invalide"})
		return
	}

	var input struct {
		Rating  int    `json:"rating" binding:"required,min=1,max=5"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	review, err := h.Store.GetReviewByID(ctx, reviewID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Avis introuvable"})
		return
	}
	if review.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cet avis ne vous appartient pas"})
		return
	}

	if err := h.Store.UpdateReview(ctx, reviewID, input.Rating, input.Comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour de l'avis"})
		return
	}

	h.recomputeAverage(ctx, review.CarID)
	c.JSON(http.StatusOK, gin.H{"message": "Avis mis à jour"})
}

// DeleteReview : seul l'auteur peut supprimer son avis
func (h *Handler) DeleteReview(c *gin.Context) {
	reviewID, err := bson.ObjectIDFromHex(c.Param("reviewId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID avis invalide"})
		return
	}

	user := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	review, err := h.Store.GetReviewByID(ctx, reviewID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Avis introuvable"})
		return
	}
	if review.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cet avis ne vous appartient pas"})
		return
	}

	if err := h.Store.DeleteReview(ctx, reviewID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression de l'avis"})
		return
	}

	h.recomputeAverage(ctx, review.CarID)
	c.JSON(http.StatusOK, gin.H{"message": "Avis supprimé"})
}

// recomputeAverage réécrit la moyenne dénormalisée après une mutation d'avis
func (h *Handler) recomputeAverage(ctx context.Context, carID bson.ObjectID) {
	reviews, err := h.Store.ListReviewsByCar(ctx, carID)
	if err != nil {
		log.Printf("⚠️ Erreur recalcul de la note moyenne pour %s: %v", carID.Hex(), err)
		return
	}
	if err := h.Store.SetCarAverageRating(ctx, carID, averageRating(reviews)); err != nil {
		log.Printf("⚠️ Erreur écriture de la note moyenne pour %s: %v", carID.Hex(), err)
		return
	}
	log.Printf("⭐ Note moyenne recalculée pour %s", carID.Hex())
}

// averageRating : moyenne arrondie à une décimale, 0 sans avis
func averageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return math.Round(float64(sum)/float64(len(reviews))*10) / 10
}
