package car

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"drivea_back_end/internal/models"
	"drivea_back_end/internal/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type Handler struct {
	Store storage.Store
}

func NewHandler(store storage.Store) *Handler {
	return &Handler{Store: store}
}

// Create ajoute une voiture au catalogue (vendeur ou admin)
func (h *Handler) Create(c *gin.Context) {
	var input struct {
		Name         string  `json:"name" binding:"required"`
		Model        string  `json:"model" binding:"required"`
		Image        string  `json:"image"`
		RentPerDay   float64 `json:"rentPerDay" binding:"required,gt=0"`
		Availability bool    `json:"availability"`
		Speed        int     `json:"speed"`
		Seats        int     `json:"seats" binding:"required,gt=0"`
		Transmission string  `json:"transmission" binding:"required,oneof=Manual Automatic"`
		FuelType     string  `json:"fuelType" binding:"required,oneof=Petrol Diesel Electric"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	car := &models.Car{
		Name:         input.Name,
		Model:        input.Model,
		Image:        input.Image,
		RentPerDay:   input.RentPerDay,
		Availability: input.Availability,
		Speed:        input.Speed,
		Seats:        input.Seats,
		Transmission: input.Transmission,
		FuelType:     input.FuelType,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.Store.CreateCar(ctx, car); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création de la voiture"})
		return
	}

	log.Printf("🚗 Voiture ajoutée: %s %s", car.Name, car.Model)
	c.JSON(http.StatusCreated, car)
}

// List renvoie le catalogue, filtré par les query params (conjonctifs)
func (h *Handler) List(c *gin.Context) {
	filter := storage.CarFilter{
		Model:        c.Query("model"),
		FuelType:     c.Query("fuelType"),
		Transmission: c.Query("transmission"),
	}
	if v := c.Query("seats"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre seats invalide"})
			return
		}
		filter.Seats = n
	}
	if v := c.Query("minPrice"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre minPrice invalide"})
			return
		}
		filter.MinPrice = n
	}
	if v := c.Query("maxPrice"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre maxPrice invalide"})
			return
		}
		filter.MaxPrice = n
	}
	if v := c.Query("minRating"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre minRating invalide"})
			return
		}
		filter.MinRating = n
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cars, err := h.Store.ListCars(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture du catalogue"})
		return
	}

	c.JSON(http.StatusOK, cars)
}

// GetByID renvoie une voiture avec sa note moyenne recalculée en direct
// depuis les avis courants
func (h *Handler) GetByID(c *gin.Context) {
	carID, err := bson.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID voiture invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	car, err := h.Store.GetCarByID(ctx, carID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Voiture introuvable"})
		return
	}

	reviews, err := h.Store.ListReviewsByCar(ctx, carID)
	if err == nil {
		car.AverageRating = averageRating(reviews)
	}

	c.JSON(http.StatusOK, car)
}

// Update remplace les champs modifiables (jamais la note moyenne)
func (h *Handler) Update(c *gin.Context) {
	carID, err := bson.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID voiture invalide"})
		return
	}

	var input struct {
		Name         string  `json:"name" binding:"required"`
		Model        string  `json:"model" binding:"required"`
		Image        string  `json:"image"`
		RentPerDay   float64 `json:"rentPerDay" binding:"required,gt=0"`
		Availability bool    `json:"availability"`
		Speed        int     `json:"speed"`
		Seats        int     `json:"seats" binding:"required,gt=0"`
		Transmission string  `json:"transmission" binding:"required,oneof=Manual Automatic"`
		FuelType     string  `json:"fuelType" binding:"required,oneof=Petrol Diesel Electric"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	car := &models.Car{
		ID:           carID,
		Name:         input.Name,
		Model:        input.Model,
		Image:        input.Image,
		RentPerDay:   input.RentPerDay,
		Availability: input.Availability,
		Speed:        input.Speed,
		Seats:        input.Seats,
		Transmission: input.Transmission,
		FuelType:     input.FuelType,
	}

	updated, err := h.Store.UpdateCar(ctx, car)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Voiture introuvable"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete retire une voiture du catalogue
func (h *Handler) Delete(c *gin.Context) {
	carID, err := bson.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID voiture invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.Store.DeleteCar(ctx, carID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Voiture introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Voiture supprimée"})
}
