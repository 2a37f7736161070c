package car

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"drivea_back_end/internal/middleware"
	"drivea_back_end/internal/models"
	"drivea_back_end/internal/storage/storagetest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(store *storagetest.Store, current *models.User) *gin.Engine {
	h := NewHandler(store)
	r := gin.New()
	if current != nil {
		r.Use(func(c *gin.Context) { c.Set(middleware.ContextUserKey, current) })
	}
	r.GET("/api/cars", h.List)
	r.GET("/api/cars/:id", h.GetByID)
	r.POST("/api/cars", h.Create)
	r.PUT("/api/cars/:id", h.Update)
	r.DELETE("/api/cars/:id", h.Delete)
	r.GET("/api/cars/:id/reviews", h.ListReviews)
	r.POST("/api/cars/:id/reviews", h.CreateReview)
	r.PUT("/api/cars/reviews/:reviewId", h.UpdateReview)
	r.DELETE("/api/cars/reviews/:reviewId", h.DeleteReview)
	return r
}

func seedCar(t *testing.T, store *storagetest.Store, mutate func(*models.Car)) *models.Car {
	t.Helper()
	car := &models.Car{
		Name:         "Swift",
		Model:        "Suzuki",
		RentPerDay:   500,
		Availability: true,
		Seats:        5,
		Transmission: models.TransmissionManual,
		FuelType:     models.FuelPetrol,
	}
	if mutate != nil {
		mutate(car)
	}
	require.NoError(t, store.CreateCar(context.Background(), car))
	return car
}

func seedUser(t *testing.T, store *storagetest.Store) *models.User {
	t.Helper()
	u := &models.User{Name: "Alice", Email: "alice@example.com", Username: "alice", Role: models.RoleUser}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateCarValidatesEnums(t *testing.T) {
	store := storagetest.New()
	r := newRouter(store, nil)

	w := doJSON(r, http.MethodPost, "/api/cars", gin.H{
		"name": "Swift", "model": "Suzuki", "rentPerDay": 500, "seats": 5,
		"transmission": "Tiptronic", "fuelType": "Petrol",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListCarsConjunctiveFilters(t *testing.T) {
	store := storagetest.New()
	seedCar(t, store, nil)
	seedCar(t, store, func(c *models.Car) {
		c.Name = "Model 3"
		c.Model = "Tesla"
		c.RentPerDay = 2000
		c.Transmission = models.TransmissionAutomatic
		c.FuelType = models.FuelElectric
		c.AverageRating = 4.5
	})
	r := newRouter(store, nil)

	w := doJSON(r, http.MethodGet, "/api/cars?fuelType=Electric&minPrice=1000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cars []models.Car
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cars))
	require.Len(t, cars, 1)
	require.Equal(t, "Tesla", cars[0].Model)

	// Les filtres se cumulent : aucune électrique en dessous de 1000
	w = doJSON(r, http.MethodGet, "/api/cars?fuelType=Electric&maxPrice=1000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cars))
	require.Empty(t, cars)

	w = doJSON(r, http.MethodGet, "/api/cars?minRating=4", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cars))
	require.Len(t, cars, 1)
}

func TestGetCarComputesLiveAverage(t *testing.T) {
	store := storagetest.New()
	car := seedCar(t, store, nil)
	u := seedUser(t, store)

	// La moyenne stockée est périmée exprès : la lecture unitaire doit la
	// recalculer depuis les avis courants
	require.NoError(t, store.SetCarAverageRating(context.Background(), car.ID, 1))
	for _, rating := range []int{4, 5} {
		require.NoError(t, store.CreateReview(context.Background(), &models.Review{
			CarID: car.ID, UserID: u.ID, Rating: rating, CreatedAt: time.Now(),
		}))
	}

	r := newRouter(store, nil)
	w := doJSON(r, http.MethodGet, "/api/cars/"+car.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Car
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, 4.5, got.AverageRating)
}

func TestUpdateCarNeverTouchesAverageRating(t *testing.T) {
	store := storagetest.New()
	car := seedCar(t, store, func(c *models.Car) { c.AverageRating = 4.2 })
	r := newRouter(store, nil)

	w := doJSON(r, http.MethodPut, "/api/cars/"+car.ID.Hex(), gin.H{
		"name": "Swift Sport", "model": "Suzuki", "rentPerDay": 600, "seats": 5,
		"transmission": "Manual", "fuelType": "Petrol", "averageRating": 5,
	})
	require.Equal(t, http.StatusOK, w.Code)

	got, err := store.GetCarByID(context.Background(), car.ID)
	require.NoError(t, err)
	require.Equal(t, "Swift Sport", got.Name)
	require.Equal(t, 4.2, got.AverageRating)
}

func TestDeleteCar(t *testing.T) {
	store := storagetest.New()
	car := seedCar(t, store, nil)
	r := newRouter(store, nil)

	w := doJSON(r, http.MethodDelete, "/api/cars/"+car.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/cars/"+car.ID.Hex(), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCarBadID(t *testing.T) {
	r := newRouter(storagetest.New(), nil)
	w := doJSON(r, http.MethodGet, "/api/cars/pas-un-id", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCarNotFound(t *testing.T) {
	r := newRouter(storagetest.New(), nil)
	w := doJSON(r, http.MethodGet, "/api/cars/"+bson.NewObjectID().Hex(), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
