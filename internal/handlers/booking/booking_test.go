package booking

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
	"drivea_back_end/internal/payments/paymentstest"
	"drivea_back_end/internal/storage/storagetest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	store   *storagetest.Store
	gateway *paymentstest.Gateway
	user    *models.User
	router  *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := storagetest.New()
	gateway := paymentstest.New()
	u := &models.User{Name: "Alice", Email: "alice@example.com", Username: "alice", Role: models.RoleUser}
	require.NoError(t, store.CreateUser(context.Background(), u))

	h := NewHandler(store, gateway)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.ContextUserKey, u) })
	r.POST("/api/bookings", h.Create)
	r.GET("/api/bookings/user", h.ListMine)
	r.GET("/api/bookings/:id", h.GetByID)
	r.PUT("/api/bookings/:id/cancel", h.Cancel)

	return &fixture{store: store, gateway: gateway, user: u, router: r}
}

func (f *fixture) seedCar(t *testing.T) *models.Car {
	t.Helper()
	car := &models.Car{
		Name: "Swift", Model: "Suzuki", RentPerDay: 500, Availability: true,
		Seats: 5, Transmission: models.TransmissionManual, FuelType: models.FuelPetrol,
	}
	require.NoError(t, f.store.CreateCar(context.Background(), car))
	return car
}

func (f *fixture) doJSON(method, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestCreateBookingComputesDays(t *testing.T) {
	f := newFixture(t)
	car := f.seedCar(t)

	w := f.doJSON(http.MethodPost, "/api/bookings", gin.H{
		"carId":    car.ID.Hex(),
		"fromDate": "2025-01-01",
		"toDate":   "2025-01-04",
		"amount":   1000,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Booking      models.Booking `json:"booking"`
		ClientSecret string         `json:"clientSecret"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 3, resp.Booking.Days)
	require.Equal(t, models.BookingPending, resp.Booking.Status)
	require.NotEmpty(t, resp.Booking.PaymentIntentID)
	require.NotEmpty(t, resp.ClientSecret)

	// Une transaction Pending miroir de l'intent est créée
	txn, err := f.store.GetTransactionByIntent(context.Background(), resp.Booking.PaymentIntentID)
	require.NoError(t, err)
	require.Equal(t, models.TransactionPending, txn.Status)
	require.Equal(t, 1000.0, txn.Amount)
	require.Equal(t, models.PaymentMethodCard, txn.PaymentMethod)
	require.Equal(t, 1, f.gateway.CreateCalls)
}

func TestCreateBookingDaysFallback(t *testing.T) {
	f := newFixture(t)
	car := f.seedCar(t)

	// Intervalle nul : la valeur fournie par le client prend le relais
	w := f.doJSON(http.MethodPost, "/api/bookings", gin.H{
		"carId":    car.ID.Hex(),
		"fromDate": "2025-01-01",
		"toDate":   "2025-01-01",
		"amount":   500,
		"days":     1,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Booking models.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Booking.Days)
}

func TestCreateBookingBadDate(t *testing.T) {
	f := newFixture(t)
	car := f.seedCar(t)

	w := f.doJSON(http.MethodPost, "/api/bookings", gin.H{
		"carId":    car.ID.Hex(),
		"fromDate": "pas-une-date",
		"toDate":   "2025-01-04",
		"amount":   1000,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBookingUnknownCar(t *testing.T) {
	f := newFixture(t)

	w := f.doJSON(http.MethodPost, "/api/bookings", gin.H{
		"carId":    "aaaaaaaaaaaaaaaaaaaaaaaa",
		"fromDate": "2025-01-01",
		"toDate":   "2025-01-04",
		"amount":   1000,
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func seedBooking(t *testing.T, f *fixture, status string, fromDate time.Time) *models.Booking {
	t.Helper()
	car := f.seedCar(t)
	b := &models.Booking{
		UserID: f.user.ID, CarID: car.ID,
		FromDate: fromDate, ToDate: fromDate.AddDate(0, 0, 3),
		Amount: 1500, Days: 3, Status: status,
	}
	require.NoError(t, f.store.CreateBooking(context.Background(), b))
	return b
}

func TestCancelPastBookingRejected(t *testing.T) {
	f := newFixture(t)
	b := seedBooking(t, f, models.BookingPending, time.Now().AddDate(0, 0, -1))

	w := f.doJSON(http.MethodPut, "/api/bookings/"+b.ID.Hex()+"/cancel", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "passée ou en cours")
}

func TestCancelTodayRejected(t *testing.T) {
	f := newFixture(t)
	b := seedBooking(t, f, models.BookingPaid, time.Now())

	w := f.doJSON(http.MethodPut, "/api/bookings/"+b.ID.Hex()+"/cancel", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, 0, f.gateway.RefundCalls)
}

func TestCancelUnpaidBookingNoRefund(t *testing.T) {
	f := newFixture(t)
	b := seedBooking(t, f, models.BookingPending, time.Now().AddDate(0, 0, 7))

	w := f.doJSON(http.MethodPut, "/api/bookings/"+b.ID.Hex()+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := f.store.GetBookingByID(context.Background(), b.ID)
	require.NoError(t, err)
	require.Equal(t, models.BookingCancelled, got.Status)
	require.Equal(t, 0, f.gateway.RefundCalls)
	require.Empty(t, f.store.Transactions)
}

func TestCancelPaidBookingCreatesRefundTransaction(t *testing.T) {
	f := newFixture(t)
	b := seedBooking(t, f, models.BookingPaid, time.Now().AddDate(0, 0, 7))
	require.NoError(t, f.store.SetBookingPaymentIntent(context.Background(), b.ID, "pi_paid"))
	f.gateway.MarkSucceeded("pi_paid")

	original := &models.Transaction{
		BookingID: b.ID, PaymentIntentID: "pi_paid", Amount: 1500,
		Status: models.TransactionSuccess, PaymentMethod: models.PaymentMethodCard,
	}
	require.NoError(t, f.store.CreateTransaction(context.Background(), original))

	w := f.doJSON(http.MethodPut, "/api/bookings/"+b.ID.Hex()+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, f.gateway.RefundCalls)

	got, err := f.store.GetBookingByID(context.Background(), b.ID)
	require.NoError(t, err)
	require.Equal(t, models.BookingCancelled, got.Status)

	// L'originale n'est pas mutée ; une nouvelle écriture Refunded porte la
	// référence du remboursement et le montant d'origine
	require.Len(t, f.store.Transactions, 2)
	kept, err := f.store.GetTransactionByIntent(context.Background(), "pi_paid")
	require.NoError(t, err)
	require.Equal(t, models.TransactionSuccess, kept.Status)

	refunded, err := f.store.GetTransactionByIntent(context.Background(), "re_test_pi_paid")
	require.NoError(t, err)
	require.Equal(t, models.TransactionRefunded, refunded.Status)
	require.Equal(t, 1500.0, refunded.Amount)
	require.Equal(t, models.PaymentMethodCard, refunded.PaymentMethod)
}

func TestListMine(t *testing.T) {
	f := newFixture(t)
	seedBooking(t, f, models.BookingPending, time.Now().AddDate(0, 0, 2))
	seedBooking(t, f, models.BookingPaid, time.Now().AddDate(0, 0, 5))

	w := f.doJSON(http.MethodGet, "/api/bookings/user", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var bookings []models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bookings))
	require.Len(t, bookings, 2)
}

func TestGetBookingJoinsCar(t *testing.T) {
	f := newFixture(t)
	b := seedBooking(t, f, models.BookingPending, time.Now().AddDate(0, 0, 2))

	w := f.doJSON(http.MethodGet, "/api/bookings/"+b.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"car"`)
	require.Contains(t, w.Body.String(), "Swift")
}
