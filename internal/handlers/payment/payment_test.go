package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"drivea_back_end/internal/models"
	"drivea_back_end/internal/payments"
	"drivea_back_end/internal/payments/paymentstest"
	"drivea_back_end/internal/storage/storagetest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	store   *storagetest.Store
	gateway *paymentstest.Gateway
	router  *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := storagetest.New()
	gateway := paymentstest.New()
	h := NewHandler(store, gateway)

	r := gin.New()
	r.POST("/api/payments/create-payment-intent", h.CreateIntent)
	r.POST("/api/payments/confirm-payment", h.Confirm)
	r.POST("/api/payments/refund-payment", h.Refund)

	return &fixture{store: store, gateway: gateway, router: r}
}

func (f *fixture) seedBooking(t *testing.T, status, intentID string) *models.Booking {
	t.Helper()
	b := &models.Booking{
		UserID: bson.NewObjectID(), CarID: bson.NewObjectID(),
		FromDate: time.Now().AddDate(0, 0, 5), ToDate: time.Now().AddDate(0, 0, 8),
		Amount: 1000, Days: 3, Status: status, PaymentIntentID: intentID,
	}
	require.NoError(t, f.store.CreateBooking(context.Background(), b))
	if intentID != "" {
		require.NoError(t, f.store.CreateTransaction(context.Background(), &models.Transaction{
			BookingID: b.ID, PaymentIntentID: intentID, Amount: b.Amount,
			Status: models.TransactionPending, PaymentMethod: models.PaymentMethodCard,
		}))
	}
	return b
}

func (f *fixture) postJSON(path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestCreateIntentReusesExisting(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(t, models.BookingPending, "pi_existant")
	f.gateway.MarkStatus("pi_existant", "requires_payment_method")

	// Une requête rejouée réutilise l'intent déjà porté par la réservation
	w := f.postJSON("/api/payments/create-payment-intent", gin.H{"bookingId": b.ID.Hex()})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "pi_existant")
	require.Equal(t, 0, f.gateway.CreateCalls)
}

func TestCreateIntentForBookingWithoutOne(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(t, models.BookingPending, "")
	require.NoError(t, f.store.CreateTransaction(context.Background(), &models.Transaction{
		BookingID: b.ID, PaymentIntentID: "pi_orphelin", Amount: b.Amount,
		Status: models.TransactionFailed, PaymentMethod: models.PaymentMethodCard,
	}))

	w := f.postJSON("/api/payments/create-payment-intent", gin.H{"bookingId": b.ID.Hex()})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, f.gateway.CreateCalls)

	// La réservation et sa transaction pointent vers le nouvel intent
	got, err := f.store.GetBookingByID(context.Background(), b.ID)
	require.NoError(t, err)
	require.NotEmpty(t, got.PaymentIntentID)

	txn, err := f.store.GetTransactionByIntent(context.Background(), got.PaymentIntentID)
	require.NoError(t, err)
	require.Equal(t, models.TransactionPending, txn.Status)
}

func TestConfirmSucceededIntent(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(t, models.BookingPending, "pi_ok")
	f.gateway.MarkSucceeded("pi_ok")

	w := f.postJSON("/api/payments/confirm-payment", gin.H{"paymentIntentId": "pi_ok"})
	require.Equal(t, http.StatusOK, w.Code)

	gotBooking, err := f.store.GetBookingByID(context.Background(), b.ID)
	require.NoError(t, err)
	require.Equal(t, models.BookingPaid, gotBooking.Status)

	txn, err := f.store.GetTransactionByIntent(context.Background(), "pi_ok")
	require.NoError(t, err)
	require.Equal(t, models.TransactionSuccess, txn.Status)
	require.Equal(t, "Paiement réussi", txn.Note)
}

func TestConfirmNonSucceededLeavesLedgerUntouched(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(t, models.BookingPending, "pi_attente")
	f.gateway.MarkStatus("pi_attente", "requires_payment_method")

	w := f.postJSON("/api/payments/confirm-payment", gin.H{"paymentIntentId": "pi_attente"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Statut de paiement inattendu")

	gotBooking, err := f.store.GetBookingByID(context.Background(), b.ID)
	require.NoError(t, err)
	require.Equal(t, models.BookingPending, gotBooking.Status)

	txn, err := f.store.GetTransactionByIntent(context.Background(), "pi_attente")
	require.NoError(t, err)
	require.Equal(t, models.TransactionPending, txn.Status)
}

func TestConfirmPaymentRequiredError(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(t, models.BookingPending, "pi_refuse")
	f.gateway.GetErr = &payments.Error{StatusCode: 402, Message: "carte refusée"}

	w := f.postJSON("/api/payments/confirm-payment", gin.H{"paymentIntentId": "pi_refuse"})
	require.Equal(t, http.StatusPaymentRequired, w.Code)

	gotBooking, err := f.store.GetBookingByID(context.Background(), b.ID)
	require.NoError(t, err)
	require.Equal(t, models.BookingCancelled, gotBooking.Status)

	txn, err := f.store.GetTransactionByIntent(context.Background(), "pi_refuse")
	require.NoError(t, err)
	require.Equal(t, models.TransactionFailed, txn.Status)
}

func TestRefundRequiresSucceededIntent(t *testing.T) {
	f := newFixture(t)
	f.seedBooking(t, models.BookingPending, "pi_pas_paye")
	f.gateway.MarkStatus("pi_pas_paye", "requires_payment_method")

	w := f.postJSON("/api/payments/refund-payment", gin.H{"paymentIntentId": "pi_pas_paye"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Remboursement impossible")
	require.Equal(t, 0, f.gateway.RefundCalls)
}

func TestRefundCreatesNewTransaction(t *testing.T) {
	f := newFixture(t)
	b := f.seedBooking(t, models.BookingPaid, "pi_paye")
	f.gateway.MarkSucceeded("pi_paye")
	_, err := f.store.UpdateTransactionStatusByIntent(context.Background(), "pi_paye", models.TransactionSuccess, "")
	require.NoError(t, err)

	w := f.postJSON("/api/payments/refund-payment", gin.H{"paymentIntentId": "pi_paye"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, f.gateway.RefundCalls)

	require.Len(t, f.store.Transactions, 2)
	refunded, err := f.store.GetTransactionByIntent(context.Background(), "re_test_pi_paye")
	require.NoError(t, err)
	require.Equal(t, models.TransactionRefunded, refunded.Status)
	require.Equal(t, 1000.0, refunded.Amount)

	gotBooking, err := f.store.GetBookingByID(context.Background(), b.ID)
	require.NoError(t, err)
	require.Equal(t, models.BookingCancelled, gotBooking.Status)
}
