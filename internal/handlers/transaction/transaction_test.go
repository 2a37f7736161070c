package transaction

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"drivea_back_end/internal/models"
	"drivea_back_end/internal/storage/storagetest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(store *storagetest.Store) *gin.Engine {
	h := NewHandler(store)
	r := gin.New()
	r.POST("/api/transaction", h.Create)
	r.GET("/api/transaction", h.List)
	r.GET("/api/transaction/:id", h.GetByID)
	r.PUT("/api/transaction/:id/status", h.UpdateStatus)
	return r
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateTransactionDefaults(t *testing.T) {
	store := storagetest.New()
	r := newRouter(store)

	w := doJSON(r, http.MethodPost, "/api/transaction", gin.H{
		"bookingId":       bson.NewObjectID().Hex(),
		"paymentIntentId": "pi_test",
		"amount":          1000,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var txn models.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txn))
	require.Equal(t, models.TransactionPending, txn.Status)
	require.Equal(t, models.PaymentMethodCard, txn.PaymentMethod)
	require.False(t, txn.CreatedAt.IsZero())
}

func TestCreateTransactionRejectsUnknownStatus(t *testing.T) {
	r := newRouter(storagetest.New())

	w := doJSON(r, http.MethodPost, "/api/transaction", gin.H{
		"bookingId":       bson.NewObjectID().Hex(),
		"paymentIntentId": "pi_test",
		"amount":          1000,
		"status":          "Annulée",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatusRefreshesTimestampAndNote(t *testing.T) {
	store := storagetest.New()
	txn := &models.Transaction{
		BookingID: bson.NewObjectID(), PaymentIntentID: "pi_test", Amount: 500,
		Status: models.TransactionPending, PaymentMethod: models.PaymentMethodCard,
	}
	require.NoError(t, store.CreateTransaction(context.Background(), txn))
	created := txn.UpdatedAt

	r := newRouter(store)
	time.Sleep(5 * time.Millisecond)
	w := doJSON(r, http.MethodPut, "/api/transaction/"+txn.ID.Hex()+"/status", gin.H{
		"status": models.TransactionSuccess,
		"note":   "Paiement réussi",
	})
	require.Equal(t, http.StatusOK, w.Code)

	got, err := store.GetTransactionByID(context.Background(), txn.ID)
	require.NoError(t, err)
	require.Equal(t, models.TransactionSuccess, got.Status)
	require.Equal(t, "Paiement réussi", got.Note)
	require.True(t, got.UpdatedAt.After(created))
}

func TestGetTransactionJoinsBooking(t *testing.T) {
	store := storagetest.New()
	b := &models.Booking{
		UserID: bson.NewObjectID(), CarID: bson.NewObjectID(),
		FromDate: time.Now(), ToDate: time.Now().AddDate(0, 0, 2),
		Amount: 800, Days: 2, Status: models.BookingPaid,
	}
	require.NoError(t, store.CreateBooking(context.Background(), b))

	txn := &models.Transaction{
		BookingID: b.ID, PaymentIntentID: "pi_test", Amount: 800,
		Status: models.TransactionSuccess, PaymentMethod: models.PaymentMethodCard,
	}
	require.NoError(t, store.CreateTransaction(context.Background(), txn))

	r := newRouter(store)
	w := doJSON(r, http.MethodGet, "/api/transaction/"+txn.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"booking"`)
	require.Contains(t, w.Body.String(), `"Paid"`)
}

func TestListNewestFirst(t *testing.T) {
	store := storagetest.New()
	for i, intent := range []string{"pi_1", "pi_2", "pi_3"} {
		require.NoError(t, store.CreateTransaction(context.Background(), &models.Transaction{
			BookingID: bson.NewObjectID(), PaymentIntentID: intent, Amount: 100,
			Status: models.TransactionPending, PaymentMethod: models.PaymentMethodCard,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Minute),
		}))
	}

	r := newRouter(store)
	w := doJSON(r, http.MethodGet, "/api/transaction", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var results []models.TransactionWithBooking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 3)
	require.Equal(t, "pi_3", results[0].PaymentIntentID)
	require.Equal(t, "pi_1", results[2].PaymentIntentID)
}
