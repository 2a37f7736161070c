package transaction

import (
	"context"
	"net/http"
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

// Create enregistre une transaction dans le grand livre
func (h *Handler) Create(c *gin.Context) {
	var input struct {
		BookingID       string  `json:"bookingId" binding:"required"`
		PaymentIntentID string  `json:"paymentIntentId" binding:"required"`
		Amount          float64 `json:"amount" binding:"required,gt=0"`
		Last4           string  `json:"last4"`
		Status          string  `json:"status" binding:"omitempty,oneof=Pending Success Failed Refunded"`
		PaymentMethod   string  `json:"paymentMethod"`
		Reason          string  `json:"reason"`
		Note            string  `json:"note"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bookingID, err := bson.ObjectIDFromHex(input.BookingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID réservation invalide"})
		return
	}

	status := input.Status
	if status == "" {
		status = models.TransactionPending
	}
	method := input.PaymentMethod
	if method == "" {
		method = models.PaymentMethodCard
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	txn := &models.Transaction{
		BookingID:       bookingID,
		PaymentIntentID: input.PaymentIntentID,
		Amount:          input.Amount,
		Last4:           input.Last4,
		Status:          status,
		PaymentMethod:   method,
		Reason:          input.Reason,
		Note:            input.Note,
	}
	if err := h.Store.CreateTransaction(ctx, txn); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création de la transaction"})
		return
	}

	c.JSON(http.StatusCreated, txn)
}

// GetByID renvoie une transaction avec sa réservation jointe
func (h *Handler) GetByID(c *gin.Context) {
	txnID, err := bson.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID transaction invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	txn, err := h.Store.GetTransactionByID(ctx, txnID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction introuvable"})
		return
	}

	result := models.TransactionWithBooking{Transaction: *txn}
	if b, err := h.Store.GetBookingByID(ctx, txn.BookingID); err == nil {
		result.Booking = b
	}

	c.JSON(http.StatusOK, result)
}

// UpdateStatus change le statut d'une transaction (avec note facultative)
func (h *Handler) UpdateStatus(c *gin.Context) {
	txnID, err := bson.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID transaction invalide"})
		return
	}

	var input struct {
		Status string `json:"status" binding:"required,oneof=Pending Success Failed Refunded"`
		Note   string `json:"note"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	txn, err := h.Store.UpdateTransactionStatus(ctx, txnID, input.Status, input.Note)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction introuvable"})
		return
	}

	c.JSON(http.StatusOK, txn)
}

// List renvoie toutes les transactions, la plus récente en premier, avec
// leur réservation jointe
func (h *Handler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	txns, err := h.Store.ListTransactions(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture des transactions"})
		return
	}

	results := make([]models.TransactionWithBooking, 0, len(txns))
	for i := range txns {
		item := models.TransactionWithBooking{Transaction: txns[i]}
		if b, err := h.Store.GetBookingByID(ctx, txns[i].BookingID); err == nil {
			item.Booking = b
		}
		results = append(results, item)
	}

	c.JSON(http.StatusOK, results)
}
