package booking

import (
	"context"
	"log"
	"math"
	"net/http"
	"time"

	"drivea_back_end/internal/middleware"
	"drivea_back_end/internal/models"
	"drivea_back_end/internal/payments"
	"drivea_back_end/internal/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type Handler struct {
	Store   storage.Store
	Gateway payments.Gateway
}

func NewHandler(store storage.Store, gateway payments.Gateway) *Handler {
	return &Handler{Store: store, Gateway: gateway}
}

// Create enregistre une réservation Pending, ouvre le PaymentIntent et crée
// la transaction miroir
func (h *Handler) Create(c *gin.Context) {
	var input struct {
		CarID    string  `json:"carId" binding:"required"`
		FromDate string  `json:"fromDate" binding:"required"`
		ToDate   string  `json:"toDate" binding:"required"`
		Amount   float64 `json:"amount" binding:"required,gt=0"`
		Days     int     `json:"days"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	carID, err := bson.ObjectIDFromHex(input.CarID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID voiture invalide"})
		return
	}

	fromDate, err := parseDate(input.FromDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date de début invalide"})
		return
	}
	toDate, err := parseDate(input.ToDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date de fin invalide"})
		return
	}

	// Nombre de jours calculé depuis l'intervalle ; la valeur fournie par le
	// client ne sert que si le calcul est nul ou négatif
	days := int(math.Ceil(toDate.Sub(fromDate).Hours() / 24))
	if days <= 0 {
		days = input.Days
	}

	user := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := h.Store.GetCarByID(ctx, carID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Voiture introuvable"})
		return
	}

	b := &models.Booking{
		UserID:   user.ID,
		CarID:    carID,
		FromDate: fromDate,
		ToDate:   toDate,
		Amount:   input.Amount,
		Days:     days,
		Status:   models.BookingPending,
	}
	if err := h.Store.CreateBooking(ctx, b); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création de la réservation"})
		return
	}

	intent, err := h.Gateway.CreateIntent(int64(input.Amount*100), payments.Currency,
		map[string]string{"bookingId": b.ID.Hex()})
	if err != nil {
		log.Printf("❌ Erreur création du PaymentIntent pour %s: %v", b.ID.Hex(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création du paiement"})
		return
	}

	if err := h.Store.SetBookingPaymentIntent(ctx, b.ID, intent.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création de la réservation"})
		return
	}
	b.PaymentIntentID = intent.ID

	txn := &models.Transaction{
		BookingID:       b.ID,
		PaymentIntentID: intent.ID,
		Amount:          input.Amount,
		Status:          models.TransactionPending,
		PaymentMethod:   models.PaymentMethodCard,
	}
	if err := h.Store.CreateTransaction(ctx, txn); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création de la transaction"})
		return
	}

	log.Printf("💳 Réservation %s créée, intent %s", b.ID.Hex(), intent.ID)
	c.JSON(http.StatusCreated, gin.H{
		"booking":      b,
		"clientSecret": intent.ClientSecret,
	})
}

// ListMine renvoie les réservations de l'utilisateur courant
func (h *Handler) ListMine(c *gin.Context) {
	user := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bookings, err := h.Store.ListBookingsByUser(ctx, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture des réservations"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// GetByID renvoie une réservation avec sa voiture jointe
func (h *Handler) GetByID(c *gin.Context) {
	bookingID, err := bson.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID réservation invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	b, err := h.Store.GetBookingByID(ctx, bookingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Réservation introuvable"})
		return
	}

	resp := gin.H{"booking": b}
	if car, err := h.Store.GetCarByID(ctx, b.CarID); err == nil {
		resp["car"] = car
	}

	c.JSON(http.StatusOK, resp)
}

// Cancel annule une réservation à venir ; une réservation payée est
// remboursée via la passerelle et tracée par une nouvelle transaction
// Refunded
func (h *Handler) Cancel(c *gin.Context) {
	bookingID, err := bson.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID réservation invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := h.Store.GetBookingByID(ctx, bookingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Réservation introuvable"})
		return
	}

	// Une location déjà commencée (ou qui commence aujourd'hui) ne
	// s'annule pas
	today := time.Now().Truncate(24 * time.Hour)
	if !b.FromDate.Truncate(24 * time.Hour).After(today) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Impossible d'annuler une réservation passée ou en cours"})
		return
	}

	if b.Status != models.BookingPaid {
		if err := h.Store.SetBookingStatus(ctx, b.ID, models.BookingCancelled); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur annulation de la réservation"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Réservation annulée"})
		return
	}

	refund, err := h.Gateway.RefundIntent(b.PaymentIntentID)
	if err != nil {
		log.Printf("❌ Erreur remboursement de l'intent %s: %v", b.PaymentIntentID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du remboursement"})
		return
	}

	original, err := h.Store.GetTransactionByIntent(ctx, b.PaymentIntentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction d'origine introuvable"})
		return
	}

	// Le remboursement est une nouvelle écriture du grand livre, jamais une
	// mutation de la transaction d'origine
	refundTxn := &models.Transaction{
		BookingID:       b.ID,
		PaymentIntentID: refund.ID,
		Amount:          original.Amount,
		Status:          models.TransactionRefunded,
		PaymentMethod:   original.PaymentMethod,
		Reason:          "Annulation par l'utilisateur",
		Note:            "Remboursement effectué",
	}
	if err := h.Store.CreateTransaction(ctx, refundTxn); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement du remboursement"})
		return
	}

	if err := h.Store.SetBookingStatus(ctx, b.ID, models.BookingCancelled); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur annulation de la réservation"})
		return
	}

	log.Printf("💰 Réservation %s annulée et remboursée (%s)", b.ID.Hex(), refund.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Réservation annulée et remboursée"})
}

// parseDate accepte une date simple ou un horodatage complet
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
