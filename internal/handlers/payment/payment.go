package payment

import (
	"context"
	"log"
	"net/http"
	"time"

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

// CreateIntent ouvre un PaymentIntent pour une réservation ; si la
// réservation en porte déjà un, il est réutilisé tel quel (une requête
// rejouée ne crée jamais d'intent en double côté passerelle)
func (h *Handler) CreateIntent(c *gin.Context) {
	var input struct {
		BookingID string `json:"bookingId" binding:"required"`
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := h.Store.GetBookingByID(ctx, bookingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Réservation introuvable"})
		return
	}

	if b.PaymentIntentID != "" {
		intent, err := h.Gateway.GetIntent(b.PaymentIntentID)
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"clientSecret": intent.ClientSecret, "paymentIntentId": intent.ID})
			return
		}
		log.Printf("⚠️ Intent existant %s irrécupérable, création d'un nouveau: %v", b.PaymentIntentID, err)
	}

	intent, err := h.Gateway.CreateIntent(int64(b.Amount*100), payments.Currency,
		map[string]string{"bookingId": b.ID.Hex()})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création du paiement"})
		return
	}

	if err := h.Store.SetBookingPaymentIntent(ctx, b.ID, intent.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création du paiement"})
		return
	}
	if _, err := h.Store.SetTransactionIntent(ctx, b.ID, intent.ID); err != nil {
		log.Printf("⚠️ Aucune transaction à repointer pour la réservation %s", b.ID.Hex())
	}

	log.Printf("💳 PaymentIntent %s créé pour la réservation %s", intent.ID, b.ID.Hex())
	c.JSON(http.StatusOK, gin.H{"clientSecret": intent.ClientSecret, "paymentIntentId": intent.ID})
}

// Confirm réconcilie l'état rapporté par la passerelle avec le grand livre
func (h *Handler) Confirm(c *gin.Context) {
	var input struct {
		PaymentIntentID string `json:"paymentIntentId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	intent, err := h.Gateway.GetIntent(input.PaymentIntentID)
	if err != nil {
		if payments.IsPaymentRequired(err) {
			// Carte refusée : la transaction échoue et la réservation tombe
			if _, uerr := h.Store.UpdateTransactionStatusByIntent(ctx, input.PaymentIntentID,
				models.TransactionFailed, "Paiement refusé par la passerelle"); uerr != nil {
				log.Printf("⚠️ Erreur marquage transaction échouée pour %s: %v", input.PaymentIntentID, uerr)
			}
			if _, uerr := h.Store.SetBookingStatusByIntent(ctx, input.PaymentIntentID,
				models.BookingCancelled); uerr != nil {
				log.Printf("⚠️ Erreur annulation réservation pour %s: %v", input.PaymentIntentID, uerr)
			}
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Paiement refusé"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vérification du paiement"})
		return
	}

	if intent.Status != payments.IntentSucceeded {
		// Statut non abouti : on répond en erreur sans toucher au grand livre
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut de paiement inattendu: " + intent.Status})
		return
	}

	txn, err := h.Store.UpdateTransactionStatusByIntent(ctx, input.PaymentIntentID,
		models.TransactionSuccess, "Paiement réussi")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction introuvable"})
		return
	}

	b, err := h.Store.SetBookingStatusByIntent(ctx, input.PaymentIntentID, models.BookingPaid)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Réservation introuvable"})
		return
	}

	log.Printf("✅ Paiement confirmé pour la réservation %s", b.ID.Hex())
	c.JSON(http.StatusOK, gin.H{"message": "Paiement confirmé", "transaction": txn, "booking": b})
}

// Refund rembourse un intent encaissé, indépendamment du flux d'annulation
func (h *Handler) Refund(c *gin.Context) {
	var input struct {
		PaymentIntentID string `json:"paymentIntentId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	intent, err := h.Gateway.GetIntent(input.PaymentIntentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vérification du paiement"})
		return
	}
	if intent.Status != payments.IntentSucceeded {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paiement non abouti. Remboursement impossible."})
		return
	}

	refund, err := h.Gateway.RefundIntent(input.PaymentIntentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du remboursement"})
		return
	}

	original, err := h.Store.GetTransactionByIntent(ctx, input.PaymentIntentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction d'origine introuvable"})
		return
	}

	refundTxn := &models.Transaction{
		BookingID:       original.BookingID,
		PaymentIntentID: refund.ID,
		Amount:          original.Amount,
		Status:          models.TransactionRefunded,
		PaymentMethod:   original.PaymentMethod,
		Reason:          "Remboursement demandé",
		Note:            "Remboursement effectué",
	}
	if err := h.Store.CreateTransaction(ctx, refundTxn); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement du remboursement"})
		return
	}

	if _, err := h.Store.SetBookingStatusByIntent(ctx, input.PaymentIntentID, models.BookingCancelled); err != nil {
		log.Printf("⚠️ Aucune réservation à annuler pour l'intent %s", input.PaymentIntentID)
	}

	log.Printf("💰 Remboursement %s effectué pour l'intent %s", refund.ID, input.PaymentIntentID)
	c.JSON(http.StatusOK, gin.H{"message": "Remboursement effectué", "refundId": refund.ID})
}
