package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Statuts d'une transaction
const (
	TransactionPending  = "Pending"
	TransactionSuccess  = "Success"
	TransactionFailed   = "Failed"
	TransactionRefunded = "Refunded"
)

// Seule méthode de paiement supportée pour l'instant
const PaymentMethodCard = "card"

type Transaction struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	BookingID bson.ObjectID `bson:"bookingId" json:"bookingId"`
	// Référence du PaymentIntent — pour un remboursement, c'est l'ID du
	// refund Stripe qui est stocké ici (nouvelle transaction, jamais une
	// mutation de l'originale)
	PaymentIntentID string    `bson:"paymentIntentId" json:"paymentIntentId"`
	Amount          float64   `bson:"amount" json:"amount"`
	Last4           string    `bson:"last4,omitempty" json:"last4,omitempty"`
	Status          string    `bson:"status" json:"status"`
	PaymentMethod   string    `bson:"paymentMethod" json:"paymentMethod"`
	Reason          string    `bson:"reason,omitempty" json:"reason,omitempty"`
	Note            string    `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	// Rafraîchi automatiquement par le store à chaque mutation
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// TransactionWithBooking joint la réservation associée pour les lectures
type TransactionWithBooking struct {
	Transaction `bson:",inline"`
	Booking     *Booking `bson:"booking,omitempty" json:"booking,omitempty"`
}
