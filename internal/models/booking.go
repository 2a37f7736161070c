package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Statuts d'une réservation
const (
	BookingPending   = "Pending"
	BookingPaid      = "Paid"
	BookingCancelled = "Cancelled"
	BookingFailed    = "Failed"
)

type Booking struct {
	ID       bson.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	UserID   bson.ObjectID `bson:"userId" json:"userId"`
	CarID    bson.ObjectID `bson:"carId" json:"carId"`
	FromDate time.Time     `bson:"fromDate" json:"fromDate"`
	ToDate   time.Time     `bson:"toDate" json:"toDate"`
	Amount   float64       `bson:"amount" json:"amount"`
	Days     int           `bson:"days" json:"days"`
	Status   string        `bson:"status" json:"status"`
	// Référence du PaymentIntent Stripe
	PaymentIntentID string `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
}
