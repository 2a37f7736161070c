// Package payments encapsule la passerelle de paiement externe.
//
// Les handlers ne manipulent que l'interface Gateway et le type Error : un
// échec de paiement (type 402) se distingue explicitement de toute autre
// erreur passerelle, sans exception ni inspection de l'erreur Stripe brute.
package payments

import (
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/refund"
)

// Devise unique du service (montants envoyés en centimes)
const Currency = "inr"

// Statut passerelle signifiant qu'un intent a été encaissé
const IntentSucceeded = "succeeded"

// Intent est la vue locale d'un PaymentIntent
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

// Refund est la vue locale d'un remboursement
type Refund struct {
	ID     string
	Status string
}

// Error porte l'échec passerelle avec son statut HTTP d'origine
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("erreur passerelle de paiement (%d): %s", e.StatusCode, e.Message)
}

// IsPaymentRequired indique un refus de paiement type 402 (carte refusée,
// fonds insuffisants)
func IsPaymentRequired(err error) bool {
	var gwErr *Error
	return errors.As(err, &gwErr) && gwErr.StatusCode == 402
}

type Gateway interface {
	// CreateIntent crée un PaymentIntent pour un montant en centimes
	CreateIntent(amountMinor int64, currency string, metadata map[string]string) (*Intent, error)
	GetIntent(id string) (*Intent, error)
	RefundIntent(intentID string) (*Refund, error)
}

// StripeGateway implémente Gateway avec l'API Stripe (clé globale
// initialisée au démarrage)
type StripeGateway struct{}

func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

func (g *StripeGateway) CreateIntent(amountMinor int64, currency string, metadata map[string]string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountMinor),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Metadata:           metadata,
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, wrapStripeError(err)
	}
	return &Intent{ID: intent.ID, ClientSecret: intent.ClientSecret, Status: string(intent.Status)}, nil
}

func (g *StripeGateway) GetIntent(id string) (*Intent, error) {
	intent, err := paymentintent.Get(id, nil)
	if err != nil {
		return nil, wrapStripeError(err)
	}
	return &Intent{ID: intent.ID, ClientSecret: intent.ClientSecret, Status: string(intent.Status)}, nil
}

func (g *StripeGateway) RefundIntent(intentID string) (*Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
	}

	r, err := refund.New(params)
	if err != nil {
		return nil, wrapStripeError(err)
	}
	return &Refund{ID: r.ID, Status: string(r.Status)}, nil
}

func wrapStripeError(err error) error {
	var sErr *stripe.Error
	if errors.As(err, &sErr) {
		msg := sErr.Msg
		if msg == "" {
			msg = "échec du paiement"
		}
		return &Error{StatusCode: sErr.HTTPStatusCode, Message: msg}
	}
	return err
}
