// Package paymentstest fournit une passerelle scriptable pour les tests de
// handlers.
package paymentstest

import (
	"fmt"

	"drivea_back_end/internal/payments"
)

// Gateway simule la passerelle : les intents créés sont mémorisés et leur
// statut peut être forcé par le test
type Gateway struct {
	Intents     map[string]*payments.Intent
	CreateCalls int
	RefundCalls int

	// Erreurs scriptées (nil = succès)
	CreateErr error
	GetErr    error
	RefundErr error
}

var _ payments.Gateway = (*Gateway)(nil)

func New() *Gateway {
	return &Gateway{Intents: make(map[string]*payments.Intent)}
}

func (g *Gateway) CreateIntent(amountMinor int64, currency string, metadata map[string]string) (*payments.Intent, error) {
	g.CreateCalls++
	if g.CreateErr != nil {
		return nil, g.CreateErr
	}
	intent := &payments.Intent{
		ID:           fmt.Sprintf("pi_test_%d", g.CreateCalls),
		ClientSecret: fmt.Sprintf("pi_test_%d_secret", g.CreateCalls),
		Status:       "requires_payment_method",
	}
	g.Intents[intent.ID] = intent
	return intent, nil
}

func (g *Gateway) GetIntent(id string) (*payments.Intent, error) {
	if g.GetErr != nil {
		return nil, g.GetErr
	}
	intent, ok := g.Intents[id]
	if !ok {
		return nil, &payments.Error{StatusCode: 404, Message: "intent inconnu"}
	}
	return intent, nil
}

func (g *Gateway) RefundIntent(intentID string) (*payments.Refund, error) {
	g.RefundCalls++
	if g.RefundErr != nil {
		return nil, g.RefundErr
	}
	return &payments.Refund{ID: "re_test_" + intentID, Status: "succeeded"}, nil
}

// MarkSucceeded force le statut d'un intent existant (ou l'enregistre)
func (g *Gateway) MarkSucceeded(id string) {
	if intent, ok := g.Intents[id]; ok {
		intent.Status = payments.IntentSucceeded
		return
	}
	g.Intents[id] = &payments.Intent{ID: id, ClientSecret: id + "_secret", Status: payments.IntentSucceeded}
}

// MarkStatus force un statut arbitraire
func (g *Gateway) MarkStatus(id, status string) {
	if intent, ok := g.Intents[id]; ok {
		intent.Status = status
		return
	}
	g.Intents[id] = &payments.Intent{ID: id, ClientSecret: id + "_secret", Status: status}
}
