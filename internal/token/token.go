// Package token gère les tokens signés : sessions et tokens d'action à usage
// unique (confirmation d'email, réinitialisation de mot de passe).
package token

import (
	"errors"
	"fmt"
	"time"

	"drivea_back_end/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// La distinction expiré / invalide permet au client de proposer une
// reconnexion plutôt qu'une nouvelle demande
var (
	ErrExpired = errors.New("token expiré")
	ErrInvalid = errors.New("token invalide")
)

const (
	SessionTTL = 24 * time.Hour
	ActionTTL  = 1 * time.Hour

	PurposeConfirmEmail  = "confirm-email"
	PurposeResetPassword = "reset-password"
)

type Manager struct {
	secret []byte
}

func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

// GenerateSession signe un token de session portant l'identité et le rôle
func (m *Manager) GenerateSession(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"id":   user.ID.Hex(),
		"role": user.Role,
		"exp":  time.Now().Add(SessionTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

// ParseSession vérifie un token de session et renvoie l'id et le rôle
func (m *Manager) ParseSession(tokenString string) (bson.ObjectID, string, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return bson.ObjectID{}, "", err
	}

	id, err := claimObjectID(claims, "id")
	if err != nil {
		return bson.ObjectID{}, "", err
	}
	role, _ := claims["role"].(string)
	return id, role, nil
}

// GenerateAction signe un token à but unique embarquant l'id utilisateur
func (m *Manager) GenerateAction(userID bson.ObjectID, purpose string) (string, error) {
	claims := jwt.MapClaims{
		"id":      userID.Hex(),
		"purpose": purpose,
		"exp":     time.Now().Add(ActionTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

// ParseAction vérifie un token d'action et son but
func (m *Manager) ParseAction(tokenString, purpose string) (bson.ObjectID, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return bson.ObjectID{}, err
	}

	if p, _ := claims["purpose"].(string); p != purpose {
		return bson.ObjectID{}, ErrInvalid
	}
	return claimObjectID(claims, "id")
}

func (m *Manager) parse(tokenString string) (jwt.MapClaims, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("méthode de signature inattendue: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok || !t.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}

func claimObjectID(claims jwt.MapClaims, key string) (bson.ObjectID, error) {
	hex, _ := claims[key].(string)
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.ObjectID{}, ErrInvalid
	}
	return id, nil
}
