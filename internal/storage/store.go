// Package storage définit l'interface du store documentaire.
//
// L'implémentation MongoDB vit dans storage/mongostore ; les tests utilisent
// le fake en mémoire de storage/storagetest.
package storage

import (
	"context"
	"errors"
	"time"

	"drivea_back_end/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ErrNotFound est renvoyé quand aucun document ne correspond
var ErrNotFound = errors.New("document introuvable")

// CarFilter combine les filtres du catalogue (conjonctifs, zéro = ignoré)
type CarFilter struct {
	Model        string
	FuelType     string
	Transmission string
	Seats        int
	MinPrice     float64
	MaxPrice     float64
	MinRating    float64
}

// UserProfileUpdate porte les champs modifiables du profil (nil = inchangé)
type UserProfileUpdate struct {
	Name             *string
	Password         *string
	TwoFactorEnabled *bool
}

type Store interface {
	// --- Utilisateurs ---
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsersByRole(ctx context.Context, role string) ([]models.User, error)
	SetUserVerified(ctx context.Context, id bson.ObjectID) error
	SetUserPassword(ctx context.Context, id bson.ObjectID, hash string) error
	SetUserLoggedIn(ctx context.Context, id bson.ObjectID, loggedIn bool) error
	SetUserTwoFactorCode(ctx context.Context, id bson.ObjectID, code string, expires time.Time) error
	// ConsumeUserTwoFactorCode efface le code en une seule opération
	// conditionnelle : un code déjà consommé, erroné ou expiré renvoie
	// ErrNotFound (usage unique garanti côté store)
	ConsumeUserTwoFactorCode(ctx context.Context, email, code string, now time.Time) (*models.User, error)
	UpdateUserProfile(ctx context.Context, id bson.ObjectID, upd UserProfileUpdate) (*models.User, error)
	// ApproveSeller ne passe un utilisateur à "seller" que s'il est encore
	// "pending" (mise à jour conditionnelle)
	ApproveSeller(ctx context.Context, id bson.ObjectID) error

	// --- Voitures ---
	CreateCar(ctx context.Context, car *models.Car) error
	GetCarByID(ctx context.Context, id bson.ObjectID) (*models.Car, error)
	ListCars(ctx context.Context, f CarFilter) ([]models.Car, error)
	// UpdateCar remplace les champs modifiables — jamais averageRating,
	// qui n'est écrit que par SetCarAverageRating
	UpdateCar(ctx context.Context, car *models.Car) (*models.Car, error)
	DeleteCar(ctx context.Context, id bson.ObjectID) error
	SetCarAverageRating(ctx context.Context, id bson.ObjectID, avg float64) error

	// --- Avis ---
	CreateReview(ctx context.Context, r *models.Review) error
	GetReviewByID(ctx context.Context, id bson.ObjectID) (*models.Review, error)
	ListReviewsByCar(ctx context.Context, carID bson.ObjectID) ([]models.Review, error)
	UpdateReview(ctx context.Context, id bson.ObjectID, rating int, comment string) error
	DeleteReview(ctx context.Context, id bson.ObjectID) error

	// --- Réservations ---
	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBookingByID(ctx context.Context, id bson.ObjectID) (*models.Booking, error)
	ListBookingsByUser(ctx context.Context, userID bson.ObjectID) ([]models.Booking, error)
	SetBookingPaymentIntent(ctx context.Context, id bson.ObjectID, intentID string) error
	SetBookingStatus(ctx context.Context, id bson.ObjectID, status string) error
	// SetBookingStatusByIntent met à jour le statut de la réservation
	// portant ce PaymentIntent et renvoie le document mis à jour
	SetBookingStatusByIntent(ctx context.Context, intentID, status string) (*models.Booking, error)

	// --- Transactions ---
	CreateTransaction(ctx context.Context, t *models.Transaction) error
	GetTransactionByID(ctx context.Context, id bson.ObjectID) (*models.Transaction, error)
	GetTransactionByIntent(ctx context.Context, intentID string) (*models.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, id bson.ObjectID, status, note string) (*models.Transaction, error)
	UpdateTransactionStatusByIntent(ctx context.Context, intentID, status, note string) (*models.Transaction, error)
	// SetTransactionIntent repointe la transaction d'une réservation vers un
	// nouveau PaymentIntent et la repasse en Pending
	SetTransactionIntent(ctx context.Context, bookingID bson.ObjectID, intentID string) (*models.Transaction, error)
	// ListTransactions renvoie toutes les transactions, la plus récente en
	// premier
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
}
