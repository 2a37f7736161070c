// Package storagetest fournit un Store en mémoire pour les tests de
// handlers, avec la même sémantique conditionnelle que mongostore.
package storagetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"drivea_back_end/internal/models"
	"drivea_back_end/internal/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Store struct {
	mu           sync.Mutex
	Users        map[bson.ObjectID]*models.User
	Cars         map[bson.ObjectID]*models.Car
	Reviews      map[bson.ObjectID]*models.Review
	Bookings     map[bson.ObjectID]*models.Booking
	Transactions map[bson.ObjectID]*models.Transaction
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		Users:        make(map[bson.ObjectID]*models.User),
		Cars:         make(map[bson.ObjectID]*models.Car),
		Reviews:      make(map[bson.ObjectID]*models.Review),
		Bookings:     make(map[bson.ObjectID]*models.Booking),
		Transactions: make(map[bson.ObjectID]*models.Transaction),
	}
}

// --- Utilisateurs ---

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	cp := *u
	s.Users[u.ID] = &cp
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id bson.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.Users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.Users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.Users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) ListUsersByRole(_ context.Context, role string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.Users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *Store) SetUserVerified(_ context.Context, id bson.ObjectID) error {
	return s.mutateUser(id, func(u *models.User) { u.IsVerified = true })
}

func (s *Store) SetUserPassword(_ context.Context, id bson.ObjectID, hash string) error {
	return s.mutateUser(id, func(u *models.User) { u.Password = hash })
}

func (s *Store) SetUserLoggedIn(_ context.Context, id bson.ObjectID, loggedIn bool) error {
	return s.mutateUser(id, func(u *models.User) { u.IsLoggedIn = loggedIn })
}

func (s *Store) SetUserTwoFactorCode(_ context.Context, id bson.ObjectID, code string, expires time.Time) error {
	return s.mutateUser(id, func(u *models.User) {
		u.TwoFactorCode = code
		u.TwoFactorCodeExpires = expires
	})
}

func (s *Store) ConsumeUserTwoFactorCode(_ context.Context, email, code string, now time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.Users {
		if u.Email == email && u.TwoFactorCode != "" && u.TwoFactorCode == code && u.TwoFactorCodeExpires.After(now) {
			u.TwoFactorCode = ""
			u.TwoFactorCodeExpires = time.Time{}
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) UpdateUserProfile(_ context.Context, id bson.ObjectID, upd storage.UserProfileUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.Users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Password != nil {
		u.Password = *upd.Password
	}
	if upd.TwoFactorEnabled != nil {
		u.TwoFactorEnabled = *upd.TwoFactorEnabled
	}
	cp := *u
	cp.Password = ""
	return &cp, nil
}

func (s *Store) ApproveSeller(_ context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.Users[id]
	if !ok || u.Role != models.RolePending {
		return storage.ErrNotFound
	}
	u.Role = models.RoleSeller
	return nil
}

func (s *Store) mutateUser(id bson.ObjectID, fn func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.Users[id]
	if !ok {
		return storage.ErrNotFound
	}
	fn(u)
	return nil
}

// --- Voitures ---

func (s *Store) CreateCar(_ context.Context, car *models.Car) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if car.ID.IsZero() {
		car.ID = bson.NewObjectID()
	}
	cp := *car
	s.Cars[car.ID] = &cp
	return nil
}

func (s *Store) GetCarByID(_ context.Context, id bson.ObjectID) (*models.Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	car, ok := s.Cars[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *car
	return &cp, nil
}

func (s *Store) ListCars(_ context.Context, f storage.CarFilter) ([]models.Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Car
	for _, car := range s.Cars {
		if f.Model != "" && car.Model != f.Model {
			continue
		}
		if f.FuelType != "" && car.FuelType != f.FuelType {
			continue
		}
		if f.Transmission != "" && car.Transmission != f.Transmission {
			continue
		}
		if f.Seats != 0 && car.Seats != f.Seats {
			continue
		}
		if f.MinPrice != 0 && car.RentPerDay < f.MinPrice {
			continue
		}
		if f.MaxPrice != 0 && car.RentPerDay > f.MaxPrice {
			continue
		}
		if f.MinRating != 0 && car.AverageRating < f.MinRating {
			continue
		}
		out = append(out, *car)
	}
	return out, nil
}

func (s *Store) UpdateCar(_ context.Context, car *models.Car) (*models.Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.Cars[car.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	avg := existing.AverageRating
	cp := *car
	cp.AverageRating = avg
	s.Cars[car.ID] = &cp
	out := cp
	return &out, nil
}

func (s *Store) DeleteCar(_ context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Cars[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.Cars, id)
	return nil
}

func (s *Store) SetCarAverageRating(_ context.Context, id bson.ObjectID, avg float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	car, ok := s.Cars[id]
	if !ok {
		return storage.ErrNotFound
	}
	car.AverageRating = avg
	return nil
}

// --- Avis ---

func (s *Store) CreateReview(_ context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = bson.NewObjectID()
	}
	cp := *r
	s.Reviews[r.ID] = &cp
	return nil
}

func (s *Store) GetReviewByID(_ context.Context, id bson.ObjectID) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.Reviews[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *Store) ListReviewsByCar(_ context.Context, carID bson.ObjectID) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Review
	for _, r := range s.Reviews {
		if r.CarID == carID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *Store) UpdateReview(_ context.Context, id bson.ObjectID, rating int, comment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.Reviews[id]
	if !ok {
		return storage.ErrNotFound
	}
	r.Rating = rating
	r.Comment = comment
	return nil
}

func (s *Store) DeleteReview(_ context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Reviews[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.Reviews, id)
	return nil
}

// --- Réservations ---

func (s *Store) CreateBooking(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID.IsZero() {
		b.ID = bson.NewObjectID()
	}
	cp := *b
	s.Bookings[b.ID] = &cp
	return nil
}

func (s *Store) GetBookingByID(_ context.Context, id bson.ObjectID) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.Bookings[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *Store) ListBookingsByUser(_ context.Context, userID bson.ObjectID) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.Bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *Store) SetBookingPaymentIntent(_ context.Context, id bson.ObjectID, intentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.Bookings[id]
	if !ok {
		return storage.ErrNotFound
	}
	b.PaymentIntentID = intentID
	return nil
}

func (s *Store) SetBookingStatus(_ context.Context, id bson.ObjectID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.Bookings[id]
	if !ok {
		return storage.ErrNotFound
	}
	b.Status = status
	return nil
}

func (s *Store) SetBookingStatusByIntent(_ context.Context, intentID, status string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.Bookings {
		if b.PaymentIntentID == intentID {
			b.Status = status
			cp := *b
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

// --- Transactions ---

func (s *Store) CreateTransaction(_ context.Context, t *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID.IsZero() {
		t.ID = bson.NewObjectID()
	}
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	cp := *t
	s.Transactions[t.ID] = &cp
	return nil
}

func (s *Store) GetTransactionByID(_ context.Context, id bson.ObjectID) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.Transactions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *Store) GetTransactionByIntent(_ context.Context, intentID string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.Transactions {
		if t.PaymentIntentID == intentID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) UpdateTransactionStatus(_ context.Context, id bson.ObjectID, status, note string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.Transactions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	t.Status = status
	if note != "" {
		t.Note = note
	}
	t.UpdatedAt = time.Now()
	cp := *t
	return &cp, nil
}

func (s *Store) UpdateTransactionStatusByIntent(_ context.Context, intentID, status, note string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.Transactions {
		if t.PaymentIntentID == intentID {
			t.Status = status
			if note != "" {
				t.Note = note
			}
			t.UpdatedAt = time.Now()
			cp := *t
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) SetTransactionIntent(_ context.Context, bookingID bson.ObjectID, intentID string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.Transactions {
		if t.BookingID == bookingID {
			t.PaymentIntentID = intentID
			t.Status = models.TransactionPending
			t.UpdatedAt = time.Now()
			cp := *t
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) ListTransactions(_ context.Context) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Transaction, 0, len(s.Transactions))
	for _, t := range s.Transactions {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
