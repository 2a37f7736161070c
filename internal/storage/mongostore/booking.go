package mongostore

import (
	"context"

	"drivea_back_end/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func (s *Store) CreateBooking(ctx context.Context, b *models.Booking) error {
	if b.ID.IsZero() {
		b.ID = bson.NewObjectID()
	}
	if b.Status == "" {
		b.Status = models.BookingPending
	}
	_, err := s.col(ColBookings).InsertOne(ctx, b)
	return err
}

func (s *Store) GetBookingByID(ctx context.Context, id bson.ObjectID) (*models.Booking, error) {
	return findOne[models.Booking](ctx, s.col(ColBookings), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) ListBookingsByUser(ctx context.Context, userID bson.ObjectID) ([]models.Booking, error) {
	return findMany[models.Booking](ctx, s.col(ColBookings), bson.D{{Key: "userId", Value: userID}})
}

func (s *Store) SetBookingPaymentIntent(ctx context.Context, id bson.ObjectID, intentID string) error {
	return updateByID(ctx, s.col(ColBookings), id, bson.D{{Key: "paymentIntentId", Value: intentID}})
}

func (s *Store) SetBookingStatus(ctx context.Context, id bson.ObjectID, status string) error {
	return updateByID(ctx, s.col(ColBookings), id, bson.D{{Key: "status", Value: status}})
}

func (s *Store) SetBookingStatusByIntent(ctx context.Context, intentID, status string) (*models.Booking, error) {
	return findOneAndUpdate[models.Booking](ctx, s.col(ColBookings),
		bson.D{{Key: "paymentIntentId", Value: intentID}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: status}}}})
}
