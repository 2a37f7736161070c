package mongostore

import (
	"context"
	"time"

	"drivea_back_end/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func (s *Store) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if t.ID.IsZero() {
		t.ID = bson.NewObjectID()
	}
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	_, err := s.col(ColTransactions).InsertOne(ctx, t)
	return err
}

func (s *Store) GetTransactionByID(ctx context.Context, id bson.ObjectID) (*models.Transaction, error) {
	return findOne[models.Transaction](ctx, s.col(ColTransactions), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) GetTransactionByIntent(ctx context.Context, intentID string) (*models.Transaction, error) {
	return findOne[models.Transaction](ctx, s.col(ColTransactions), bson.D{{Key: "paymentIntentId", Value: intentID}})
}

func (s *Store) UpdateTransactionStatus(ctx context.Context, id bson.ObjectID, status, note string) (*models.Transaction, error) {
	set := bson.D{{Key: "updatedAt", Value: time.Now()}}
	if status != "" {
		set = append(set, bson.E{Key: "status", Value: status})
	}
	if note != "" {
		set = append(set, bson.E{Key: "note", Value: note})
	}
	return findOneAndUpdate[models.Transaction](ctx, s.col(ColTransactions),
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: set}})
}

func (s *Store) UpdateTransactionStatusByIntent(ctx context.Context, intentID, status, note string) (*models.Transaction, error) {
	set := bson.D{
		{Key: "status", Value: status},
		{Key: "updatedAt", Value: time.Now()},
	}
	if note != "" {
		set = append(set, bson.E{Key: "note", Value: note})
	}
	return findOneAndUpdate[models.Transaction](ctx, s.col(ColTransactions),
		bson.D{{Key: "paymentIntentId", Value: intentID}},
		bson.D{{Key: "$set", Value: set}})
}

func (s *Store) SetTransactionIntent(ctx context.Context, bookingID bson.ObjectID, intentID string) (*models.Transaction, error) {
	return findOneAndUpdate[models.Transaction](ctx, s.col(ColTransactions),
		bson.D{{Key: "bookingId", Value: bookingID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "paymentIntentId", Value: intentID},
			{Key: "status", Value: models.TransactionPending},
			{Key: "updatedAt", Value: time.Now()},
		}}})
}

func (s *Store) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findMany[models.Transaction](ctx, s.col(ColTransactions), bson.D{}, opts)
}
