package mongostore

import (
	"context"
	"time"

	"drivea_back_end/internal/models"
	"drivea_back_end/internal/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func (s *Store) CreateReview(ctx context.Context, r *models.Review) error {
	if r.ID.IsZero() {
		r.ID = bson.NewObjectID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	_, err := s.col(ColReviews).InsertOne(ctx, r)
	return err
}

func (s *Store) GetReviewByID(ctx context.Context, id bson.ObjectID) (*models.Review, error) {
	return findOne[models.Review](ctx, s.col(ColReviews), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) ListReviewsByCar(ctx context.Context, carID bson.ObjectID) ([]models.Review, error) {
	return findMany[models.Review](ctx, s.col(ColReviews), bson.D{{Key: "car", Value: carID}})
}

func (s *Store) UpdateReview(ctx context.Context, id bson.ObjectID, rating int, comment string) error {
	return updateByID(ctx, s.col(ColReviews), id, bson.D{
		{Key: "rating", Value: rating},
		{Key: "comment", Value: comment},
	})
}

func (s *Store) DeleteReview(ctx context.Context, id bson.ObjectID) error {
	res, err := s.col(ColReviews).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}
