package mongostore

import (
	"context"

	"drivea_back_end/internal/models"
	"drivea_back_end/internal/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func (s *Store) CreateCar(ctx context.Context, car *models.Car) error {
	if car.ID.IsZero() {
		car.ID = bson.NewObjectID()
	}
	_, err := s.col(ColCars).InsertOne(ctx, car)
	return err
}

func (s *Store) GetCarByID(ctx context.Context, id bson.ObjectID) (*models.Car, error) {
	return findOne[models.Car](ctx, s.col(ColCars), bson.D{{Key: "_id", Value: id}})
}

// ListCars applique les filtres du catalogue de façon conjonctive
func (s *Store) ListCars(ctx context.Context, f storage.CarFilter) ([]models.Car, error) {
	filter := bson.D{}
	if f.Model != "" {
		filter = append(filter, bson.E{Key: "model", Value: f.Model})
	}
	if f.FuelType != "" {
		filter = append(filter, bson.E{Key: "fuelType", Value: f.FuelType})
	}
	if f.Transmission != "" {
		filter = append(filter, bson.E{Key: "transmission", Value: f.Transmission})
	}
	if f.Seats > 0 {
		filter = append(filter, bson.E{Key: "seats", Value: f.Seats})
	}
	if f.MinPrice > 0 || f.MaxPrice > 0 {
		rng := bson.D{}
		if f.MinPrice > 0 {
			rng = append(rng, bson.E{Key: "$gte", Value: f.MinPrice})
		}
		if f.MaxPrice > 0 {
			rng = append(rng, bson.E{Key: "$lte", Value: f.MaxPrice})
		}
		filter = append(filter, bson.E{Key: "rentPerDay", Value: rng})
	}
	if f.MinRating > 0 {
		filter = append(filter, bson.E{Key: "averageRating", Value: bson.D{{Key: "$gte", Value: f.MinRating}}})
	}
	return findMany[models.Car](ctx, s.col(ColCars), filter)
}

// UpdateCar remplace les champs modifiables ; averageRating n'est jamais
// écrit ici (champ dérivé, voir SetCarAverageRating)
func (s *Store) UpdateCar(ctx context.Context, car *models.Car) (*models.Car, error) {
	set := bson.D{
		{Key: "name", Value: car.Name},
		{Key: "model", Value: car.Model},
		{Key: "image", Value: car.Image},
		{Key: "rentPerDay", Value: car.RentPerDay},
		{Key: "availability", Value: car.Availability},
		{Key: "speed", Value: car.Speed},
		{Key: "seats", Value: car.Seats},
		{Key: "transmission", Value: car.Transmission},
		{Key: "fuelType", Value: car.FuelType},
	}
	return findOneAndUpdate[models.Car](ctx, s.col(ColCars),
		bson.D{{Key: "_id", Value: car.ID}},
		bson.D{{Key: "$set", Value: set}})
}

func (s *Store) DeleteCar(ctx context.Context, id bson.ObjectID) error {
	res, err := s.col(ColCars).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) SetCarAverageRating(ctx context.Context, id bson.ObjectID, avg float64) error {
	return updateByID(ctx, s.col(ColCars), id, bson.D{{Key: "averageRating", Value: avg}})
}
