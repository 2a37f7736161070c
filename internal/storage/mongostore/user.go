package mongostore

import (
	"context"
	"time"

	"drivea_back_end/internal/models"
	"drivea_back_end/internal/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	_, err := s.col(ColUsers).InsertOne(ctx, u)
	return err
}

func (s *Store) GetUserByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	return findOne[models.User](ctx, s.col(ColUsers), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, s.col(ColUsers), bson.D{{Key: "email", Value: email}})
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return findOne[models.User](ctx, s.col(ColUsers), bson.D{{Key: "username", Value: username}})
}

func (s *Store) ListUsersByRole(ctx context.Context, role string) ([]models.User, error) {
	return findMany[models.User](ctx, s.col(ColUsers), bson.D{{Key: "role", Value: role}})
}

func (s *Store) SetUserVerified(ctx context.Context, id bson.ObjectID) error {
	return updateByID(ctx, s.col(ColUsers), id, bson.D{{Key: "isVerified", Value: true}})
}

func (s *Store) SetUserPassword(ctx context.Context, id bson.ObjectID, hash string) error {
	return updateByID(ctx, s.col(ColUsers), id, bson.D{{Key: "password", Value: hash}})
}

func (s *Store) SetUserLoggedIn(ctx context.Context, id bson.ObjectID, loggedIn bool) error {
	return updateByID(ctx, s.col(ColUsers), id, bson.D{{Key: "isLoggedIn", Value: loggedIn}})
}

func (s *Store) SetUserTwoFactorCode(ctx context.Context, id bson.ObjectID, code string, expires time.Time) error {
	return updateByID(ctx, s.col(ColUsers), id, bson.D{
		{Key: "twoFactorCode", Value: code},
		{Key: "twoFactorCodeExpires", Value: expires},
	})
}

// ConsumeUserTwoFactorCode : une seule opération conditionnelle — le filtre
// exige le bon code non expiré, le $unset garantit l'usage unique même en cas
// d'appels concurrents
func (s *Store) ConsumeUserTwoFactorCode(ctx context.Context, email, code string, now time.Time) (*models.User, error) {
	filter := bson.D{
		{Key: "email", Value: email},
		{Key: "twoFactorCode", Value: code},
		{Key: "twoFactorCodeExpires", Value: bson.D{{Key: "$gt", Value: now}}},
	}
	update := bson.D{{Key: "$unset", Value: bson.D{
		{Key: "twoFactorCode", Value: ""},
		{Key: "twoFactorCodeExpires", Value: ""},
	}}}
	return findOneAndUpdate[models.User](ctx, s.col(ColUsers), filter, update)
}

func (s *Store) UpdateUserProfile(ctx context.Context, id bson.ObjectID, upd storage.UserProfileUpdate) (*models.User, error) {
	set := bson.D{}
	if upd.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *upd.Name})
	}
	if upd.Password != nil {
		set = append(set, bson.E{Key: "password", Value: *upd.Password})
	}
	if upd.TwoFactorEnabled != nil {
		set = append(set, bson.E{Key: "twoFactorEnabled", Value: *upd.TwoFactorEnabled})
	}
	if len(set) == 0 {
		return s.GetUserByID(ctx, id)
	}
	return findOneAndUpdate[models.User](ctx, s.col(ColUsers),
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: set}})
}

// ApproveSeller : transition conditionnelle pending → seller
func (s *Store) ApproveSeller(ctx context.Context, id bson.ObjectID) error {
	res, err := s.col(ColUsers).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}, {Key: "role", Value: models.RolePending}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "role", Value: models.RoleSeller}}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}
