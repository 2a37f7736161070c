package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Rôles possibles d'un utilisateur
const (
	RoleUser    = "user"
	RolePending = "pending" // vendeur en attente d'approbation admin
	RoleSeller  = "seller"
	RoleAdmin   = "admin"
)

type User struct {
	ID               bson.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name             string        `bson:"name" json:"name"`
	Email            string        `bson:"email" json:"email"`
	Username         string        `bson:"username" json:"username"`
	Password         string        `bson:"password" json:"-"`
	Role             string        `bson:"role" json:"role"`
	IsVerified       bool          `bson:"isVerified" json:"isVerified"`
	TwoFactorEnabled bool          `bson:"twoFactorEnabled" json:"twoFactorEnabled"`
	TwoFactorCode    string        `bson:"twoFactorCode,omitempty" json:"-"`
	// Expire 10 minutes après génération du code
	TwoFactorCodeExpires time.Time `bson:"twoFactorCodeExpires,omitempty" json:"-"`
	IsLoggedIn           bool      `bson:"isLoggedIn" json:"isLoggedIn"`
}
