package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Review struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	CarID     bson.ObjectID `bson:"car" json:"car"`
	UserID    bson.ObjectID `bson:"user" json:"user"`
	Rating    int           `bson:"rating" json:"rating"` // 1-5
	Comment   string        `bson:"comment" json:"comment"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`

	// Nom de l'auteur, joint à la lecture — jamais stocké
	UserName string `bson:"-" json:"userName,omitempty"`
}
