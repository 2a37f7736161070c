package models

import "go.mongodb.org/mongo-driver/v2/bson"

const (
	TransmissionManual    = "Manual"
	TransmissionAutomatic = "Automatic"

	FuelPetrol   = "Petrol"
	FuelDiesel   = "Diesel"
	FuelElectric = "Electric"
)

type Car struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name         string        `bson:"name" json:"name"`
	Model        string        `bson:"model" json:"model"`
	Image        string        `bson:"image" json:"image"`
	RentPerDay   float64       `bson:"rentPerDay" json:"rentPerDay"`
	Availability bool          `bson:"availability" json:"availability"`
	// Moyenne dénormalisée, recalculée à chaque mutation d'avis — jamais
	// fournie par le client
	AverageRating float64 `bson:"averageRating" json:"averageRating"`
	Speed         int     `bson:"speed" json:"speed"`
	Seats         int     `bson:"seats" json:"seats"`
	Transmission  string  `bson:"transmission" json:"transmission"`
	FuelType      string  `bson:"fuelType" json:"fuelType"`
}
