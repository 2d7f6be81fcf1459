package models

import "go.mongodb.org/mongo-driver/bson"

// User matches the document stored in the users collection.
type User struct {
	ID             string `bson:"_id,omitempty" json:"id"`
	Username       string `bson:"username" json:"username"`
	Email          string `bson:"email" json:"email"`
	HashedPassword string `bson:"hashed_password" json:"-"`
	FullName       string `bson:"full_name,omitempty" json:"full_name,omitempty"`
	Address        string `bson:"address" json:"address"`
	HouseNumber    string `bson:"house_number,omitempty" json:"house_number,omitempty"`
	PLZ            string `bson:"plz" json:"plz"`

	// FavoriteSnapshot is the raw embedded document; Favorite is its typed
	// decoding, filled in by the account service.
	FavoriteSnapshot bson.M   `bson:"favorite_facility,omitempty" json:"-"`
	Favorite         Facility `bson:"-" json:"favorite_facility"`
}

// Profile carries the optional account fields captured at signup and on update.
type Profile struct {
	FullName    string `json:"full_name"`
	Address     string `json:"address"`
	HouseNumber string `json:"house_number"`
	PLZ         string `json:"plz"`
}
