package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Game is a catalog entry.
type Game struct {
	ID             bson.ObjectID `bson:"_id,omitempty"            json:"id"`
	GameID         string        `bson:"game_id"                  json:"gameId"`
	Title          string        `bson:"title"                    json:"title"`
	Description    string        `bson:"description,omitempty"    json:"description,omitempty"`
	ReleaseDate    *time.Time    `bson:"release_date,omitempty"   json:"releaseDate,omitempty"`
	Developer      string        `bson:"developer,omitempty"      json:"developer,omitempty"`
	Publisher      string        `bson:"publisher,omitempty"      json:"publisher,omitempty"`
	Platforms      []string      `bson:"platforms,omitempty"      json:"platforms,omitempty"`
	StorePlatforms []string      `bson:"store_platforms,omitempty" json:"storePlatforms,omitempty"`
	Features       []string      `bson:"features,omitempty"       json:"features,omitempty"`
	Reviews        []Review      `bson:"reviews,omitempty"        json:"reviews,omitempty"`
}

// Review is a player rating of a game.
type Review struct {
	User    string  `bson:"user"    json:"user"`
	Rating  float64 `bson:"rating"  json:"rating"`
	Comment string  `bson:"comment" json:"comment"`
}
