package model

import "time"

// Preferences holds the catalog filters a player saved.
type Preferences struct {
	ReleaseDate   *time.Time `bson:"release_date,omitempty"   json:"releaseDate,omitempty"`
	Developer     string     `bson:"developer,omitempty"      json:"developer,omitempty"`
	Publisher     string     `bson:"publisher,omitempty"      json:"publisher,omitempty"`
	Platform      string     `bson:"platform,omitempty"       json:"platform,omitempty"`
	PlatformStore string     `bson:"platform_store,omitempty" json:"platformStore,omitempty"`
	Features      []string   `bson:"features,omitempty"       json:"features,omitempty"`
}
