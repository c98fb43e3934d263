package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// DiscordUser stores a linked Discord account.
type DiscordUser struct {
	ID           bson.ObjectID  `bson:"_id,omitempty"`
	DiscordID    string         `bson:"discord_id"`
	Email        string         `bson:"email"`
	UserName     string         `bson:"user_name"`
	AvatarURL    string         `bson:"avatar_url"`
	Guilds       []DiscordGuild `bson:"guilds"`
	AccessToken  string         `bson:"access_token"`
	RefreshToken string         `bson:"refresh_token"`
	UserID       string         `bson:"user_id"`
	CreatedAt    time.Time      `bson:"created_at"`
	UpdatedAt    time.Time      `bson:"updated_at"`
}

// DiscordGuild is a guild the linked account belongs to.
type DiscordGuild struct {
	ID          string   `bson:"id"          json:"id"`
	Name        string   `bson:"name"        json:"name"`
	Icon        string   `bson:"icon"        json:"icon"`
	Owner       bool     `bson:"owner"       json:"owner"`
	Permissions string   `bson:"permissions" json:"permissions"`
	Features    []string `bson:"features"    json:"features"`
}
