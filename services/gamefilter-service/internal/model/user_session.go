package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// UserSession maps an issued access token to the web session backing it.
type UserSession struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	AccessToken string        `bson:"access_token"`
	SessionID   string        `bson:"session_id"`
	UserID      string        `bson:"user_id"`
	UpdatedAt   time.Time     `bson:"updated_at"`
}

// WebSession is the framework-level session record. Its expiry is the
// authoritative liveness clock for a UserSession.
type WebSession struct {
	ID        string            `bson:"_id"     json:"id"`
	Payload   map[string]string `bson:"session" json:"session"`
	ExpiresAt time.Time         `bson:"expires" json:"expires"`
}

// Expired reports whether the session is dead at now.
func (s *WebSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
