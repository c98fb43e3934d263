package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Log categories.
const (
	LogCategoryInfo    = "INFO"
	LogCategoryWarning = "WARNING"
	LogCategoryError   = "ERROR"
)

// LogCategories lists every valid category in display order.
var LogCategories = []string{LogCategoryInfo, LogCategoryWarning, LogCategoryError}

// LogEntry is a client-submitted diagnostic message.
type LogEntry struct {
	ID       bson.ObjectID `bson:"_id,omitempty"`
	User     string        `bson:"user"`
	Date     time.Time     `bson:"date"`
	Category string        `bson:"category"`
	Message  string        `bson:"message"`
}
