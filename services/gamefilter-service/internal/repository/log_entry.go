package repository

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/model"
)

// LogEntryRepository stores client debug logs.
type LogEntryRepository interface {
	CreateLogEntry(ctx context.Context, entry *model.LogEntry) (*model.LogEntry, error)
	ListLogEntries(ctx context.Context, filter LogEntryFilter) ([]model.LogEntry, error)
}

// LogEntryFilter narrows ListLogEntries. Empty slices match everything.
type LogEntryFilter struct {
	Users      []string
	Categories []string
}

const logEntryCollection = "logs"

type logEntryMongoRepository struct {
	db *mongo.Database
}

func NewLogEntryMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) LogEntryRepository {
	collection := db.Collection(logEntryCollection)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "date", Value: 1}}},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create log entry indexes")
	}

	return &logEntryMongoRepository{db: db}
}

func (r *logEntryMongoRepository) CreateLogEntry(ctx context.Context, entry *model.LogEntry) (*model.LogEntry, error) {
	result, err := r.db.Collection(logEntryCollection).InsertOne(ctx, entry)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		entry.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return entry, nil
}

func (r *logEntryMongoRepository) ListLogEntries(ctx context.Context, filter LogEntryFilter) ([]model.LogEntry, error) {
	query := bson.M{}
	if len(filter.Users) > 0 {
		query["user"] = bson.M{"$in": filter.Users}
	}
	if len(filter.Categories) > 0 {
		query["category"] = bson.M{"$in": filter.Categories}
	}

	cursor, err := r.db.Collection(logEntryCollection).Find(
		ctx,
		query,
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []model.LogEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}
