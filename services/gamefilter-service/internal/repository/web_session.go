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

// ErrWebSessionNotFound is returned by every WebSessionRepository backend
// when the session id is unknown or the backend already evicted it.
var ErrWebSessionNotFound = errors.New("web session not found")

// WebSessionRepository is the web session backing store. Expiry is enforced by
// the backend (TTL index or key TTL); readers must still compare ExpiresAt
// because eviction is not instantaneous.
type WebSessionRepository interface {
	CreateWebSession(ctx context.Context, session *model.WebSession) error
	GetWebSession(ctx context.Context, id string) (*model.WebSession, error)
	DeleteWebSession(ctx context.Context, id string) error
}

const webSessionCollection = "sessions"

type webSessionMongoRepository struct {
	db *mongo.Database
}

func NewWebSessionMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) WebSessionRepository {
	collection := db.Collection(webSessionCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL index
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create web session indexes")
	}

	return &webSessionMongoRepository{db: db}
}

func (r *webSessionMongoRepository) CreateWebSession(ctx context.Context, session *model.WebSession) error {
	_, err := r.db.Collection(webSessionCollection).InsertOne(ctx, session)
	return err
}

func (r *webSessionMongoRepository) GetWebSession(ctx context.Context, id string) (*model.WebSession, error) {
	var session model.WebSession
	err := r.db.Collection(webSessionCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrWebSessionNotFound
		}
		return nil, err
	}

	return &session, nil
}

func (r *webSessionMongoRepository) DeleteWebSession(ctx context.Context, id string) error {
	_, err := r.db.Collection(webSessionCollection).DeleteOne(ctx, bson.M{"_id": id})
	return err
}
