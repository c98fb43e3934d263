package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/model"
)

// UserSessionRepository defines the session registry: which access token is
// backed by which web session, for which user.
type UserSessionRepository interface {
	UpsertByAccessToken(ctx context.Context, accessToken string, params UpsertUserSessionParams) (*model.UserSession, error)
	GetByAccessToken(ctx context.Context, accessToken string) (*model.UserSession, error)
	GetByUserID(ctx context.Context, userID string) (*model.UserSession, error)
	DeleteBySessionID(ctx context.Context, sessionID string) error
}

// UpsertUserSessionParams are the fields written on login.
type UpsertUserSessionParams struct {
	SessionID string
	UserID    string
}

const userSessionCollection = "usersessions"

type userSessionMongoRepository struct {
	db *mongo.Database
}

// NewUserSessionMongoRepository creates the registry. The unique index on
// user_id makes a second concurrent login for the same user fail with a
// duplicate key error instead of leaving two live tokens behind.
func NewUserSessionMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) UserSessionRepository {
	collection := db.Collection(userSessionCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "access_token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user session indexes")
	}

	return &userSessionMongoRepository{db: db}
}

func (r *userSessionMongoRepository) UpsertByAccessToken(
	ctx context.Context,
	accessToken string,
	params UpsertUserSessionParams,
) (*model.UserSession, error) {
	result := r.db.Collection(userSessionCollection).FindOneAndUpdate(
		ctx,
		bson.M{"access_token": accessToken},
		bson.M{"$set": bson.M{
			"access_token": accessToken,
			"session_id":   params.SessionID,
			"user_id":      params.UserID,
			"updated_at":   time.Now(),
		}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var session model.UserSession
	if err := result.Decode(&session); err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *userSessionMongoRepository) GetByAccessToken(ctx context.Context, accessToken string) (*model.UserSession, error) {
	return r.findOne(ctx, bson.M{"access_token": accessToken})
}

func (r *userSessionMongoRepository) GetByUserID(ctx context.Context, userID string) (*model.UserSession, error) {
	return r.findOne(ctx, bson.M{"user_id": userID})
}

func (r *userSessionMongoRepository) findOne(ctx context.Context, filter bson.M) (*model.UserSession, error) {
	result := r.db.Collection(userSessionCollection).FindOne(ctx, filter)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var session model.UserSession
	if err := result.Decode(&session); err != nil {
		return nil, err
	}

	return &session, nil
}

// DeleteBySessionID is idempotent: deleting an absent record is not an error.
func (r *userSessionMongoRepository) DeleteBySessionID(ctx context.Context, sessionID string) error {
	_, err := r.db.Collection(userSessionCollection).DeleteOne(ctx, bson.M{"session_id": sessionID})
	return err
}
