package repository

import (
	"context"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/model"
)

// GameRepository is the game catalog store.
type GameRepository interface {
	GetGameByGameID(ctx context.Context, gameID string) (*model.Game, error)
	UpsertGameByTitle(ctx context.Context, game *model.Game) (*model.Game, error)
}

const gameCollection = "games"

type gameMongoRepository struct {
	db *mongo.Database
}

func NewGameMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) GameRepository {
	collection := db.Collection(gameCollection)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "game_id", Value: 1}}},
		{
			Keys:    bson.D{{Key: "title", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create game indexes")
	}

	return &gameMongoRepository{db: db}
}

func (r *gameMongoRepository) GetGameByGameID(ctx context.Context, gameID string) (*model.Game, error) {
	var game model.Game
	err := r.db.Collection(gameCollection).FindOne(ctx, bson.M{"game_id": gameID}).Decode(&game)
	if err != nil {
		return nil, err
	}

	return &game, nil
}

// UpsertGameByTitle replaces every field of the game with the given title,
// inserting it when missing.
func (r *gameMongoRepository) UpsertGameByTitle(ctx context.Context, game *model.Game) (*model.Game, error) {
	fields, err := bson.Marshal(game)
	if err != nil {
		return nil, err
	}

	var set bson.M
	if err := bson.Unmarshal(fields, &set); err != nil {
		return nil, err
	}
	delete(set, "_id")

	result := r.db.Collection(gameCollection).FindOneAndUpdate(
		ctx,
		bson.M{"title": game.Title},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var saved model.Game
	if err := result.Decode(&saved); err != nil {
		return nil, err
	}

	return &saved, nil
}
