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

// DiscordUserRepository stores linked Discord accounts.
type DiscordUserRepository interface {
	UpsertByDiscordID(ctx context.Context, discordUser *model.DiscordUser) (*model.DiscordUser, error)
	GetDiscordUser(ctx context.Context, id string) (*model.DiscordUser, error)
}

const discordUserCollection = "discord_users"

type discordUserMongoRepository struct {
	db *mongo.Database
}

func NewDiscordUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) DiscordUserRepository {
	collection := db.Collection(discordUserCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "discord_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create discord user indexes")
	}

	return &discordUserMongoRepository{db: db}
}

// UpsertByDiscordID writes the profile and tokens, keeping created_at from the
// first link.
func (r *discordUserMongoRepository) UpsertByDiscordID(
	ctx context.Context,
	discordUser *model.DiscordUser,
) (*model.DiscordUser, error) {
	now := time.Now()

	update := bson.M{
		"$set": bson.M{
			"email":         discordUser.Email,
			"user_name":     discordUser.UserName,
			"avatar_url":    discordUser.AvatarURL,
			"guilds":        discordUser.Guilds,
			"access_token":  discordUser.AccessToken,
			"refresh_token": discordUser.RefreshToken,
			"user_id":       discordUser.UserID,
			"updated_at":    now,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}

	result := r.db.Collection(discordUserCollection).FindOneAndUpdate(
		ctx,
		bson.M{"discord_id": discordUser.DiscordID},
		update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var saved model.DiscordUser
	if err := result.Decode(&saved); err != nil {
		return nil, err
	}

	return &saved, nil
}

func (r *discordUserMongoRepository) GetDiscordUser(ctx context.Context, id string) (*model.DiscordUser, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var discordUser model.DiscordUser
	err = r.db.Collection(discordUserCollection).FindOne(ctx, bson.M{"_id": objectID}).Decode(&discordUser)
	if err != nil {
		return nil, err
	}

	return &discordUser, nil
}
