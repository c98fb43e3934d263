package usecase

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/model"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/repository"
)

// GameUsecase reads and writes the game catalog.
type GameUsecase interface {
	Get(ctx context.Context, gameID string) (*model.Game, error)
	Upsert(ctx context.Context, game *model.Game) (*model.Game, error)
}

var ErrGameNotFound = errors.New("game not found")

type gameUsecase struct {
	gameRepo repository.GameRepository
}

func NewGameUsecase(gameRepo repository.GameRepository) GameUsecase {
	return &gameUsecase{gameRepo: gameRepo}
}

func (u *gameUsecase) Get(ctx context.Context, gameID string) (*model.Game, error) {
	game, err := u.gameRepo.GetGameByGameID(ctx, gameID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	return game, nil
}

// Upsert writes game keyed by its title.
func (u *gameUsecase) Upsert(ctx context.Context, game *model.Game) (*model.Game, error) {
	game.Title = strings.TrimSpace(game.Title)
	if game.Title == "" || strings.TrimSpace(game.GameID) == "" {
		return nil, ErrMissingFields
	}

	return u.gameRepo.UpsertGameByTitle(ctx, game)
}
