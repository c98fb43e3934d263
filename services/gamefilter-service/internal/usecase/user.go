package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/model"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/repository"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/social"
)

// UserUsecase serves the signed-in user's own data.
type UserUsecase interface {
	Profile(ctx context.Context, userID string) (*Profile, error)
}

// Profile is the user as shown to themselves.
type Profile struct {
	Email       string
	DisplayName string
	Verified    bool
	Roles       []string
	Preferences model.Preferences
	Linked      []LinkedAccount
}

// LinkedAccount is a social account with provider secrets removed.
type LinkedAccount struct {
	Provider string `json:"provider"`
	Data     any    `json:"data"`
}

var ErrExpiredSession = errors.New("session has expired")

type userUsecase struct {
	userRepo repository.UserRepository
	sessions SessionUsecase
	registry *social.Registry
	logger   *zerolog.Logger
}

func NewUserUsecase(
	userRepo repository.UserRepository,
	sessions SessionUsecase,
	registry *social.Registry,
	logger *zerolog.Logger,
) UserUsecase {
	return &userUsecase{
		userRepo: userRepo,
		sessions: sessions,
		registry: registry,
		logger:   logger,
	}
}

func (u *userUsecase) Profile(ctx context.Context, userID string) (*Profile, error) {
	expired, err := u.sessions.Validate(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, ErrExpiredSession
	}

	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	linked := make([]LinkedAccount, 0, len(user.SocialLogins))
	for _, login := range user.SocialLogins {
		provider, err := u.registry.Get(login.Provider)
		if err != nil {
			// Accounts linked through a provider that is no longer configured.
			u.logger.Warn().Err(err).Str("provider", login.Provider).Msg("skipping linked account")
			continue
		}

		data, err := provider.LinkedData(ctx, login.DocumentID.Hex())
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				u.logger.Warn().
					Str("provider", login.Provider).
					Str("document_id", login.DocumentID.Hex()).
					Msg("skipping linked account with no stored profile")
				continue
			}
			return nil, err
		}

		linked = append(linked, LinkedAccount{Provider: login.Provider, Data: data})
	}

	return &Profile{
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Verified:    user.Verified,
		Roles:       user.Roles,
		Preferences: user.Preferences,
		Linked:      linked,
	}, nil
}
