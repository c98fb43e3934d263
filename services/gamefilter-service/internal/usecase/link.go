package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/repository"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/social"
	"github.com/vasapolrittideah/gamefilter-api/shared/auth"
)

// LinkUsecase links social accounts to users through an OAuth round trip.
type LinkUsecase interface {
	// AuthURL returns the provider consent URL for userID, bound to the
	// session holding accessToken.
	AuthURL(ctx context.Context, providerName, userID, accessToken string) (string, error)

	// Callback completes the link after the provider redirected back with
	// state and code.
	Callback(ctx context.Context, providerName, state, code string) error
}

// StateSigner binds a user and their current access token to an OAuth state
// parameter without putting the token in it.
type StateSigner interface {
	Sign(userID, accessToken, provider string) (string, error)
	Verify(state, provider string) (*auth.LinkState, error)
}

var (
	ErrInvalidLinkState = errors.New("invalid link state")
	ErrInvalidToken     = errors.New("invalid access token")
)

type linkUsecase struct {
	userRepo        repository.UserRepository
	userSessionRepo repository.UserSessionRepository
	sessions        SessionUsecase
	registry        *social.Registry
	signer          StateSigner
	logger          *zerolog.Logger
}

func NewLinkUsecase(
	userRepo repository.UserRepository,
	userSessionRepo repository.UserSessionRepository,
	sessions SessionUsecase,
	registry *social.Registry,
	signer StateSigner,
	logger *zerolog.Logger,
) LinkUsecase {
	return &linkUsecase{
		userRepo:        userRepo,
		userSessionRepo: userSessionRepo,
		sessions:        sessions,
		registry:        registry,
		signer:          signer,
		logger:          logger,
	}
}

func (u *linkUsecase) AuthURL(ctx context.Context, providerName, userID, accessToken string) (string, error) {
	provider, err := u.registry.Get(providerName)
	if err != nil {
		return "", err
	}

	state, err := u.signer.Sign(userID, accessToken, provider.Name())
	if err != nil {
		return "", err
	}

	return provider.AuthCodeURL(state), nil
}

func (u *linkUsecase) Callback(ctx context.Context, providerName, state, code string) error {
	provider, err := u.registry.Get(providerName)
	if err != nil {
		return err
	}

	if state == "" || code == "" {
		return ErrInvalidLinkState
	}

	linkState, err := u.signer.Verify(state, provider.Name())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLinkState, err)
	}

	// The state is only good for the session that requested it.
	userSession, err := u.userSessionRepo.GetByUserID(ctx, linkState.UserID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidToken
		}
		return err
	}
	if !linkState.Matches(userSession.AccessToken) {
		return ErrInvalidToken
	}

	expired, err := u.sessions.Validate(ctx, userSession.UserID, false)
	if err != nil {
		return err
	}
	if expired {
		return ErrExpiredSession
	}

	profile, err := provider.FetchProfile(ctx, code)
	if err != nil {
		return err
	}

	documentID, err := provider.LinkToUser(ctx, userSession.UserID, profile)
	if err != nil {
		return err
	}

	user, err := u.userRepo.GetUser(ctx, userSession.UserID)
	if err != nil {
		return err
	}

	logins := user.WithSocialLogin(provider.Name(), documentID)
	if _, err := u.userRepo.UpdateUser(ctx, userSession.UserID, repository.UpdateUserParams{
		SocialLogins: &logins,
	}); err != nil {
		return err
	}

	u.logger.Info().
		Str("user_id", userSession.UserID).
		Str("provider", provider.Name()).
		Msg("social account linked")

	return nil
}
