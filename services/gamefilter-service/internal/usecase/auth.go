package usecase

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	goaway "github.com/TwiN/go-away"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/model"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/repository"
	"github.com/vasapolrittideah/gamefilter-api/shared/metrics"
	"github.com/vasapolrittideah/gamefilter-api/shared/security"
	"github.com/vasapolrittideah/gamefilter-api/shared/validation"
)

// AuthUsecase defines the registration and login lifecycle.
type AuthUsecase interface {
	Register(ctx context.Context, params RegisterParams) error
	Verify(ctx context.Context, token string) error
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)
	Logout(ctx context.Context, userID string) error
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Email       string `json:"email"       validate:"email"`
	DisplayName string `json:"displayName" validate:"displayname"`
	Password    string `json:"password"`
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email    string
	Password string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken string
	SessionID   string
	ExpiresAt   time.Time
}

// AuthConfig carries the settings the auth flows need from configuration.
type AuthConfig struct {
	VerifyURL            string
	VerificationTemplate *template.Template
}

var (
	ErrMissingFields            = errors.New("missing required fields")
	ErrBadEmail                 = errors.New("malformed email address")
	ErrBadDisplayName           = errors.New("display name is malformed or not allowed")
	ErrPending                  = errors.New("registration is pending verification")
	ErrVerified                 = errors.New("user is already verified")
	ErrInvalidRegistrationToken = errors.New("invalid registration token")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrUnverified               = errors.New("user has not verified their email")
	ErrSessionConflict          = errors.New("another login for this user won the race")
	ErrVerificationMail         = errors.New("failed to send verification email")
)

type authUsecase struct {
	userRepo        repository.UserRepository
	userSessionRepo repository.UserSessionRepository
	sessions        SessionUsecase
	issuer          *security.TokenIssuer
	validator       *validation.Validator
	mailer          MailSender
	cfg             AuthConfig
	logger          *zerolog.Logger
	metrics         *metrics.Metrics
}

func NewAuthUsecase(
	userRepo repository.UserRepository,
	userSessionRepo repository.UserSessionRepository,
	sessions SessionUsecase,
	issuer *security.TokenIssuer,
	validator *validation.Validator,
	mailer MailSender,
	cfg AuthConfig,
	logger *zerolog.Logger,
	m *metrics.Metrics,
) AuthUsecase {
	return &authUsecase{
		userRepo:        userRepo,
		userSessionRepo: userSessionRepo,
		sessions:        sessions,
		issuer:          issuer,
		validator:       validator,
		mailer:          mailer,
		cfg:             cfg,
		logger:          logger,
		metrics:         m,
	}
}

func (u *authUsecase) Register(ctx context.Context, params RegisterParams) error {
	params.Email = strings.TrimSpace(params.Email)
	params.DisplayName = strings.TrimSpace(params.DisplayName)

	err := u.register(ctx, params)
	u.metrics.AuthEvent("register", outcome(err))
	return err
}

func (u *authUsecase) register(ctx context.Context, params RegisterParams) error {
	if params.Email == "" || params.DisplayName == "" || params.Password == "" {
		return ErrMissingFields
	}

	existing, err := u.userRepo.GetUserByEmail(ctx, params.Email)
	switch {
	case err == nil:
		if existing.Verified {
			return ErrVerified
		}
		return ErrPending
	case !errors.Is(err, mongo.ErrNoDocuments):
		return err
	}

	if err := u.validateRegistration(params); err != nil {
		return err
	}

	token, err := u.issuer.Issue(params.Email, params.DisplayName)
	if err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return err
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Email:             params.Email,
		DisplayName:       params.DisplayName,
		PasswordHash:      passwordHash,
		Verified:          false,
		RegistrationToken: &token,
		Roles:             []string{model.RoleMember},
	})
	if err != nil {
		// A concurrent registration for the same email got there first.
		if mongo.IsDuplicateKeyError(err) {
			return ErrPending
		}
		return err
	}

	if err := u.sendVerificationEmail(user, token); err != nil {
		return fmt.Errorf("%w: %w", ErrVerificationMail, err)
	}

	u.logger.Info().Str("user_id", user.ID.Hex()).Msg("user registered")

	return nil
}

func (u *authUsecase) validateRegistration(params RegisterParams) error {
	if err := u.validator.Struct(params); err != nil {
		var verr *validation.Error
		if !errors.As(err, &verr) {
			return err
		}
		if verr.HasField("displayName") {
			return ErrBadDisplayName
		}
		return ErrBadEmail
	}

	if goaway.IsProfane(params.DisplayName) {
		return ErrBadDisplayName
	}

	return nil
}

func (u *authUsecase) sendVerificationEmail(user *model.User, token string) error {
	body, err := renderVerificationEmail(u.cfg.VerificationTemplate, verificationEmail{
		DisplayName: user.DisplayName,
		Link:        verificationLink(u.cfg.VerifyURL, token),
	})
	if err != nil {
		return err
	}

	return u.mailer.SendHTML([]string{user.Email}, verificationSubject, body)
}

// Verify marks the holder of token as verified. The token stays on the user,
// so presenting it again reports ErrVerified.
func (u *authUsecase) Verify(ctx context.Context, token string) error {
	err := u.verify(ctx, strings.TrimSpace(token))
	u.metrics.AuthEvent("verify", outcome(err))
	return err
}

func (u *authUsecase) verify(ctx context.Context, token string) error {
	if token == "" {
		return ErrMissingFields
	}

	user, err := u.userRepo.GetUserByRegistrationToken(ctx, token)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidRegistrationToken
		}
		return err
	}

	if user.Verified {
		return ErrVerified
	}

	verified := true
	if _, err := u.userRepo.UpdateUser(ctx, user.ID.Hex(), repository.UpdateUserParams{
		Verified: &verified,
	}); err != nil {
		return err
	}

	return nil
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	result, err := u.login(ctx, params)
	u.metrics.AuthEvent("login", outcome(err))
	return result, err
}

func (u *authUsecase) login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	email := strings.TrimSpace(params.Email)
	if email == "" || params.Password == "" {
		return nil, ErrMissingFields
	}

	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if ok, err := security.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidCredentials
	}

	if !user.Verified {
		return nil, ErrUnverified
	}

	userID := user.ID.Hex()

	// One live session per user: drop whatever the previous login left.
	if _, err := u.sessions.Validate(ctx, userID, true); err != nil {
		return nil, err
	}

	webSession, err := u.sessions.Create(ctx, userID)
	if err != nil {
		return nil, err
	}

	accessToken, err := u.issuer.Issue(userID, webSession.ID)
	if err != nil {
		return nil, err
	}

	if _, err := u.userSessionRepo.UpsertByAccessToken(ctx, accessToken, repository.UpsertUserSessionParams{
		SessionID: webSession.ID,
		UserID:    userID,
	}); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// The orphaned web session would otherwise live until its TTL.
			if delErr := u.sessions.Discard(ctx, webSession.ID); delErr != nil {
				u.logger.Warn().Err(delErr).Str("session_id", webSession.ID).Msg("failed to discard web session")
			}
			return nil, ErrSessionConflict
		}
		return nil, err
	}

	u.logger.Info().Str("user_id", userID).Msg("user logged in")

	return &LoginResult{
		AccessToken: accessToken,
		SessionID:   webSession.ID,
		ExpiresAt:   webSession.ExpiresAt,
	}, nil
}

func (u *authUsecase) Logout(ctx context.Context, userID string) error {
	_, err := u.sessions.Validate(ctx, userID, true)
	u.metrics.AuthEvent("logout", outcome(err))
	return err
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
