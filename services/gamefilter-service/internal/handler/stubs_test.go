package handler

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/middleware"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/model"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/repository"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/usecase"
	"github.com/vasapolrittideah/gamefilter-api/shared/metrics"
)

type stubAuth struct {
	registerErr error
	verifyErr   error
	loginResult *usecase.LoginResult
	loginErr    error
	logoutErr   error

	registered  usecase.RegisterParams
	verified    string
	loggedOut   string
	loginParams usecase.LoginParams
}

func (s *stubAuth) Register(_ context.Context, params usecase.RegisterParams) error {
	s.registered = params
	return s.registerErr
}

func (s *stubAuth) Verify(_ context.Context, token string) error {
	s.verified = token
	return s.verifyErr
}

func (s *stubAuth) Login(_ context.Context, params usecase.LoginParams) (*usecase.LoginResult, error) {
	s.loginParams = params
	return s.loginResult, s.loginErr
}

func (s *stubAuth) Logout(_ context.Context, userID string) error {
	s.loggedOut = userID
	return s.logoutErr
}

type stubUser struct {
	profile *usecase.Profile
	err     error
}

func (s *stubUser) Profile(context.Context, string) (*usecase.Profile, error) {
	return s.profile, s.err
}

type stubLink struct {
	url         string
	urlErr      error
	callbackErr error

	userID string
	token  string
	code   string
}

func (s *stubLink) AuthURL(_ context.Context, _, userID, accessToken string) (string, error) {
	s.userID = userID
	s.token = accessToken
	return s.url, s.urlErr
}

func (s *stubLink) Callback(_ context.Context, _, _, code string) error {
	s.code = code
	return s.callbackErr
}

type stubDebug struct {
	pushErr error
	logs    []usecase.UserLogs

	pushed usecase.PushParams
	pulled usecase.PullParams
}

func (s *stubDebug) Push(_ context.Context, _ *model.User, params usecase.PushParams) error {
	s.pushed = params
	return s.pushErr
}

func (s *stubDebug) Pull(_ context.Context, params usecase.PullParams) ([]usecase.UserLogs, error) {
	s.pulled = params
	return s.logs, nil
}

type stubGame struct {
	games    map[string]*model.Game
	upserted *model.Game
}

func (s *stubGame) Get(_ context.Context, gameID string) (*model.Game, error) {
	g, ok := s.games[gameID]
	if !ok {
		return nil, usecase.ErrGameNotFound
	}
	return g, nil
}

func (s *stubGame) Upsert(_ context.Context, game *model.Game) (*model.Game, error) {
	if game.Title == "" || game.GameID == "" {
		return nil, usecase.ErrMissingFields
	}
	s.upserted = game
	return game, nil
}

type stubUserSessions struct {
	sessions map[string]*model.UserSession
}

func (s *stubUserSessions) UpsertByAccessToken(
	context.Context,
	string,
	repository.UpsertUserSessionParams,
) (*model.UserSession, error) {
	return nil, errors.New("not implemented")
}

func (s *stubUserSessions) GetByAccessToken(_ context.Context, token string) (*model.UserSession, error) {
	session, ok := s.sessions[token]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return session, nil
}

func (s *stubUserSessions) GetByUserID(context.Context, string) (*model.UserSession, error) {
	return nil, mongo.ErrNoDocuments
}

func (s *stubUserSessions) DeleteBySessionID(context.Context, string) error { return nil }

type stubUsers struct {
	repository.UserRepository
	users map[string]*model.User
}

func (s *stubUsers) GetUser(_ context.Context, id string) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return u, nil
}

type stubSessions struct {
	expired bool
}

func (s *stubSessions) Validate(context.Context, string, bool) (bool, error) {
	return s.expired, nil
}

func (s *stubSessions) Create(context.Context, string) (*model.WebSession, error) {
	return nil, errors.New("not implemented")
}

func (s *stubSessions) Discard(context.Context, string) error { return nil }

// testServer is a fully wired router over stubs. Tokens map to users with
// the roles named in newTestServer.
type testServer struct {
	router   http.Handler
	auth     *stubAuth
	user     *stubUser
	link     *stubLink
	debug    *stubDebug
	game     *stubGame
	sessions *stubSessions
}

const testRedirect = "https://gamefilter.app/linked"

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zerolog.New(io.Discard)
	whitelist, err := middleware.ParseOriginWhitelist(bufio.NewScanner(strings.NewReader(`^(.@@@\.)?gamefilter\.app$`)))
	require.NoError(t, err)

	users := map[string]*model.User{
		"u-member":    {Email: "member@example.com", Roles: []string{model.RoleMember}},
		"u-developer": {Email: "dev@example.com", Roles: []string{model.RoleMember, model.RoleDeveloper}},
	}
	userSessions := map[string]*model.UserSession{
		"member-token":    {AccessToken: "member-token", UserID: "u-member", SessionID: "s1"},
		"developer-token": {AccessToken: "developer-token", UserID: "u-developer", SessionID: "s2"},
	}

	s := &testServer{
		auth:     &stubAuth{},
		user:     &stubUser{},
		link:     &stubLink{},
		debug:    &stubDebug{},
		game:     &stubGame{games: map[string]*model.Game{}},
		sessions: &stubSessions{},
	}

	h := NewHandler(Usecases{
		Auth:  s.auth,
		User:  s.user,
		Link:  s.link,
		Debug: s.debug,
		Game:  s.game,
	}, CookieConfig{Name: "gamefilter.sid", Secure: true}, testRedirect, &logger)

	s.router = NewRouter(RouterConfig{
		Handler: h,
		Authorizer: middleware.NewAuthorizer(
			&stubUserSessions{sessions: userSessions},
			&stubUsers{users: users},
			s.sessions,
			&logger,
		),
		RateLimiter:  middleware.NewRateLimiter(100, 100),
		Whitelist:    whitelist,
		Metrics:      metrics.New("test"),
		Logger:       &logger,
		MaxBodyBytes: 1 << 20,
	})

	return s
}

func (s *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

var sessionExpiry = time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
