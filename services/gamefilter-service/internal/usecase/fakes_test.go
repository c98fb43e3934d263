package usecase

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/model"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/repository"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/social"
)

var errDuplicateKey = mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "duplicate key"}}}

func nopLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

type fakeUserRepository struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: map[string]*model.User{}}
}

func (f *fakeUserRepository) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == user.Email {
			return nil, errDuplicateKey
		}
	}
	user.ID = bson.NewObjectID()
	stored := *user
	f.users[user.ID.Hex()] = &stored
	return user, nil
}

func (f *fakeUserRepository) GetUser(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepository) find(match func(*model.User) bool) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepository) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Email == email })
}

func (f *fakeUserRepository) GetUserByRegistrationToken(_ context.Context, token string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.RegistrationToken != nil && *u.RegistrationToken == token })
}

func (f *fakeUserRepository) UpdateUser(
	_ context.Context,
	id string,
	params repository.UpdateUserParams,
) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if params.Verified != nil {
		u.Verified = *params.Verified
	}
	if params.RegistrationToken != nil {
		u.RegistrationToken = params.RegistrationToken
	}
	if params.SocialLogins != nil {
		u.SocialLogins = *params.SocialLogins
	}
	if params.Preferences != nil {
		u.Preferences = *params.Preferences
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepository) ListEmails(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	emails := make([]string, 0, len(f.users))
	for _, u := range f.users {
		emails = append(emails, u.Email)
	}
	sort.Strings(emails)
	return emails, nil
}

func (f *fakeUserRepository) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

// add stores a user directly, bypassing registration.
func (f *fakeUserRepository) add(u *model.User) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()

	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	f.users[u.ID.Hex()] = u
	return u
}

type fakeUserSessionRepository struct {
	mu        sync.Mutex
	byToken   map[string]*model.UserSession
	upsertErr error
}

func newFakeUserSessionRepository() *fakeUserSessionRepository {
	return &fakeUserSessionRepository{byToken: map[string]*model.UserSession{}}
}

func (f *fakeUserSessionRepository) UpsertByAccessToken(
	_ context.Context,
	accessToken string,
	params repository.UpsertUserSessionParams,
) (*model.UserSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	for token, s := range f.byToken {
		if token != accessToken && (s.UserID == params.UserID || s.SessionID == params.SessionID) {
			return nil, errDuplicateKey
		}
	}

	s := &model.UserSession{
		AccessToken: accessToken,
		SessionID:   params.SessionID,
		UserID:      params.UserID,
		UpdatedAt:   time.Now(),
	}
	f.byToken[accessToken] = s
	cp := *s
	return &cp, nil
}

func (f *fakeUserSessionRepository) GetByAccessToken(_ context.Context, accessToken string) (*model.UserSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.byToken[accessToken]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *s
	return &cp, nil
}

func (f *fakeUserSessionRepository) GetByUserID(_ context.Context, userID string) (*model.UserSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, s := range f.byToken {
		if s.UserID == userID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserSessionRepository) DeleteBySessionID(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for token, s := range f.byToken {
		if s.SessionID == sessionID {
			delete(f.byToken, token)
		}
	}
	return nil
}

func (f *fakeUserSessionRepository) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byToken)
}

type fakeWebSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*model.WebSession
}

func newFakeWebSessionRepository() *fakeWebSessionRepository {
	return &fakeWebSessionRepository{sessions: map[string]*model.WebSession{}}
}

func (f *fakeWebSessionRepository) CreateWebSession(_ context.Context, session *model.WebSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cp := *session
	f.sessions[session.ID] = &cp
	return nil
}

func (f *fakeWebSessionRepository) GetWebSession(_ context.Context, id string) (*model.WebSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrWebSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeWebSessionRepository) DeleteWebSession(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.sessions, id)
	return nil
}

func (f *fakeWebSessionRepository) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.sessions[id]
	return ok
}

type sentMail struct {
	To      []string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) SendHTML(to []string, subject, htmlBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

type fakeLogEntryRepository struct {
	entries []model.LogEntry
}

func (f *fakeLogEntryRepository) CreateLogEntry(_ context.Context, entry *model.LogEntry) (*model.LogEntry, error) {
	entry.ID = bson.NewObjectID()
	f.entries = append(f.entries, *entry)
	return entry, nil
}

func (f *fakeLogEntryRepository) ListLogEntries(
	_ context.Context,
	filter repository.LogEntryFilter,
) ([]model.LogEntry, error) {
	in := func(list []string, v string) bool {
		if len(list) == 0 {
			return true
		}
		for _, s := range list {
			if s == v {
				return true
			}
		}
		return false
	}

	out := []model.LogEntry{}
	for _, e := range f.entries {
		if in(filter.Users, e.User) && in(filter.Categories, e.Category) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type fakeGameRepository struct {
	games map[string]*model.Game
}

func (f *fakeGameRepository) GetGameByGameID(_ context.Context, gameID string) (*model.Game, error) {
	for _, g := range f.games {
		if g.GameID == gameID {
			return g, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeGameRepository) UpsertGameByTitle(_ context.Context, game *model.Game) (*model.Game, error) {
	if existing, ok := f.games[game.Title]; ok {
		game.ID = existing.ID
	} else {
		game.ID = bson.NewObjectID()
	}
	f.games[game.Title] = game
	return game, nil
}

// fakeProvider links accounts in memory.
type fakeProvider struct {
	name      string
	linked    map[string]string
	fetchErr  error
	linkedErr error
}

func newFakeProvider(name string) *fakeProvider {
	return &fakeProvider{name: name, linked: map[string]string{}}
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://provider.example/authorize?state=" + state
}

func (p *fakeProvider) FetchProfile(_ context.Context, code string) (*social.Profile, error) {
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	return &social.Profile{ID: "ext-" + code, UserName: "player"}, nil
}

func (p *fakeProvider) LinkToUser(_ context.Context, userID string, profile *social.Profile) (bson.ObjectID, error) {
	id := bson.NewObjectID()
	p.linked[id.Hex()] = userID + ":" + profile.ID
	return id, nil
}

func (p *fakeProvider) LinkedData(_ context.Context, documentID string) (any, error) {
	if p.linkedErr != nil {
		return nil, p.linkedErr
	}
	v, ok := p.linked[documentID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return map[string]string{"account": v}, nil
}

// testStore wires the session-related fakes used by several tests.
type testStore struct {
	users        *fakeUserRepository
	userSessions *fakeUserSessionRepository
	webSessions  *fakeWebSessionRepository
	sessions     *sessionUsecase
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()

	st := &testStore{
		users:        newFakeUserRepository(),
		userSessions: newFakeUserSessionRepository(),
		webSessions:  newFakeWebSessionRepository(),
	}
	st.sessions = NewSessionUsecase(st.userSessions, st.webSessions, time.Hour, nopLogger(), nil).(*sessionUsecase)
	return st
}
