package social

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/model"
)

type fakeDiscordUserRepository struct {
	byDiscordID map[string]*model.DiscordUser
}

func newFakeDiscordUserRepository() *fakeDiscordUserRepository {
	return &fakeDiscordUserRepository{byDiscordID: map[string]*model.DiscordUser{}}
}

func (f *fakeDiscordUserRepository) UpsertByDiscordID(
	_ context.Context,
	discordUser *model.DiscordUser,
) (*model.DiscordUser, error) {
	now := time.Now()
	saved := *discordUser
	if existing, ok := f.byDiscordID[discordUser.DiscordID]; ok {
		saved.ID = existing.ID
		saved.CreatedAt = existing.CreatedAt
	} else {
		saved.ID = bson.NewObjectID()
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now
	f.byDiscordID[saved.DiscordID] = &saved
	return &saved, nil
}

func (f *fakeDiscordUserRepository) GetDiscordUser(_ context.Context, id string) (*model.DiscordUser, error) {
	for _, u := range f.byDiscordID {
		if u.ID.Hex() == id {
			return u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func newDiscordAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "discord-at",
			"refresh_token": "discord-rt",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	})
	mux.HandleFunc("/api/users/@me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer discord-at" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":"42","username":"player","email":"player@example.com","avatar":"abc"}`))
	})
	mux.HandleFunc("/api/users/@me/guilds", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"1","name":"Guild","icon":"","owner":true,"permissions":"2147483647","features":[]}]`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestDiscord(srvURL string, repo *fakeDiscordUserRepository) *Discord {
	return NewDiscord(DiscordConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/api/link/discord/callback",
		Scopes:       []string{"identify", "email", "guilds"},
		AuthURL:      srvURL + "/oauth2/authorize",
		TokenURL:     srvURL + "/oauth2/token",
		APIBaseURL:   srvURL + "/api/",
	}, repo)
}

func TestRegistryGet(t *testing.T) {
	discord := newTestDiscord("http://discord.invalid", newFakeDiscordUserRepository())
	registry := NewRegistry(discord)

	p, err := registry.Get(model.ProviderDiscord)
	require.NoError(t, err)
	assert.Equal(t, model.ProviderDiscord, p.Name())

	for _, name := range []string{model.ProviderSteam, model.ProviderMicrosoft, model.ProviderEpic} {
		_, err := registry.Get(name)
		assert.ErrorIs(t, err, ErrProviderNotImplemented, name)
	}

	_, err = registry.Get("myspace")
	assert.ErrorIs(t, err, ErrUnknownProvider)

	_, err = NewRegistry().Get(model.ProviderDiscord)
	assert.ErrorIs(t, err, ErrProviderNotImplemented, "unconfigured discord")
}

func TestDiscordAuthCodeURL(t *testing.T) {
	discord := newTestDiscord("https://discord.example", newFakeDiscordUserRepository())

	raw := discord.AuthCodeURL("signed-state")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "/oauth2/authorize", u.Path)
	q := u.Query()
	assert.Equal(t, "signed-state", q.Get("state"))
	assert.Equal(t, "client", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "identify email guilds", q.Get("scope"))
}

func TestDiscordFetchProfileAndLink(t *testing.T) {
	srv := newDiscordAPI(t)
	repo := newFakeDiscordUserRepository()
	discord := newTestDiscord(srv.URL, repo)
	ctx := context.Background()

	profile, err := discord.FetchProfile(ctx, "good-code")
	require.NoError(t, err)
	assert.Equal(t, "42", profile.ID)
	assert.Equal(t, "player", profile.UserName)
	assert.Equal(t, "https://cdn.discordapp.com/avatars/42/abc.png", profile.AvatarURL)
	assert.Equal(t, "discord-at", profile.AccessToken)
	assert.Equal(t, "discord-rt", profile.RefreshToken)
	require.Len(t, profile.Guilds, 1)
	assert.Equal(t, "2147483647", profile.Guilds[0].Permissions)

	docID, err := discord.LinkToUser(ctx, "user-1", profile)
	require.NoError(t, err)

	profile.AccessToken = "rotated"
	again, err := discord.LinkToUser(ctx, "user-1", profile)
	require.NoError(t, err)
	assert.Equal(t, docID, again, "relinking keeps the document")
	assert.Equal(t, "rotated", repo.byDiscordID["42"].AccessToken)

	data, err := discord.LinkedData(ctx, docID.Hex())
	require.NoError(t, err)

	encoded, err := json.Marshal(data)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "rotated")
	assert.NotContains(t, string(encoded), "discord-rt")
	assert.NotContains(t, string(encoded), "user-1")
	assert.Contains(t, string(encoded), `"discordId":"42"`)
}

func TestDiscordFetchProfileBadCode(t *testing.T) {
	srv := newDiscordAPI(t)
	discord := newTestDiscord(srv.URL, newFakeDiscordUserRepository())

	_, err := discord.FetchProfile(context.Background(), "bad-code")
	assert.Error(t, err)
}
