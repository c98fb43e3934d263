// Package social links third-party accounts to GameFilter users.
package social

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/model"
)

var (
	ErrUnknownProvider        = errors.New("unknown provider")
	ErrProviderNotImplemented = errors.New("provider not implemented")
)

// Profile is the external account as reported by the provider.
type Profile struct {
	ID           string
	Email        string
	UserName     string
	AvatarURL    string
	AccessToken  string
	RefreshToken string

	// Guilds is only filled by Discord.
	Guilds []model.DiscordGuild
}

// Provider is one linkable account type. Implementations own the collection
// their linked accounts live in.
type Provider interface {
	Name() string

	// AuthCodeURL returns the consent page the client should open.
	AuthCodeURL(state string) string

	// FetchProfile exchanges an authorization code and loads the account.
	FetchProfile(ctx context.Context, code string) (*Profile, error)

	// LinkToUser stores profile for userID and returns the stored document id.
	LinkToUser(ctx context.Context, userID string, profile *Profile) (bson.ObjectID, error)

	// LinkedData returns the client-facing view of a linked account, without
	// provider credentials.
	LinkedData(ctx context.Context, documentID string) (any, error)
}

// Registry dispatches provider names to implementations.
type Registry struct {
	providers map[string]Provider
	known     map[string]struct{}
}

// NewRegistry registers the given providers by name. Names listed in
// model.Provider* without an implementation resolve to
// ErrProviderNotImplemented.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{
		providers: make(map[string]Provider, len(providers)),
		known: map[string]struct{}{
			model.ProviderDiscord:   {},
			model.ProviderSteam:     {},
			model.ProviderMicrosoft: {},
			model.ProviderEpic:      {},
		},
	}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, error) {
	if p, ok := r.providers[name]; ok {
		return p, nil
	}
	if _, ok := r.known[name]; ok {
		return nil, ErrProviderNotImplemented
	}
	return nil, ErrUnknownProvider
}
