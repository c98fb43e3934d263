package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/oauth2"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/model"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/repository"
)

const discordCDN = "https://cdn.discordapp.com"

// DiscordConfig configures the Discord OAuth application.
type DiscordConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	AuthURL      string
	TokenURL     string
	APIBaseURL   string
}

// Discord links Discord accounts through the authorization code flow.
type Discord struct {
	oauthConfig *oauth2.Config
	apiBaseURL  string
	repo        repository.DiscordUserRepository
}

func NewDiscord(cfg DiscordConfig, repo repository.DiscordUserRepository) *Discord {
	return &Discord{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiBaseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		repo:       repo,
	}
}

func (d *Discord) Name() string {
	return model.ProviderDiscord
}

func (d *Discord) AuthCodeURL(state string) string {
	return d.oauthConfig.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "consent"))
}

type discordUserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

func (d *Discord) FetchProfile(ctx context.Context, code string) (*Profile, error) {
	token, err := d.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("discord token exchange failed: %w", err)
	}

	client := d.oauthConfig.Client(ctx, token)

	var user discordUserResponse
	if err := d.get(ctx, client, "/users/@me", &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, errors.New("discord returned a user without id")
	}

	guilds := []model.DiscordGuild{}
	if err := d.get(ctx, client, "/users/@me/guilds", &guilds); err != nil {
		return nil, err
	}

	return &Profile{
		ID:           user.ID,
		Email:        user.Email,
		UserName:     user.Username,
		AvatarURL:    discordAvatarURL(user.ID, user.Avatar),
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Guilds:       guilds,
	}, nil
}

func (d *Discord) get(ctx context.Context, client *http.Client, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.apiBaseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("discord %s request failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("discord %s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("discord %s decode failed: %w", path, err)
	}

	return nil
}

func discordAvatarURL(userID, avatar string) string {
	if avatar == "" {
		return ""
	}
	return fmt.Sprintf("%s/avatars/%s/%s.png", discordCDN, userID, avatar)
}

// LinkToUser upserts the Discord account by its Discord id, so relinking
// refreshes the stored tokens.
func (d *Discord) LinkToUser(ctx context.Context, userID string, profile *Profile) (bson.ObjectID, error) {
	saved, err := d.repo.UpsertByDiscordID(ctx, &model.DiscordUser{
		DiscordID:    profile.ID,
		Email:        profile.Email,
		UserName:     profile.UserName,
		AvatarURL:    profile.AvatarURL,
		Guilds:       profile.Guilds,
		AccessToken:  profile.AccessToken,
		RefreshToken: profile.RefreshToken,
		UserID:       userID,
	})
	if err != nil {
		return bson.ObjectID{}, err
	}

	return saved.ID, nil
}

// DiscordLinkedData is the client-facing view of a linked Discord account.
type DiscordLinkedData struct {
	DiscordID string               `json:"discordId"`
	Email     string               `json:"email"`
	UserName  string               `json:"userName"`
	AvatarURL string               `json:"avatarUrl"`
	Guilds    []model.DiscordGuild `json:"guilds"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

func (d *Discord) LinkedData(ctx context.Context, documentID string) (any, error) {
	discordUser, err := d.repo.GetDiscordUser(ctx, documentID)
	if err != nil {
		return nil, err
	}

	guilds := discordUser.Guilds
	if guilds == nil {
		guilds = []model.DiscordGuild{}
	}

	return &DiscordLinkedData{
		DiscordID: discordUser.DiscordID,
		Email:     discordUser.Email,
		UserName:  discordUser.UserName,
		AvatarURL: discordUser.AvatarURL,
		Guilds:    guilds,
		CreatedAt: discordUser.CreatedAt,
		UpdatedAt: discordUser.UpdatedAt,
	}, nil
}
