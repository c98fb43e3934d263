package model

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role names. Owner passes every role check.
const (
	RoleOwner     = "Owner"
	RoleAdmin     = "Admin"
	RoleDeveloper = "Developer"
	RoleDesigner  = "Designer"
	RoleMember    = "Member"
)

// Social providers a user can link.
const (
	ProviderDiscord   = "discord"
	ProviderSteam     = "steam"
	ProviderMicrosoft = "microsoft"
	ProviderEpic      = "epic"
)

// User represents a registered player account.
type User struct {
	ID                bson.ObjectID `bson:"_id,omitempty"`
	Email             string        `bson:"email"`
	DisplayName       string        `bson:"display_name"`
	PasswordHash      string        `bson:"password_hash"`
	Verified          bool          `bson:"verified"`
	RegistrationToken *string       `bson:"registration_token,omitempty"`
	Roles             []string      `bson:"roles"`
	SocialLogins      []SocialLogin `bson:"social_logins"`
	Preferences       Preferences   `bson:"preferences"`
	CreatedAt         time.Time     `bson:"created_at"`
	UpdatedAt         time.Time     `bson:"updated_at"`
}

// SocialLogin links a user to the provider-specific document that stores the
// external account.
type SocialLogin struct {
	Provider   string        `bson:"provider"`
	DocumentID bson.ObjectID `bson:"document_id"`
}

// HasRole reports whether the user holds role.
func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// SocialLogin returns the link for provider, if any.
func (u *User) SocialLogin(provider string) (SocialLogin, bool) {
	for _, login := range u.SocialLogins {
		if login.Provider == provider {
			return login, true
		}
	}
	return SocialLogin{}, false
}

// WithSocialLogin returns the user's links with provider pointing at
// documentID, replacing an existing link for the same provider.
func (u *User) WithSocialLogin(provider string, documentID bson.ObjectID) []SocialLogin {
	logins := make([]SocialLogin, 0, len(u.SocialLogins)+1)
	replaced := false
	for _, login := range u.SocialLogins {
		if login.Provider == provider {
			login.DocumentID = documentID
			replaced = true
		}
		logins = append(logins, login)
	}
	if !replaced {
		logins = append(logins, SocialLogin{Provider: provider, DocumentID: documentID})
	}
	return logins
}
