package payload

import "github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/model"

type ProfileResponse struct {
	Email       string            `json:"email"`
	DisplayName string            `json:"displayName"`
	Verified    bool              `json:"verified"`
	Roles       []string          `json:"roles"`
	Preferences model.Preferences `json:"preferences"`
	Linked      []LinkedAccount   `json:"linked"`
}

type LinkedAccount struct {
	Provider string `json:"provider"`
	Data     any    `json:"data"`
}
