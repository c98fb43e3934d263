package payload

import "github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/model"

type UpsertGameRequest struct {
	TokenRequest
	model.Game
}
