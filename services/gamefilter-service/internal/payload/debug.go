package payload

import (
	"encoding/json"
	"errors"
)

// Debug methods.
const (
	DebugPush = "PUSH"
	DebugPull = "PULL"
)

type DebugRequest struct {
	Method     string     `json:"method"`
	Category   string     `json:"category"`
	Message    string     `json:"message"`
	Email      StringList `json:"email"`
	Categories StringList `json:"categories"`
}

// StringList accepts either a single string or an array of strings.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = StringList{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return errors.New("expected a string or an array of strings")
	}
	*l = many
	return nil
}
