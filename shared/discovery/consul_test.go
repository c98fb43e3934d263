package discovery

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAgent struct {
	mu           sync.Mutex
	registered   map[string]any
	deregistered []string
}

func (a *fakeAgent) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case r.URL.Path == "/v1/agent/service/register":
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &a.registered)
	case strings.HasPrefix(r.URL.Path, "/v1/agent/service/deregister/"):
		a.deregistered = append(a.deregistered, strings.TrimPrefix(r.URL.Path, "/v1/agent/service/deregister/"))
	default:
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func TestRegisterAndDeregister(t *testing.T) {
	agent := &fakeAgent{}
	srv := httptest.NewServer(agent)
	defer srv.Close()

	cfg := Config{
		Address:     strings.TrimPrefix(srv.URL, "http://"),
		ServiceName: "gamefilter-service",
		ServiceHost: "10.0.0.5",
		Tags:        []string{"api"},
	}
	logger := zerolog.Nop()

	r, err := NewRegistrar(cfg, &logger)
	require.NoError(t, err)

	require.NoError(t, r.Register(4000, 50051, "/healthz"))

	agent.mu.Lock()
	assert.Equal(t, "gamefilter-service-10.0.0.5-4000", agent.registered["ID"])
	assert.Equal(t, "gamefilter-service", agent.registered["Name"])
	check, ok := agent.registered["Check"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "10.0.0.5:50051", check["GRPC"])
	agent.mu.Unlock()

	require.NoError(t, r.Deregister())
	require.NoError(t, r.Deregister())

	agent.mu.Lock()
	assert.Equal(t, []string{"gamefilter-service-10.0.0.5-4000"}, agent.deregistered, "second deregister is a no-op")
	agent.mu.Unlock()
}

func TestDeregisterWithoutRegisterIsNoop(t *testing.T) {
	logger := zerolog.Nop()
	r, err := NewRegistrar(Config{Address: "127.0.0.1:1"}, &logger)
	require.NoError(t, err)

	assert.NoError(t, r.Deregister())
}

func TestEnabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{Address: "consul:8500"}.Enabled())
}
