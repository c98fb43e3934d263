// Package discovery registers services with a Consul agent.
package discovery

import (
	"fmt"
	"sync"

	"github.com/hashicorp/consul/api"
	"github.com/rs/zerolog"
)

// Config describes how the service announces itself.
type Config struct {
	Address     string   `env:"ADDR"`
	ServiceName string   `env:"SERVICE_NAME" envDefault:"gamefilter-service"`
	ServiceHost string   `env:"SERVICE_HOST" envDefault:"127.0.0.1"`
	Tags        []string `env:"TAGS"         envSeparator:","`
}

// Enabled reports whether a Consul agent address was configured.
func (c Config) Enabled() bool {
	return c.Address != ""
}

// Registrar owns one service registration.
type Registrar struct {
	client    *api.Client
	config    Config
	logger    *zerolog.Logger

	mu        sync.Mutex
	serviceID string
}

// NewRegistrar creates a client for the configured agent.
func NewRegistrar(cfg Config, logger *zerolog.Logger) (*Registrar, error) {
	consulCfg := api.DefaultConfig()
	consulCfg.Address = cfg.Address

	client, err := api.NewClient(consulCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	return &Registrar{client: client, config: cfg, logger: logger}, nil
}

// Register announces the HTTP port and, when grpcPort is non-zero, attaches a
// gRPC health check against it. Otherwise an HTTP check on healthPath is used.
func (r *Registrar) Register(httpPort, grpcPort int, healthPath string) error {
	cfg := r.config
	serviceID := fmt.Sprintf("%s-%s-%d", cfg.ServiceName, cfg.ServiceHost, httpPort)

	check := &api.AgentServiceCheck{
		Interval:                       "10s",
		Timeout:                        "3s",
		DeregisterCriticalServiceAfter: "1m",
	}
	if grpcPort != 0 {
		check.GRPC = fmt.Sprintf("%s:%d", cfg.ServiceHost, grpcPort)
	} else {
		check.HTTP = fmt.Sprintf("http://%s:%d%s", cfg.ServiceHost, httpPort, healthPath)
	}

	reg := &api.AgentServiceRegistration{
		ID:      serviceID,
		Name:    cfg.ServiceName,
		Address: cfg.ServiceHost,
		Port:    httpPort,
		Tags:    cfg.Tags,
		Check:   check,
	}

	if err := r.client.Agent().ServiceRegister(reg); err != nil {
		return fmt.Errorf("failed to register service %s: %w", serviceID, err)
	}

	r.mu.Lock()
	r.serviceID = serviceID
	r.mu.Unlock()

	r.logger.Info().Str("service_id", serviceID).Msg("registered with consul")

	return nil
}

// Deregister removes the registration made by Register.
func (r *Registrar) Deregister() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.serviceID == "" {
		return nil
	}

	if err := r.client.Agent().ServiceDeregister(r.serviceID); err != nil {
		return fmt.Errorf("failed to deregister service %s: %w", r.serviceID, err)
	}

	r.logger.Info().Str("service_id", r.serviceID).Msg("deregistered from consul")
	r.serviceID = ""

	return nil
}
