// Package service hosts the optional healthz and metrics HTTP listeners.
package service

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/ethereum/go-ethereum/log"
)

// Config enables and addresses the HTTP listeners
type Config struct {
	HealthzEnabled bool
	HealthzHost    string
	HealthzPort    string

	MetricsEnabled bool
	MetricsHost    string
	MetricsPort    string
}

type Service struct {
	config  Config
	Healthz *HealthzServer
	Metrics *MetricsServer
}

func New(cfg Config) *Service {
	return &Service{
		config:  cfg,
		Healthz: &HealthzServer{},
		Metrics: &MetricsServer{},
	}
}

func (s *Service) Start(ctx context.Context) {
	if s.config.HealthzEnabled {
		addr := net.JoinHostPort(s.config.HealthzHost, s.config.HealthzPort)
		log.Info("starting healthz server", "addr", addr)
		go func() {
			if err := s.Healthz.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("error starting healthz server", "err", err)
			}
		}()
	}

	if s.config.MetricsEnabled {
		addr := net.JoinHostPort(s.config.MetricsHost, s.config.MetricsPort)
		log.Info("starting metrics server", "addr", addr)
		go func() {
			if err := s.Metrics.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("error starting metrics server", "err", err)
			}
		}()
	}
}

func (s *Service) Shutdown() {
	if s.config.HealthzEnabled {
		if err := s.Healthz.Shutdown(); err != nil {
			log.Error("error shutting down healthz server", "err", err)
		}
	}
	if s.config.MetricsEnabled {
		if err := s.Metrics.Shutdown(); err != nil {
			log.Error("error shutting down metrics server", "err", err)
		}
	}
}
