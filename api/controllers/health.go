package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/keksoko/storefront/api/responses"
	"github.com/keksoko/storefront/pkg/config"
	pkgerrors "github.com/keksoko/storefront/pkg/errors"
	"github.com/keksoko/storefront/pkg/logger"
)

const envHeader = "X-Keksoko-Env"

// Dependency is a named backend the readiness probe checks.
type Dependency struct {
	Name   string
	Pinger interface {
		Ping(ctx context.Context) error
	}
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency and reports unavailable if any of
// them fails, with the failures aggregated into one response.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps ...Dependency) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		var combined error
		for _, dep := range deps {
			if dep.Pinger == nil {
				continue
			}
			if err := dep.Pinger.Ping(ctx); err != nil {
				combined = multierr.Append(combined, fmt.Errorf("%s: %w", dep.Name, err))
			}
		}

		if combined != nil {
			responses.WriteError(ctx, logg, w,
				pkgerrors.Wrap(pkgerrors.CodeUnavailable, combined, "dependency check failed"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
