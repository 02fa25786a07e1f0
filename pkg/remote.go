package pkg

import (
	"log/slog"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/config"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/remote"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/services"
)

// NewRemoteStore returns the HTTP client for REMOTE_BASE_URL, wrapped in a
// simulated network when SIMULATED_LATENCY or SIMULATED_FAILURE_RATE is set.
func NewRemoteStore(cfg *config.Config, logger *slog.Logger) services.RemoteStore {
	client := remote.NewClient(cfg.RemoteBaseURL, cfg.RemoteTimeout, logger)
	if cfg.SimulatedLatency <= 0 && cfg.SimulatedFailureRate <= 0 {
		return client
	}
	logger.Info("Simulating an unreliable network",
		"max_latency", cfg.SimulatedLatency,
		"failure_rate", cfg.SimulatedFailureRate)
	return remote.NewFlaky(client, remote.FlakyConfig{
		MaxLatency:       cfg.SimulatedLatency,
		WriteFailureRate: cfg.SimulatedFailureRate,
		Seed:             uint64(time.Now().UnixNano()),
	}, logger)
}

// RetryConfig maps the save settings onto the retry policy
func RetryConfig(cfg *config.Config) services.RetryConfig {
	return services.RetryConfig{
		MaxAttempts:     cfg.SaveAttempts,
		InitialInterval: cfg.SaveInitialBackoff,
	}
}
