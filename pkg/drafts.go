package pkg

import (
	"fmt"
	"log/slog"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/config"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/drafts"
)

// OpenDraftStore builds the local draft store selected by DRAFT_BACKEND
// (sqlite, redis or memory). When the backend cannot be opened the store
// still works but persists nothing.
func OpenDraftStore(cfg *config.Config, logger *slog.Logger) *drafts.Store {
	backend, err := openDraftBackend(cfg)
	if err != nil {
		logger.Warn("Draft storage unavailable, drafts will not be kept", "backend", cfg.DraftBackend, "error", err)
		backend = nil
	}
	return drafts.NewStore(backend, drafts.Config{
		AuthorDelay:   cfg.AuthorDraftDelay,
		ResponseDelay: cfg.ResponseDraftDelay,
		Retention:     cfg.DraftRetention,
	}, logger)
}

func openDraftBackend(cfg *config.Config) (drafts.Backend, error) {
	switch cfg.DraftBackend {
	case "sqlite":
		db, err := OpenSQLite(cfg.DraftPath)
		if err != nil {
			return nil, err
		}
		backend, err := drafts.NewSQLiteBackend(db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return backend, nil
	case "redis":
		client, err := NewRedisClient(cfg)
		if err != nil {
			return nil, err
		}
		return drafts.NewRedisBackend(client, cfg.DraftRetention), nil
	case "memory":
		return drafts.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown draft backend %q", cfg.DraftBackend)
	}
}
