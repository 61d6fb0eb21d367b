package records

import (
	"fmt"

	"flygen/internal/infra"
)

// Open builds the backend named by cfg.RecordBackend. It returns nil for
// "none", which keeps every balance local. sql may be nil unless the
// postgres backend is selected.
func Open(cfg *infra.Config, sql infra.SQLExecutor) (Backend, error) {
	switch cfg.RecordBackend {
	case infra.RecordBackendPostgres:
		if sql == nil {
			return nil, fmt.Errorf("records: postgres backend needs a database")
		}
		return NewPostgresBackend(sql), nil
	case infra.RecordBackendRedis:
		return NewRedisBackend(NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)), nil
	case infra.RecordBackendMemory:
		return NewMemoryBackend(), nil
	case infra.RecordBackendNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("records: unknown backend %q", cfg.RecordBackend)
	}
}
