package plugins

import (
	"errors"

	"github.com/kilianp07/crewplan/config"
	"github.com/kilianp07/crewplan/core/cache"
	"github.com/kilianp07/crewplan/core/logger"
	infraaudit "github.com/kilianp07/crewplan/infra/audit"
	infracache "github.com/kilianp07/crewplan/infra/cache"
	infraevents "github.com/kilianp07/crewplan/infra/events"
	infrastore "github.com/kilianp07/crewplan/infra/store"
)

func init() {
	RegisterCache("none", func(config.CacheConfig) (cache.Backend, error) { return nil, nil })
	RegisterCache("memory", func(config.CacheConfig) (cache.Backend, error) {
		return infracache.NewMemoryBackend(), nil
	})
	RegisterCache("redis", func(cfg config.CacheConfig) (cache.Backend, error) {
		return infracache.NewRedisBackend(infracache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}), nil
	})

	RegisterPublisher("none", func(config.EventsConfig, logger.Logger) (infraevents.Publisher, error) {
		return nil, nil
	})
	RegisterPublisher("kafka", func(cfg config.EventsConfig, _ logger.Logger) (infraevents.Publisher, error) {
		return infraevents.NewKafkaPublisher(cfg.Kafka)
	})
	RegisterPublisher("mqtt", func(cfg config.EventsConfig, log logger.Logger) (infraevents.Publisher, error) {
		return infraevents.NewMQTTPublisher(cfg.MQTT, log)
	})

	RegisterAudit("sql", func(_ config.AuditConfig, db *infrastore.SQLStore) (AuditBackend, error) {
		if db == nil {
			return nil, errors.New("sql audit backend requires a database")
		}
		return db, nil
	})
	RegisterAudit("jsonl", func(cfg config.AuditConfig, _ *infrastore.SQLStore) (AuditBackend, error) {
		return infraaudit.NewJSONLStore(cfg.Path, infraaudit.Rotation{
			MaxSizeMB:  cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAgeDays: cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		})
	})
}
