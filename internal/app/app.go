package app

import (
	"database/sql"

	"go-leave/internal/config"
	"go-leave/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Infra holds the shared connections of one process.
type Infra struct {
	GormDB *gorm.DB
	SQLDB  *sql.DB
	Redis  *redis.Client
}

func (i *Infra) Close() {
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	if i.SQLDB != nil {
		_ = i.SQLDB.Close()
	}
}

func connectInfra(cfg *config.Config, logger *zap.Logger) (*Infra, error) {
	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}

	rdb, err := connection.ConnectRedisWithRetry(cfg.Redis, logger)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &Infra{GormDB: gormDB, SQLDB: sqlDB, Redis: rdb}, nil
}

// BuildApp connects the stores and mounts every module on router. The
// returned Infra must be closed by the caller after the server stops.
func BuildApp(router *gin.Engine, cfg *config.Config) (*Infra, error) {
	logger := zap.L().Named("app")

	infra, err := connectInfra(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := registerModules(router, cfg, infra); err != nil {
		infra.Close()
		return nil, err
	}
	return infra, nil
}
