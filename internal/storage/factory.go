package storage

import (
	"fmt"

	"github.com/LENAX/buildsys/pkg/config"
	"github.com/LENAX/buildsys/pkg/storage"
	"github.com/LENAX/buildsys/pkg/storage/mysql"
	"github.com/LENAX/buildsys/pkg/storage/postgres"
	pkgsqlite "github.com/LENAX/buildsys/pkg/storage/sqlite"
)

// NewDefinitionRepository 按数据库类型创建定义Repository（内部方法）
// cfg.Type: 数据库类型（sqlite/mysql/postgres）
func NewDefinitionRepository(cfg config.DatabaseConfig) (storage.DefinitionRepository, error) {
	pool := storage.PoolOptions{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}

	var (
		repo *storage.SQLRepository
		err  error
	)
	switch cfg.Type {
	case "sqlite":
		repo, err = pkgsqlite.Open(cfg.DSN, pool)
	case "mysql":
		repo, err = mysql.Open(cfg.DSN, pool)
	case "postgres", "postgresql":
		repo, err = postgres.Open(cfg.DSN, pool)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s repository failed: %w", cfg.Type, err)
	}
	return repo, nil
}
