package postgres

import (
	_ "github.com/lib/pq"

	"github.com/LENAX/buildsys/pkg/storage"
)

// PostgresDialect PostgreSQL方言实现（对外导出）
type PostgresDialect struct{}

// NewPostgresDialect 创建PostgreSQL方言实例
func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

// Name 返回方言名称
func (d *PostgresDialect) Name() string {
	return "postgres"
}

// DriverName 返回驱动名
func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

// CreateTableSQL 转换DDL为PostgreSQL兼容格式
func (d *PostgresDialect) CreateTableSQL(schema string) string {
	return storage.ReplaceType(schema, map[string]string{
		"NAME":     "TEXT",
		"DATETIME": "TIMESTAMP",
	})
}

// ConfigureDB PostgreSQL无需额外配置
func (d *PostgresDialect) ConfigureDB() []string {
	return nil
}

// Open 通过DSN打开PostgreSQL定义库（对外导出）
func Open(dsn string, pool storage.PoolOptions) (*storage.SQLRepository, error) {
	return storage.Open(NewPostgresDialect(), dsn, pool)
}

// 确保实现接口
var _ storage.Dialect = (*PostgresDialect)(nil)
