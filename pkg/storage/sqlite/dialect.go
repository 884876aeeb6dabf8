package sqlite

import (
	_ "github.com/mattn/go-sqlite3"

	"github.com/LENAX/buildsys/pkg/storage"
)

// SQLiteDialect SQLite方言实现（对外导出）
type SQLiteDialect struct{}

// NewSQLiteDialect 创建SQLite方言实例
func NewSQLiteDialect() *SQLiteDialect {
	return &SQLiteDialect{}
}

// Name 返回方言名称
func (d *SQLiteDialect) Name() string {
	return "sqlite"
}

// DriverName 返回驱动名
func (d *SQLiteDialect) DriverName() string {
	return "sqlite3"
}

// CreateTableSQL SQLite中名称列使用TEXT
func (d *SQLiteDialect) CreateTableSQL(schema string) string {
	return storage.ReplaceType(schema, map[string]string{"NAME": "TEXT"})
}

// ConfigureDB 返回SQLite配置SQL
func (d *SQLiteDialect) ConfigureDB() []string {
	return []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=30000;",
		"PRAGMA synchronous=NORMAL;",
	}
}

// Open 通过DSN打开SQLite定义库（对外导出）
func Open(dsn string, pool storage.PoolOptions) (*storage.SQLRepository, error) {
	return storage.Open(NewSQLiteDialect(), dsn, pool)
}

// 确保实现接口
var _ storage.Dialect = (*SQLiteDialect)(nil)
