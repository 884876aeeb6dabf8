package storage

// Dialect SQL方言接口（对外导出）
// 封装不同数据库的驱动与DDL差异，查询占位符交给 sqlx.Rebind 处理
type Dialect interface {
	// Name 返回方言名称（如 "sqlite", "mysql", "postgres"）
	Name() string

	// DriverName 返回 database/sql 驱动名
	DriverName() string

	// CreateTableSQL 把通用DDL转换为方言DDL
	// 通用DDL中名称列使用 NAME 类型，时间列使用 DATETIME
	CreateTableSQL(schema string) string

	// ConfigureDB 返回连接建立后需要执行的SQL（如SQLite的PRAGMA）
	ConfigureDB() []string
}
