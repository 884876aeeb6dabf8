package mysql

import (
	"fmt"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"

	"github.com/LENAX/buildsys/pkg/storage"
)

// MySQLDialect MySQL方言实现（对外导出）
type MySQLDialect struct{}

// NewMySQLDialect 创建MySQL方言实例
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

// Name 返回方言名称
func (d *MySQLDialect) Name() string {
	return "mysql"
}

// DriverName 返回驱动名
func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

// CreateTableSQL 转换DDL为MySQL兼容格式
// TEXT 不能作为主键，名称列使用 VARCHAR(255)
func (d *MySQLDialect) CreateTableSQL(schema string) string {
	result := storage.ReplaceType(schema, map[string]string{"NAME": "VARCHAR(255)"})

	// 添加引擎声明
	if !strings.Contains(result, "ENGINE=") && strings.Contains(result, "CREATE TABLE") {
		result = strings.TrimRight(result, "; \n\t") + " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"
	}
	return result
}

// ConfigureDB MySQL会话参数通过DSN设置，见 NormalizeDSN
func (d *MySQLDialect) ConfigureDB() []string {
	return nil
}

// NormalizeDSN 补齐定义库需要的连接参数（对外导出）
// parseTime 让 DATETIME 扫描为 time.Time；严格模式拒绝超长名称被截断
func NormalizeDSN(dsn string) (string, error) {
	cfg, err := mysqldrv.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("解析MySQL DSN失败: %w", err)
	}
	cfg.ParseTime = true
	if cfg.Params == nil {
		cfg.Params = make(map[string]string)
	}
	if _, ok := cfg.Params["sql_mode"]; !ok {
		cfg.Params["sql_mode"] = "'STRICT_TRANS_TABLES,NO_ZERO_IN_DATE,NO_ZERO_DATE,NO_ENGINE_SUBSTITUTION'"
	}
	return cfg.FormatDSN(), nil
}

// Open 通过DSN打开MySQL定义库（对外导出）
func Open(dsn string, pool storage.PoolOptions) (*storage.SQLRepository, error) {
	normalized, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, err
	}
	return storage.Open(NewMySQLDialect(), normalized, pool)
}

// 确保实现接口
var _ storage.Dialect = (*MySQLDialect)(nil)
