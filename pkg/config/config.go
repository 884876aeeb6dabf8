// Package config 加载 buildsys 配置：命令行参数 > 环境变量 > 配置文件 > 默认值
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 BUILDSYS_SOURCE_TASKS_FILE
const EnvPrefix = "BUILDSYS"

// 定义源类型
const (
	SourceFile     = "file"
	SourceDatabase = "database"
)

// Config buildsys 配置（对外导出）
type Config struct {
	General  GeneralConfig  `mapstructure:"general" yaml:"general"`
	Source   SourceConfig   `mapstructure:"source" yaml:"source"`
	Resolver ResolverConfig `mapstructure:"resolver" yaml:"resolver"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
}

// GeneralConfig 通用配置
type GeneralConfig struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// SourceConfig 定义源配置
type SourceConfig struct {
	Type       string         `mapstructure:"type" yaml:"type"` // file 或 database
	TasksFile  string         `mapstructure:"tasks_file" yaml:"tasks_file"`
	BuildsFile string         `mapstructure:"builds_file" yaml:"builds_file"`
	Database   DatabaseConfig `mapstructure:"database" yaml:"database"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type            string        `mapstructure:"type" yaml:"type"`
	DSN             string        `mapstructure:"dsn" yaml:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

// ResolverConfig 解析器配置
type ResolverConfig struct {
	CycleCheck string `mapstructure:"cycle_check" yaml:"cycle_check"` // path 或 legacy
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Host           string        `mapstructure:"host" yaml:"host"`
	Port           int           `mapstructure:"port" yaml:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ReloadSchedule string        `mapstructure:"reload_schedule" yaml:"reload_schedule"` // cron表达式，为空则不定时重新加载
}

// Address 返回监听地址
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// NewViper 创建绑定了环境变量和默认值的 viper 实例
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load 读取配置（对外导出）
// file 为空时只使用命令行参数、环境变量和默认值
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %s, %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.log_level", "info")
	v.SetDefault("general.log_format", "text")

	v.SetDefault("source.type", SourceFile)
	v.SetDefault("source.tasks_file", "tasks.yaml")
	v.SetDefault("source.builds_file", "builds.yaml")
	v.SetDefault("source.database.type", "sqlite")
	v.SetDefault("source.database.dsn", "")
	v.SetDefault("source.database.max_open_conns", 10)
	v.SetDefault("source.database.max_idle_conns", 5)
	v.SetDefault("source.database.conn_max_lifetime", 2*time.Hour)

	v.SetDefault("resolver.cycle_check", "path")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.reload_schedule", "")
}

// ApplyDefaults 应用默认值
// 直接构造的 Config（未经 viper）也能得到完整配置
func (c *Config) ApplyDefaults() {
	// General默认值
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	// Source默认值
	if c.Source.Type == "" {
		c.Source.Type = SourceFile
	}
	if c.Source.TasksFile == "" {
		c.Source.TasksFile = "tasks.yaml"
	}
	if c.Source.BuildsFile == "" {
		c.Source.BuildsFile = "builds.yaml"
	}

	// Database默认值
	if c.Source.Database.Type == "" {
		c.Source.Database.Type = "sqlite"
	}
	if c.Source.Database.MaxOpenConns <= 0 {
		c.Source.Database.MaxOpenConns = 10
	}
	if c.Source.Database.MaxIdleConns <= 0 {
		c.Source.Database.MaxIdleConns = 5
	}
	if c.Source.Database.ConnMaxLifetime <= 0 {
		c.Source.Database.ConnMaxLifetime = 2 * time.Hour
	}

	if c.Resolver.CycleCheck == "" {
		c.Resolver.CycleCheck = "path"
	}

	// Server默认值
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
}
