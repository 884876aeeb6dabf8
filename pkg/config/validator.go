package config

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/LENAX/buildsys/pkg/core/resolver"
)

// Validate 校验配置合法性
func (c *Config) Validate() error {
	// 校验General
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.General.LogLevel] {
		return fmt.Errorf("general.log_level必须是debug/info/warn/error之一")
	}
	if c.General.LogFormat != "text" && c.General.LogFormat != "json" {
		return fmt.Errorf("general.log_format必须是text/json之一")
	}

	// 校验Source
	switch c.Source.Type {
	case SourceFile:
		if c.Source.TasksFile == "" || c.Source.BuildsFile == "" {
			return fmt.Errorf("source.tasks_file和source.builds_file不能为空")
		}
	case SourceDatabase:
		if err := c.Source.Database.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("source.type必须是file/database之一")
	}

	if _, err := resolver.ParseCycleCheck(c.Resolver.CycleCheck); err != nil {
		return fmt.Errorf("resolver.cycle_check必须是path/legacy之一")
	}

	// 校验Server
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port必须在0-65535之间")
	}
	if c.Server.ReloadSchedule != "" {
		if _, err := cron.ParseStandard(c.Server.ReloadSchedule); err != nil {
			return fmt.Errorf("server.reload_schedule不是合法的cron表达式: %w", err)
		}
	}
	return nil
}

// Validate 校验数据库配置
func (d DatabaseConfig) Validate() error {
	validDBTypes := map[string]bool{
		"sqlite":     true,
		"postgres":   true,
		"postgresql": true,
		"mysql":      true,
	}
	if !validDBTypes[d.Type] {
		return fmt.Errorf("source.database.type必须是sqlite/postgres/mysql之一")
	}
	if d.DSN == "" {
		return fmt.Errorf("source.database.dsn不能为空")
	}
	if d.MaxOpenConns <= 0 {
		return fmt.Errorf("source.database.max_open_conns必须大于0")
	}
	if d.MaxIdleConns < 0 {
		return fmt.Errorf("source.database.max_idle_conns不能为负数")
	}
	return nil
}

// CycleCheckMode 返回解析器的循环检测模式，配置已经过校验
func (c *Config) CycleCheckMode() resolver.CycleCheck {
	mode, _ := resolver.ParseCycleCheck(c.Resolver.CycleCheck)
	return mode
}
