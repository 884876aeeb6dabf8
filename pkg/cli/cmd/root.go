package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/LENAX/buildsys/internal/logging"
	"github.com/LENAX/buildsys/pkg/cli/output"
	"github.com/LENAX/buildsys/pkg/config"
	"github.com/LENAX/buildsys/pkg/core/graph"
	"github.com/LENAX/buildsys/pkg/source"
)

// app 一次命令执行的共享状态
type app struct {
	stdout io.Writer
	stderr io.Writer

	v          *viper.Viper
	cfgFile    string
	outputJSON bool

	cfg    *config.Config
	logger *logrus.Logger
}

// flagBindings 命令行参数与配置键的对应关系
var flagBindings = map[string]string{
	"tasks-file":  "source.tasks_file",
	"builds-file": "source.builds_file",
	"source":      "source.type",
	"db-type":     "source.database.type",
	"dsn":         "source.database.dsn",
	"cycle-check": "resolver.cycle_check",
	"log-level":   "general.log_level",
	"log-format":  "general.log_format",
}

// NewRootCommand 创建根命令（对外导出）
// 每次调用返回独立的命令树，输出写入 stdout/stderr
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, v: config.NewViper()}

	rootCmd := &cobra.Command{
		Use:   "buildsys",
		Short: "buildsys - 构建依赖解析工具",
		Long: `buildsys 读取任务与构建定义，把构建展开为按依赖排序的任务列表。

支持的功能：
  - 列出任务和构建
  - 查看任务依赖与构建的解析顺序
  - 审计任务图（未定义引用、循环依赖）
  - 导出构建的 DOT 依赖图
  - 把定义导入数据库
  - 启动只读HTTP API服务

使用示例：
  # 列出所有任务
  buildsys list tasks

  # 查看构建的解析顺序
  buildsys get build build3

  # 审计全部定义
  buildsys check`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	// 全局参数
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "配置文件路径（yaml）")
	flags.BoolVarP(&a.outputJSON, "json", "j", false, "使用JSON格式输出")
	flags.String("tasks-file", "tasks.yaml", "任务定义文件")
	flags.String("builds-file", "builds.yaml", "构建定义文件")
	flags.String("source", config.SourceFile, "定义源类型（file/database）")
	flags.String("db-type", "sqlite", "数据库类型（sqlite/mysql/postgres）")
	flags.String("dsn", "", "数据库连接字符串")
	flags.String("cycle-check", "path", "循环检测模式（path/legacy）")
	flags.String("log-level", "info", "日志级别（debug/info/warn/error）")
	flags.String("log-format", "text", "日志格式（text/json）")
	bindFlags(a.v, flags, flagBindings)

	// 添加子命令
	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newGetCmd(a))
	rootCmd.AddCommand(newCheckCmd(a))
	rootCmd.AddCommand(newGraphCmd(a))
	rootCmd.AddCommand(newImportCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newVersionCmd(a))
	return rootCmd
}

// init 加载配置并创建日志器
func (a *app) init() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return usageError(err)
	}
	logger, err := logging.New(cfg.General.LogLevel, cfg.General.LogFormat, a.stderr)
	if err != nil {
		return usageError(err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// loadSnapshot 从配置的定义源加载完整快照
func (a *app) loadSnapshot(ctx context.Context) (*graph.Snapshot, error) {
	src, err := source.New(a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	snap, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	a.logger.WithFields(logrus.Fields{
		"source": src.Describe(),
		"tasks":  snap.Tasks.Len(),
		"builds": snap.Builds.Len(),
	}).Debug("定义已加载")
	return snap, nil
}

// Run 执行命令并返回退出码（对外导出）
// 错误以 "Error: <message>" 写入 stderr；用法错误返回2，其余错误返回1
func Run(args []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), args, stdout, stderr)
}

// RunContext 带上下文执行命令，ctx 结束时 serve 命令优雅退出
func RunContext(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCommand(stdout, stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if !exitErr.Silent {
			output.Error(stderr, "%s", exitErr.Error())
		}
		return exitErr.Code
	}
	output.Error(stderr, "%s", err.Error())
	return 1
}

// Execute 执行根命令
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}

// bindFlags 把命令行参数绑定到配置键
// 参数只在显式设置时覆盖配置文件与环境变量
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, bindings map[string]string) {
	for name, key := range bindings {
		if flag := flags.Lookup(name); flag != nil {
			_ = v.BindPFlag(key, flag)
		}
	}
}

// exactArgs 参数数量校验，失败时返回用法错误
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageError(fmt.Errorf("%s 需要 %d 个参数，实际 %d 个", cmd.CommandPath(), n, len(args)))
		}
		return nil
	}
}
