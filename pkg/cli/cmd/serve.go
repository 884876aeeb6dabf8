package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/LENAX/buildsys/internal/logging"
	"github.com/LENAX/buildsys/pkg/api"
	"github.com/LENAX/buildsys/pkg/catalog"
	"github.com/LENAX/buildsys/pkg/core/resolver"
	"github.com/LENAX/buildsys/pkg/metrics"
	"github.com/LENAX/buildsys/pkg/source"
)

// newServeCmd serve命令
func newServeCmd(a *app) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "启动只读HTTP API服务",
		Long: `启动只读HTTP API服务。

使用示例：
  # 使用默认配置启动
  buildsys serve

  # 指定端口并每5分钟重新加载定义
  buildsys serve --port 9090 --reload-schedule "*/5 * * * *"`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	flags := serveCmd.Flags()
	flags.String("host", "0.0.0.0", "监听地址")
	flags.Int("port", 8080, "监听端口")
	flags.String("reload-schedule", "", "定时重新加载定义的cron表达式")
	bindFlags(a.v, flags, map[string]string{
		"host":            "server.host",
		"port":            "server.port",
		"reload-schedule": "server.reload_schedule",
	})
	return serveCmd
}

// serve 运行API服务直到ctx结束
func (a *app) serve(ctx context.Context) error {
	// 1. 创建定义源并完成首次加载，失败则不启动
	src, err := source.New(a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer src.Close()

	snap, err := src.Load(ctx)
	if err != nil {
		return err
	}

	// 2. 发布快照并创建API服务器
	m := metrics.New()
	m.ObserveReload(nil)
	cat := catalog.New(snap, resolver.Options{CycleCheck: a.cfg.CycleCheckMode()}, m)
	server := api.NewAPIServer(cat, m, a.cfg.Server, a.logger, Version)

	restore := logging.RedirectStdlib(a.logger)
	defer restore()

	// 3. 启动定时重新加载
	var reloader *api.Reloader
	if a.cfg.Server.ReloadSchedule != "" {
		reloader, err = api.NewReloader(src, cat, m, a.logger, a.cfg.Server.ReloadSchedule)
		if err != nil {
			return err
		}
		reloader.Start()
	}

	// 4. 在goroutine中启动API服务器
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()
	a.logger.WithFields(logrus.Fields{
		"addr":   server.Addr(),
		"source": src.Describe(),
	}).Info("buildsys server started")

	// 5. 等待中断信号或服务器退出
	select {
	case err := <-errCh:
		if reloader != nil {
			reloader.Stop(context.Background())
		}
		return err
	case <-ctx.Done():
	}

	// 6. 优雅关闭
	a.logger.Info("正在关闭服务...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.WriteTimeout)
	defer cancel()

	if reloader != nil {
		reloader.Stop(shutdownCtx)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil {
		return err
	}
	a.logger.Info("服务已停止")
	return nil
}
