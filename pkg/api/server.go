package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/LENAX/buildsys/pkg/catalog"
	"github.com/LENAX/buildsys/pkg/config"
	"github.com/LENAX/buildsys/pkg/metrics"
)

// APIServer HTTP API服务器
type APIServer struct {
	config     config.ServerConfig
	httpServer *http.Server
	logger     *logrus.Logger
}

// NewAPIServer 创建API服务器
func NewAPIServer(cat *catalog.Catalog, m *metrics.Metrics, cfg config.ServerConfig, logger *logrus.Logger, version string) *APIServer {
	return &APIServer{
		config: cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:         cfg.Address(),
			Handler:      SetupRouter(cat, m, logger, version),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Handler 返回路由，便于测试直接调用
func (s *APIServer) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start 启动服务器，阻塞直到服务器关闭
func (s *APIServer) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server listen failed: %w", err)
	}
	return s.Serve(ln)
}

// Serve 在已有的监听器上提供服务
func (s *APIServer) Serve(ln net.Listener) error {
	s.logger.WithField("addr", ln.Addr().String()).Info("buildsys API Server starting")

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server listen failed: %w", err)
	}
	return nil
}

// Shutdown 优雅关闭服务器
func (s *APIServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API Server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("API Server stopped")
	return nil
}

// Addr 获取服务器地址
func (s *APIServer) Addr() string {
	return s.config.Address()
}
