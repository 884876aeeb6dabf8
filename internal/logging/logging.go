// Package logging 基于 logrus 构建进程日志器
package logging

import (
	"fmt"
	"io"
	stdlog "log"
	"strings"

	"github.com/sirupsen/logrus"
)

// 支持的日志格式
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New 按级别和格式创建日志器
// level 为空时使用 info，format 为空时使用 text
func New(level, format string, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	lvl := logrus.InfoLevel
	if level != "" {
		parsed, err := logrus.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, fmt.Errorf("无效的日志级别: %s", level)
		}
		lvl = parsed
	}
	logger.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", FormatText:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("无效的日志格式: %s", format)
	}
	return logger, nil
}

// Discard 返回丢弃所有输出的日志器，用于测试和静默场景
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// RedirectStdlib 把标准库 log 的输出转到 logger 的 info 级别
// 返回的函数恢复原有输出
func RedirectStdlib(logger *logrus.Logger) func() {
	prevOut := stdlog.Writer()
	prevFlags := stdlog.Flags()
	w := logger.WriterLevel(logrus.InfoLevel)
	stdlog.SetFlags(0)
	stdlog.SetOutput(w)
	return func() {
		stdlog.SetOutput(prevOut)
		stdlog.SetFlags(prevFlags)
		_ = w.Close()
	}
}
