// Package source 选择并读取任务与构建定义的来源：YAML文件或数据库
package source

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	internalstorage "github.com/LENAX/buildsys/internal/storage"
	"github.com/LENAX/buildsys/pkg/config"
	"github.com/LENAX/buildsys/pkg/core/graph"
	"github.com/LENAX/buildsys/pkg/loader"
	"github.com/LENAX/buildsys/pkg/storage"
)

// Source 定义源（对外导出）
// 每次 Load 都返回一个新的完整快照，失败时不返回部分结果
type Source interface {
	Load(ctx context.Context) (*graph.Snapshot, error)
	// Describe 返回用于日志的来源描述
	Describe() string
	Close() error
}

// FileSource 从YAML文件加载定义
type FileSource struct {
	TasksFile  string
	BuildsFile string
}

// NewFileSource 创建文件定义源
func NewFileSource(tasksFile, buildsFile string) *FileSource {
	return &FileSource{TasksFile: tasksFile, BuildsFile: buildsFile}
}

// Load 读取两个文件
func (s *FileSource) Load(ctx context.Context) (*graph.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return loader.LoadDefinitions(s.TasksFile, s.BuildsFile)
}

// Describe 返回来源描述
func (s *FileSource) Describe() string {
	return fmt.Sprintf("file(%s, %s)", s.TasksFile, s.BuildsFile)
}

// Close 文件源无需释放资源
func (s *FileSource) Close() error {
	return nil
}

// DatabaseSource 从定义库加载定义
type DatabaseSource struct {
	repo   storage.DefinitionRepository
	dbType string
}

// NewDatabaseSource 基于已打开的Repository创建数据库定义源
func NewDatabaseSource(repo storage.DefinitionRepository, dbType string) *DatabaseSource {
	return &DatabaseSource{repo: repo, dbType: dbType}
}

// Load 加载任务图与构建图
func (s *DatabaseSource) Load(ctx context.Context) (*graph.Snapshot, error) {
	tasks, err := s.repo.LoadTaskGraph(ctx)
	if err != nil {
		return nil, err
	}
	builds, err := s.repo.LoadBuildGraph(ctx)
	if err != nil {
		return nil, err
	}
	return &graph.Snapshot{Tasks: tasks, Builds: builds}, nil
}

// Describe 返回来源描述
func (s *DatabaseSource) Describe() string {
	return fmt.Sprintf("database(%s)", s.dbType)
}

// Close 关闭数据库连接
func (s *DatabaseSource) Close() error {
	return s.repo.Close()
}

// New 按配置创建定义源（对外导出）
func New(cfg *config.Config, logger *logrus.Logger) (Source, error) {
	switch cfg.Source.Type {
	case config.SourceFile, "":
		src := NewFileSource(cfg.Source.TasksFile, cfg.Source.BuildsFile)
		logger.WithField("source", src.Describe()).Debug("使用文件定义源")
		return src, nil
	case config.SourceDatabase:
		repo, err := internalstorage.NewDefinitionRepository(cfg.Source.Database)
		if err != nil {
			return nil, err
		}
		src := NewDatabaseSource(repo, cfg.Source.Database.Type)
		logger.WithField("source", src.Describe()).Debug("使用数据库定义源")
		return src, nil
	default:
		return nil, fmt.Errorf("unsupported source type: %s", cfg.Source.Type)
	}
}
