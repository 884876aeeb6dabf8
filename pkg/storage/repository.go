package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/LENAX/buildsys/pkg/core/graph"
)

// DefinitionRepository 任务与构建定义的持久化接口（对外导出）
type DefinitionRepository interface {
	// SaveDefinitions 在一个事务内用快照替换全部定义
	SaveDefinitions(ctx context.Context, snap *graph.Snapshot) (*ImportRecord, error)
	// LoadTaskGraph 按声明顺序加载任务图
	LoadTaskGraph(ctx context.Context) (*graph.TaskGraph, error)
	// LoadBuildGraph 按声明顺序加载构建图
	LoadBuildGraph(ctx context.Context) (*graph.BuildGraph, error)
	// LastImport 返回最近一次导入记录，从未导入时返回 nil
	LastImport(ctx context.Context) (*ImportRecord, error)
	// Close 关闭数据库连接
	Close() error
}

// PoolOptions 连接池配置
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Apply 把连接池配置应用到 db，零值项保持驱动默认
func (o PoolOptions) Apply(db *sqlx.DB) {
	if o.MaxOpenConns > 0 {
		db.SetMaxOpenConns(o.MaxOpenConns)
	}
	if o.MaxIdleConns > 0 {
		db.SetMaxIdleConns(o.MaxIdleConns)
	}
	if o.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(o.ConnMaxLifetime)
	}
}

// schema 通用DDL，由方言转换后逐条执行
var schema = []string{
	`CREATE TABLE IF NOT EXISTS task_definition (
		name NAME PRIMARY KEY,
		seq INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS task_dependency (
		task_name NAME NOT NULL,
		seq INTEGER NOT NULL,
		dependency NAME NOT NULL,
		PRIMARY KEY (task_name, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS build_definition (
		name NAME PRIMARY KEY,
		seq INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS build_task (
		build_name NAME NOT NULL,
		seq INTEGER NOT NULL,
		task_name NAME NOT NULL,
		PRIMARY KEY (build_name, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS definition_import (
		id NAME PRIMARY KEY,
		task_count INTEGER NOT NULL,
		build_count INTEGER NOT NULL,
		imported_at DATETIME NOT NULL
	)`,
}

// SQLRepository 基于 sqlx 的定义Repository实现（对外导出）
// 各数据库共用，差异由 Dialect 表达
type SQLRepository struct {
	db      *sqlx.DB
	dialect Dialect
}

// NewSQLRepository 创建Repository实例并初始化表结构（对外导出）
func NewSQLRepository(db *sqlx.DB, dialect Dialect) (*SQLRepository, error) {
	for _, stmt := range dialect.ConfigureDB() {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("配置%s失败: %w", dialect.Name(), err)
		}
	}

	repo := &SQLRepository{db: db, dialect: dialect}
	if err := repo.initSchema(); err != nil {
		return nil, fmt.Errorf("初始化表结构失败: %w", err)
	}
	return repo, nil
}

// Open 打开数据库并创建Repository（对外导出）
// 打开失败或初始化失败时会关闭连接
func Open(dialect Dialect, dsn string, pool PoolOptions) (*SQLRepository, error) {
	db, err := sqlx.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	pool.Apply(db)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	repo, err := NewSQLRepository(db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// GetDB 获取底层数据库连接（对外导出）
func (r *SQLRepository) GetDB() *sqlx.DB {
	return r.db
}

// Close 关闭数据库连接（对外导出）
func (r *SQLRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLRepository) initSchema() error {
	for _, stmt := range schema {
		if _, err := r.db.Exec(r.dialect.CreateTableSQL(stmt)); err != nil {
			return err
		}
	}
	return nil
}

// source 用于错误消息的定义源名称
func (r *SQLRepository) source() string {
	return r.dialect.Name() + " database"
}

// SaveDefinitions 用快照替换数据库中的全部定义（对外导出）
func (r *SQLRepository) SaveDefinitions(ctx context.Context, snap *graph.Snapshot) (*ImportRecord, error) {
	if snap == nil || snap.Tasks == nil || snap.Builds == nil {
		return nil, fmt.Errorf("快照不完整")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("开启事务失败: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// 1. 清空旧定义
	for _, table := range []string{"task_dependency", "task_definition", "build_task", "build_definition"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return nil, fmt.Errorf("清空%s失败: %w", table, err)
		}
	}

	// 2. 写入任务及其依赖
	for i, task := range snap.Tasks.Tasks() {
		if _, err = tx.NamedExecContext(ctx,
			`INSERT INTO task_definition (name, seq) VALUES (:name, :seq)`,
			taskRow{Name: task.Name, Seq: i}); err != nil {
			return nil, fmt.Errorf("写入任务失败: Task=%s, Error=%w", task.Name, err)
		}
		for j, dep := range task.Dependencies {
			if _, err = tx.NamedExecContext(ctx,
				`INSERT INTO task_dependency (task_name, seq, dependency) VALUES (:task_name, :seq, :dependency)`,
				taskDependencyRow{TaskName: task.Name, Seq: j, Dependency: dep}); err != nil {
				return nil, fmt.Errorf("写入任务依赖失败: Task=%s, Error=%w", task.Name, err)
			}
		}
	}

	// 3. 写入构建及其入口任务
	for i, build := range snap.Builds.Builds() {
		if _, err = tx.NamedExecContext(ctx,
			`INSERT INTO build_definition (name, seq) VALUES (:name, :seq)`,
			buildRow{Name: build.Name, Seq: i}); err != nil {
			return nil, fmt.Errorf("写入构建失败: Build=%s, Error=%w", build.Name, err)
		}
		for j, task := range build.Tasks {
			if _, err = tx.NamedExecContext(ctx,
				`INSERT INTO build_task (build_name, seq, task_name) VALUES (:build_name, :seq, :task_name)`,
				buildTaskRow{BuildName: build.Name, Seq: j, TaskName: task}); err != nil {
				return nil, fmt.Errorf("写入构建任务失败: Build=%s, Error=%w", build.Name, err)
			}
		}
	}

	// 4. 记录本次导入
	record := &ImportRecord{
		ID:         uuid.NewString(),
		TaskCount:  snap.Tasks.Len(),
		BuildCount: snap.Builds.Len(),
		ImportedAt: time.Now().UTC(),
	}
	if _, err = tx.NamedExecContext(ctx,
		`INSERT INTO definition_import (id, task_count, build_count, imported_at) VALUES (:id, :task_count, :build_count, :imported_at)`,
		record); err != nil {
		return nil, fmt.Errorf("写入导入记录失败: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("提交事务失败: %w", err)
	}
	return record, nil
}

// LoadTaskGraph 加载任务图（对外导出）
func (r *SQLRepository) LoadTaskGraph(ctx context.Context) (*graph.TaskGraph, error) {
	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT name, seq FROM task_definition ORDER BY seq`); err != nil {
		return nil, fmt.Errorf("查询任务失败: %w", err)
	}
	var depRows []taskDependencyRow
	if err := r.db.SelectContext(ctx, &depRows,
		`SELECT task_name, seq, dependency FROM task_dependency ORDER BY task_name, seq`); err != nil {
		return nil, fmt.Errorf("查询任务依赖失败: %w", err)
	}

	deps := make(map[string][]string, len(rows))
	for _, d := range depRows {
		deps[d.TaskName] = append(deps[d.TaskName], d.Dependency)
	}
	tasks := make([]graph.Task, len(rows))
	for i, row := range rows {
		tasks[i] = graph.Task{Name: row.Name, Dependencies: deps[row.Name]}
	}
	return graph.NewTaskGraph(r.source(), tasks)
}

// LoadBuildGraph 加载构建图（对外导出）
func (r *SQLRepository) LoadBuildGraph(ctx context.Context) (*graph.BuildGraph, error) {
	var rows []buildRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT name, seq FROM build_definition ORDER BY seq`); err != nil {
		return nil, fmt.Errorf("查询构建失败: %w", err)
	}
	var taskRows []buildTaskRow
	if err := r.db.SelectContext(ctx, &taskRows,
		`SELECT build_name, seq, task_name FROM build_task ORDER BY build_name, seq`); err != nil {
		return nil, fmt.Errorf("查询构建任务失败: %w", err)
	}

	entries := make(map[string][]string, len(rows))
	for _, t := range taskRows {
		entries[t.BuildName] = append(entries[t.BuildName], t.TaskName)
	}
	builds := make([]graph.Build, len(rows))
	for i, row := range rows {
		builds[i] = graph.Build{Name: row.Name, Tasks: entries[row.Name]}
	}
	return graph.NewBuildGraph(r.source(), builds)
}

// LastImport 返回最近一次导入记录（对外导出）
func (r *SQLRepository) LastImport(ctx context.Context) (*ImportRecord, error) {
	var record ImportRecord
	err := r.db.GetContext(ctx, &record,
		`SELECT id, task_count, build_count, imported_at FROM definition_import ORDER BY imported_at DESC, id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询导入记录失败: %w", err)
	}
	return &record, nil
}

// ReplaceType 把DDL中的通用类型替换为方言类型，供各方言实现 CreateTableSQL
func ReplaceType(schema string, replacements map[string]string) string {
	result := schema
	for from, to := range replacements {
		result = strings.ReplaceAll(result, " "+from+" ", " "+to+" ")
	}
	return result
}

var _ DefinitionRepository = (*SQLRepository)(nil)
