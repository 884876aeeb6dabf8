package storage

import "time"

// taskRow task_definition 表记录
type taskRow struct {
	Name string `db:"name"`
	Seq  int    `db:"seq"`
}

// taskDependencyRow task_dependency 表记录
type taskDependencyRow struct {
	TaskName   string `db:"task_name"`
	Seq        int    `db:"seq"`
	Dependency string `db:"dependency"`
}

// buildRow build_definition 表记录
type buildRow struct {
	Name string `db:"name"`
	Seq  int    `db:"seq"`
}

// buildTaskRow build_task 表记录
type buildTaskRow struct {
	BuildName string `db:"build_name"`
	Seq       int    `db:"seq"`
	TaskName  string `db:"task_name"`
}

// ImportRecord 一次定义导入的记录（对外导出）
type ImportRecord struct {
	ID         string    `db:"id" json:"id"`
	TaskCount  int       `db:"task_count" json:"task_count"`
	BuildCount int       `db:"build_count" json:"build_count"`
	ImportedAt time.Time `db:"imported_at" json:"imported_at"`
}
