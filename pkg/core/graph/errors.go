package graph

import (
	"errors"
	"fmt"
	"strings"
)

// 错误类别哨兵值（对外导出），配合 errors.Is 使用
var (
	ErrSourceNotFound   = errors.New("definition source not found")
	ErrMalformedInput   = errors.New("malformed definition source")
	ErrValidation       = errors.New("invalid definitions")
	ErrNotFound         = errors.New("not found")
	ErrUndefinedTask    = errors.New("undefined task")
	ErrCyclicDependency = errors.New("cyclic dependency")
)

// SourceNotFoundError 定义源不存在
type SourceNotFoundError struct {
	Source string
	Err    error
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Source)
}

func (e *SourceNotFoundError) Unwrap() error        { return e.Err }
func (e *SourceNotFoundError) Is(target error) bool { return target == ErrSourceNotFound }

// MalformedInputError 定义源存在但无法解析为结构化数据
type MalformedInputError struct {
	Source string
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("Invalid YAML formatting in %s", e.Source)
	}
	return fmt.Sprintf("Invalid YAML formatting in %s: %v", e.Source, e.Err)
}

func (e *MalformedInputError) Unwrap() error        { return e.Err }
func (e *MalformedInputError) Is(target error) bool { return target == ErrMalformedInput }

// ValidationError 结构合法但语义非法：空集合、缺少name、重复name
type ValidationError struct {
	Source string
	Msg    string
}

func (e *ValidationError) Error() string        { return e.Msg }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func validationf(source, format string, args ...any) error {
	return &ValidationError{Source: source, Msg: fmt.Sprintf(format, args...)}
}

// Kind 被查询对象的类别
type Kind string

const (
	KindTask  Kind = "task"
	KindBuild Kind = "build"
)

// title 返回首字母大写的类别名，用于错误消息
func (k Kind) title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// NotFoundError 查询的任务或构建不存在
type NotFoundError struct {
	Kind Kind
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Kind.title(), e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// UndefinedTaskError 依赖或入口任务引用了未定义的任务
type UndefinedTaskError struct {
	Name         string `json:"name"`                    // 缺失的任务名
	ReferencedBy string `json:"referenced_by,omitempty"` // 引用方名称
	ReferrerKind Kind   `json:"referrer_kind,omitempty"` // 引用方类别：task 或 build
}

func (e *UndefinedTaskError) Error() string {
	if e.ReferencedBy == "" {
		return fmt.Sprintf("Task '%s' is not defined", e.Name)
	}
	return fmt.Sprintf("Task '%s' is not defined (referenced by %s '%s')", e.Name, e.ReferrerKind, e.ReferencedBy)
}

func (e *UndefinedTaskError) Is(target error) bool { return target == ErrUndefinedTask }

// CyclicDependencyError 解析过程中检测到循环依赖
// Task 依赖 Dependency 这条边闭合了循环
type CyclicDependencyError struct {
	Task       string   `json:"task"`
	Dependency string   `json:"dependency"`
	Path       []string `json:"path,omitempty"` // 循环路径，首尾相同；无法确定时为空
}

func (e *CyclicDependencyError) Error() string {
	msg := fmt.Sprintf("Cyclic dependency found: '%s' depends on '%s'", e.Task, e.Dependency)
	if len(e.Path) > 0 {
		msg += " (" + strings.Join(e.Path, " -> ") + ")"
	}
	return msg
}

func (e *CyclicDependencyError) Is(target error) bool { return target == ErrCyclicDependency }
