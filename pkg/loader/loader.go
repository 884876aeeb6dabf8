// Package loader 从YAML文档加载任务和构建定义
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/LENAX/buildsys/pkg/core/graph"
)

// taskDocument 任务定义文档
type taskDocument struct {
	Tasks []graph.Task `yaml:"tasks"`
}

// buildDocument 构建定义文档
type buildDocument struct {
	Builds []graph.Build `yaml:"builds"`
}

// LoadTasks 加载任务定义文件（对外导出）
func LoadTasks(path string) (*graph.TaskGraph, error) {
	var doc taskDocument
	if err := decodeFile(path, graph.KindTask, &doc); err != nil {
		return nil, err
	}
	return graph.NewTaskGraph(path, doc.Tasks)
}

// LoadBuilds 加载构建定义文件（对外导出）
func LoadBuilds(path string) (*graph.BuildGraph, error) {
	var doc buildDocument
	if err := decodeFile(path, graph.KindBuild, &doc); err != nil {
		return nil, err
	}
	return graph.NewBuildGraph(path, doc.Builds)
}

// LoadDefinitions 加载任务和构建定义，两个路径可以相同（对外导出）
// 任一文件失败则整体失败
func LoadDefinitions(tasksPath, buildsPath string) (*graph.Snapshot, error) {
	tasks, err := LoadTasks(tasksPath)
	if err != nil {
		return nil, err
	}
	builds, err := LoadBuilds(buildsPath)
	if err != nil {
		return nil, err
	}
	return &graph.Snapshot{Tasks: tasks, Builds: builds}, nil
}

// decodeFile 读取并解码文档，把底层错误归类为定义源错误
func decodeFile(path string, kind graph.Kind, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &graph.SourceNotFoundError{Source: path, Err: err}
		}
		return &graph.MalformedInputError{Source: path, Err: err}
	}
	return decode(path, kind, data, out)
}

func decode(source string, kind graph.Kind, data []byte, out any) error {
	err := yaml.Unmarshal(data, out)
	if err == nil {
		return nil
	}

	// 语法正确但结构不符（顶层是列表、name不是字符串等）属于校验错误
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		return &graph.ValidationError{
			Source: source,
			Msg:    fmt.Sprintf("Invalid %s definitions in '%s': %s", kind, source, strings.Join(typeErr.Errors, "; ")),
		}
	}
	return &graph.MalformedInputError{Source: source, Err: err}
}
