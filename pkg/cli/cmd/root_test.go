package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tasksYAML = `tasks:
  - name: task1
    dependencies:
      - task2
  - name: task2
    dependencies:
      - task5
  - name: task3
  - name: task4
    dependencies:
      - task1
      - task3
  - name: task5
  - name: task6
    dependencies:
      - task7
  - name: task7
    dependencies:
      - task6
`

const buildsYAML = `builds:
  - name: build1
    tasks:
      - task1
      - task2
  - name: build2
    tasks:
      - task3
  - name: build3
    tasks:
      - task4
  - name: build4
    tasks:
      - task6
`

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

// fixture 在临时目录中写入定义文件，返回对应的命令行参数
func fixture(t *testing.T, tasks, builds string) []string {
	t.Helper()
	dir := t.TempDir()
	tasksPath := filepath.Join(dir, "tasks.yaml")
	buildsPath := filepath.Join(dir, "builds.yaml")
	require.NoError(t, os.WriteFile(tasksPath, []byte(tasks), 0o644))
	require.NoError(t, os.WriteFile(buildsPath, []byte(builds), 0o644))
	return []string{"--tasks-file", tasksPath, "--builds-file", buildsPath}
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestListTasks(t *testing.T) {
	files := fixture(t, tasksYAML, buildsYAML)

	code, stdout, stderr := run(t, append([]string{"list", "tasks"}, files...)...)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "List of available tasks:\n * task1\n * task2\n * task3\n * task4\n * task5\n * task6\n * task7\n", stdout)
}

func TestListBuilds(t *testing.T) {
	files := fixture(t, tasksYAML, buildsYAML)

	code, stdout, _ := run(t, append([]string{"list", "builds"}, files...)...)
	require.Equal(t, 0, code)
	assert.Equal(t, "List of available builds:\n * build1\n * build2\n * build3\n * build4\n", stdout)
}

func TestGetTask(t *testing.T) {
	files := fixture(t, tasksYAML, buildsYAML)

	code, stdout, _ := run(t, append([]string{"get", "task", "task4"}, files...)...)
	require.Equal(t, 0, code)
	assert.Equal(t, "Task info:\n * name: task4\n * dependencies: task1, task3\n", stdout)

	code, stdout, _ = run(t, append([]string{"get", "task", "task5"}, files...)...)
	require.Equal(t, 0, code)
	assert.Equal(t, "Task info:\n * name: task5\n * dependencies: \n", stdout)

	code, _, stderr := run(t, append([]string{"get", "task", "task9"}, files...)...)
	assert.Equal(t, 1, code)
	assert.Equal(t, "Error: Task 'task9' not found\n", stderr)
}

func TestGetBuild(t *testing.T) {
	files := fixture(t, tasksYAML, buildsYAML)

	code, stdout, _ := run(t, append([]string{"get", "build", "build3"}, files...)...)
	require.Equal(t, 0, code)
	assert.Equal(t, "Build info:\n * name: build3\n * tasks: task5, task2, task1, task3, task4\n", stdout)

	code, stdout, _ = run(t, append([]string{"get", "build", "build1"}, files...)...)
	require.Equal(t, 0, code)
	assert.Equal(t, "Build info:\n * name: build1\n * tasks: task5, task2, task1\n", stdout)
}

func TestGetBuild_Errors(t *testing.T) {
	files := fixture(t, tasksYAML, buildsYAML)

	code, stdout, stderr := run(t, append([]string{"get", "build", "build8"}, files...)...)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Equal(t, "Error: Build 'build8' not found\n", stderr)

	code, _, stderr = run(t, append([]string{"get", "build", "build4"}, files...)...)
	assert.Equal(t, 1, code)
	assert.Equal(t, "Error: Cyclic dependency found: 'task7' depends on 'task6' (task6 -> task7 -> task6)\n", stderr)
}

func TestGetBuild_LegacyCycleCheck(t *testing.T) {
	files := fixture(t, tasksYAML, buildsYAML)

	code, _, stderr := run(t, append([]string{"get", "build", "build1", "--cycle-check", "legacy"}, files...)...)
	assert.Equal(t, 1, code)
	assert.Equal(t, "Error: Cyclic dependency found: 'task2' depends on 'task5'\n", stderr)

	t.Setenv("BUILDSYS_RESOLVER_CYCLE_CHECK", "legacy")
	code, _, _ = run(t, append([]string{"get", "build", "build1"}, files...)...)
	assert.Equal(t, 1, code, "环境变量同样生效")

	code, _, _ = run(t, append([]string{"get", "build", "build1", "--cycle-check", "path"}, files...)...)
	assert.Equal(t, 0, code, "命令行参数优先于环境变量")
}

func TestGetBuild_JSON(t *testing.T) {
	files := fixture(t, tasksYAML, buildsYAML)

	code, stdout, _ := run(t, append([]string{"get", "build", "build3", "--json"}, files...)...)
	require.Equal(t, 0, code)

	var out struct {
		Name  string   `json:"name"`
		Tasks []string `json:"tasks"`
		Order []string `json:"order"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "build3", out.Name)
	assert.Equal(t, []string{"task4"}, out.Tasks)
	assert.Equal(t, []string{"task5", "task2", "task1", "task3", "task4"}, out.Order)
}

func TestSourceErrors(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "tasks.yaml")

	code, _, stderr := run(t, "list", "tasks", "--tasks-file", missing)
	assert.Equal(t, 1, code)
	assert.Equal(t, "Error: "+missing+" not found\n", stderr)

	files := fixture(t, "tasks: [\n", buildsYAML)
	code, _, stderr = run(t, append([]string{"list", "builds"}, files...)...)
	assert.Equal(t, 1, code, "任一文件错误都会失败")
	assert.Contains(t, stderr, "Error: Invalid YAML formatting in ")

	files = fixture(t, "tasks:\n  - name: a\n  - name: a\n", buildsYAML)
	code, _, stderr = run(t, append([]string{"list", "tasks"}, files...)...)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Duplicate task name 'a'")
}

func TestUsageErrors(t *testing.T) {
	files := fixture(t, tasksYAML, buildsYAML)

	tests := [][]string{
		{"get", "task"},
		{"get", "build", "a", "b"},
		{"list"},
		{"list", "everything"},
		{"list", "tasks", "--no-such-flag"},
		{"get", "build", "build3", "--cycle-check", "strict"},
	}
	for _, args := range tests {
		code, _, stderr := run(t, append(args, files...)...)
		assert.Equal(t, ExitUsage, code, "%v", args)
		assert.Contains(t, stderr, "Error: ", "%v", args)
	}
}

func TestCheck(t *testing.T) {
	files := fixture(t, tasksYAML, buildsYAML)

	code, stdout, stderr := run(t, append([]string{"check"}, files...)...)
	assert.Equal(t, 1, code)
	assert.Empty(t, stderr, "结果已经输出，不再打印错误")
	assert.Contains(t, stdout, "Cyclic dependency found")
	assert.Contains(t, stdout, "build3")
	assert.Contains(t, stdout, "cyclic")

	clean := fixture(t, "tasks:\n  - name: a\n    dependencies: [b]\n  - name: b\n", "builds:\n  - name: all\n    tasks: [a]\n")
	code, stdout, _ = run(t, append([]string{"check", "--json"}, clean...)...)
	require.Equal(t, 0, code)

	var out struct {
		Audit struct {
			Roots   []string `json:"roots"`
			Targets []string `json:"targets"`
		} `json:"audit"`
		Builds []struct {
			Name   string   `json:"name"`
			Status string   `json:"status"`
			Order  []string `json:"order"`
		} `json:"builds"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, []string{"b"}, out.Audit.Roots)
	assert.Equal(t, []string{"a"}, out.Audit.Targets)
	require.Len(t, out.Builds, 1)
	assert.Equal(t, "ok", out.Builds[0].Status)
	assert.Equal(t, []string{"b", "a"}, out.Builds[0].Order)
}

func TestGraph(t *testing.T) {
	files := fixture(t, tasksYAML, buildsYAML)

	code, stdout, _ := run(t, append([]string{"graph", "build3"}, files...)...)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "digraph")
	assert.Contains(t, stdout, `"task5"`)

	code, stdout, _ = run(t, append([]string{"graph", "build4"}, files...)...)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
}

func TestImportThenReadFromDatabase(t *testing.T) {
	files := fixture(t, tasksYAML, buildsYAML)
	dsn := filepath.Join(t.TempDir(), "buildsys.db")

	code, stdout, stderr := run(t, append([]string{"import", "--db-type", "sqlite", "--dsn", dsn}, files...)...)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "7")

	code, stdout, _ = run(t, "get", "build", "build3", "--source", "database", "--db-type", "sqlite", "--dsn", dsn)
	require.Equal(t, 0, code)
	assert.Equal(t, "Build info:\n * name: build3\n * tasks: task5, task2, task1, task3, task4\n", stdout)

	code, _, _ = run(t, append([]string{"import"}, files...)...)
	assert.Equal(t, ExitUsage, code, "缺少dsn")
}

func TestConfigFile(t *testing.T) {
	files := fixture(t, tasksYAML, buildsYAML)
	cfgPath := filepath.Join(t.TempDir(), "buildsys.yaml")
	content := "source:\n  tasks_file: " + files[1] + "\n  builds_file: " + files[3] + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))

	code, stdout, _ := run(t, "list", "builds", "--config", cfgPath)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, " * build4\n")
}

func TestVersion(t *testing.T) {
	code, stdout, _ := run(t, "version")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Version:    "+Version)
}

// syncBuffer 可并发写入的缓冲区
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestServe_GracefulShutdown(t *testing.T) {
	files := fixture(t, tasksYAML, buildsYAML)
	ctx, cancel := context.WithCancel(context.Background())

	var stdout, stderr syncBuffer
	done := make(chan int, 1)
	go func() {
		args := append([]string{"serve", "--host", "127.0.0.1", "--port", "0", "--reload-schedule", "@every 1h"}, files...)
		done <- RunContext(ctx, args, &stdout, &stderr)
	}()

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(stderr.String()), []byte("buildsys server started"))
	}, 5*time.Second, 20*time.Millisecond)
	cancel()

	select {
	case code := <-done:
		assert.Equal(t, 0, code, stderr.String())
		assert.Contains(t, stderr.String(), "API Server stopped")
	case <-time.After(10 * time.Second):
		t.Fatal("服务未能在超时内退出")
	}
}

func TestServe_FailsFastOnBadDefinitions(t *testing.T) {
	dir := t.TempDir()
	code, _, stderr := run(t, "serve", "--port", "0", "--tasks-file", filepath.Join(dir, "missing.yaml"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not found")
}
