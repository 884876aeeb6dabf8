package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/buildsys/pkg/core/graph"
)

const sampleTasks = `tasks:
  - name: task1
    dependencies:
      - task2
  - name: task2
    dependencies:
      - task5
  - name: task3
  - name: task4
    dependencies: [task1, task3]
  - name: task5
`

const sampleBuilds = `builds:
  - name: build1
    tasks: [task1, task2]
  - name: build3
    tasks:
      - task4
  - name: empty
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTasks(t *testing.T) {
	tasks, err := LoadTasks(writeFile(t, "tasks.yaml", sampleTasks))
	require.NoError(t, err)

	assert.Equal(t, []string{"task1", "task2", "task3", "task4", "task5"}, tasks.Names())
	deps, err := tasks.Dependencies("task4")
	require.NoError(t, err)
	assert.Equal(t, []string{"task1", "task3"}, deps)

	deps, err = tasks.Dependencies("task3")
	require.NoError(t, err)
	assert.Empty(t, deps, "缺省dependencies为空列表")
}

func TestLoadBuilds(t *testing.T) {
	builds, err := LoadBuilds(writeFile(t, "builds.yaml", sampleBuilds))
	require.NoError(t, err)

	assert.Equal(t, []string{"build1", "build3", "empty"}, builds.Names())
	entries, err := builds.EntryTasks("build1")
	require.NoError(t, err)
	assert.Equal(t, []string{"task1", "task2"}, entries)

	entries, err = builds.EntryTasks("empty")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadDefinitions_SingleDocument(t *testing.T) {
	path := writeFile(t, "all.yaml", sampleTasks+sampleBuilds)

	snap, err := LoadDefinitions(path, path)
	require.NoError(t, err)
	assert.Equal(t, 5, snap.Tasks.Len())
	assert.Equal(t, 3, snap.Builds.Len())
}

func TestLoadDefinitions_FailsAsAWhole(t *testing.T) {
	tasksPath := writeFile(t, "tasks.yaml", sampleTasks)

	snap, err := LoadDefinitions(tasksPath, filepath.Join(t.TempDir(), "builds.yaml"))
	assert.Nil(t, snap)
	assert.True(t, errors.Is(err, graph.ErrSourceNotFound))
}

func TestLoadTasks_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		kind    error
		msg     func(path string) string
	}{
		{
			name:    "malformed yaml",
			content: "tasks:\n  - name: a\n   dependencies: [b",
			kind:    graph.ErrMalformedInput,
		},
		{
			name:    "empty document",
			content: "",
			kind:    graph.ErrValidation,
			msg:     func(p string) string { return fmt.Sprintf("No tasks defined in '%s'", p) },
		},
		{
			name:    "empty collection",
			content: "tasks: []\n",
			kind:    graph.ErrValidation,
			msg:     func(p string) string { return fmt.Sprintf("No tasks defined in '%s'", p) },
		},
		{
			name:    "missing name",
			content: "tasks:\n  - dependencies: [a]\n",
			kind:    graph.ErrValidation,
			msg:     func(string) string { return "Invalid task definition: missing 'name'" },
		},
		{
			name:    "duplicate name",
			content: "tasks:\n  - name: a\n  - name: a\n",
			kind:    graph.ErrValidation,
			msg:     func(p string) string { return fmt.Sprintf("Duplicate task name 'a' in '%s'", p) },
		},
		{
			name:    "list at top level",
			content: "- name: a\n- name: b\n",
			kind:    graph.ErrValidation,
		},
		{
			name:    "scalar collection",
			content: "tasks: everything\n",
			kind:    graph.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "tasks.yaml", tt.content)

			tasks, err := LoadTasks(path)
			require.Error(t, err)
			assert.Nil(t, tasks)
			assert.True(t, errors.Is(err, tt.kind), "错误类别不符: %v", err)
			if tt.msg != nil {
				assert.EqualError(t, err, tt.msg(path))
			}
		})
	}
}

func TestLoadTasks_SourceNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := LoadTasks(path)
	var notFound *graph.SourceNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, path, notFound.Source)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.EqualError(t, err, path+" not found")
}

func TestLoadBuilds_WrongShape(t *testing.T) {
	path := writeFile(t, "builds.yaml", "builds:\n  - name: b\n    tasks: {a: 1}\n")

	_, err := LoadBuilds(path)
	assert.True(t, errors.Is(err, graph.ErrValidation), "实际: %v", err)
}
