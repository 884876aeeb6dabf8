package export

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/buildsys/pkg/core/graph"
	"github.com/LENAX/buildsys/pkg/core/resolver"
)

func fixture(t *testing.T) (*graph.BuildGraph, *graph.TaskGraph) {
	t.Helper()
	tasks, err := graph.NewTaskGraph("tasks.yaml", []graph.Task{
		{Name: "task1", Dependencies: []string{"task2"}},
		{Name: "task2", Dependencies: []string{"task5", "task5"}},
		{Name: "task3"},
		{Name: "task4", Dependencies: []string{"task1", "task3"}},
		{Name: "task5"},
		{Name: "task6", Dependencies: []string{"task7"}},
		{Name: "task7", Dependencies: []string{"task6"}},
	})
	require.NoError(t, err)
	builds, err := graph.NewBuildGraph("builds.yaml", []graph.Build{
		{Name: "build1", Tasks: []string{"task1", "task2"}},
		{Name: "build3", Tasks: []string{"task4"}},
		{Name: "build4", Tasks: []string{"task6"}},
	})
	require.NoError(t, err)
	return builds, tasks
}

func TestBuildSubgraph(t *testing.T) {
	builds, tasks := fixture(t)

	g, err := BuildSubgraph("build1", builds, tasks, Options{})
	require.NoError(t, err)

	order, err := g.Order()
	require.NoError(t, err)
	assert.Equal(t, 3, order, "只包含解析出的任务")

	adjacency, err := g.AdjacencyMap()
	require.NoError(t, err)
	assert.Contains(t, adjacency["task1"], "task2")
	assert.Contains(t, adjacency["task2"], "task5")
	assert.Len(t, adjacency["task2"], 1, "重复依赖只保留一条边")
	assert.Empty(t, adjacency["task5"])

	_, props, err := g.VertexWithProperties("task1")
	require.NoError(t, err)
	assert.Equal(t, "bold", props.Attributes["style"])
	assert.Equal(t, "3. task1", props.Attributes["label"])
}

func TestWriteDOT(t *testing.T) {
	builds, tasks := fixture(t)

	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf, "build3", builds, tasks, Options{RankDir: "LR"}))

	out := buf.String()
	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, "rankdir")
	for _, name := range []string{"task1", "task2", "task3", "task4", "task5"} {
		assert.Contains(t, out, `"`+name+`"`)
	}
	assert.NotContains(t, out, "task6")
}

func TestWriteDOT_ResolutionErrors(t *testing.T) {
	builds, tasks := fixture(t)

	var buf bytes.Buffer
	err := WriteDOT(&buf, "build4", builds, tasks, Options{})
	assert.True(t, errors.Is(err, graph.ErrCyclicDependency))
	assert.Zero(t, buf.Len())

	err = WriteDOT(&buf, "build8", builds, tasks, Options{})
	assert.True(t, errors.Is(err, graph.ErrNotFound))

	err = WriteDOT(&buf, "build1", builds, tasks, Options{Resolver: resolver.Options{CycleCheck: resolver.CycleCheckLegacy}})
	assert.True(t, errors.Is(err, graph.ErrCyclicDependency))
}
