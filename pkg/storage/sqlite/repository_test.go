package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/buildsys/pkg/core/graph"
	"github.com/LENAX/buildsys/pkg/storage"
)

func openTestRepo(t *testing.T) *storage.SQLRepository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "defs.db"), storage.PoolOptions{MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleSnapshot(t *testing.T) *graph.Snapshot {
	t.Helper()
	tasks, err := graph.NewTaskGraph("tasks.yaml", []graph.Task{
		{Name: "task4", Dependencies: []string{"task1", "task3"}},
		{Name: "task1", Dependencies: []string{"task2"}},
		{Name: "task2", Dependencies: []string{"task5"}},
		{Name: "task3"},
		{Name: "task5"},
	})
	require.NoError(t, err)
	builds, err := graph.NewBuildGraph("builds.yaml", []graph.Build{
		{Name: "build3", Tasks: []string{"task4"}},
		{Name: "build1", Tasks: []string{"task1", "task2"}},
		{Name: "empty"},
	})
	require.NoError(t, err)
	return &graph.Snapshot{Tasks: tasks, Builds: builds}
}

func TestSQLRepository_RoundTripPreservesOrder(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	snap := sampleSnapshot(t)

	record, err := repo.SaveDefinitions(ctx, snap)
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, 5, record.TaskCount)
	assert.Equal(t, 3, record.BuildCount)

	tasks, err := repo.LoadTaskGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.Tasks.Tasks(), tasks.Tasks())

	builds, err := repo.LoadBuildGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.Builds.Builds(), builds.Builds())
}

func TestSQLRepository_SaveReplacesEverything(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	_, err := repo.SaveDefinitions(ctx, sampleSnapshot(t))
	require.NoError(t, err)

	tasks, err := graph.NewTaskGraph("tasks.yaml", []graph.Task{{Name: "only"}})
	require.NoError(t, err)
	builds, err := graph.NewBuildGraph("builds.yaml", []graph.Build{{Name: "solo", Tasks: []string{"only"}}})
	require.NoError(t, err)
	second, err := repo.SaveDefinitions(ctx, &graph.Snapshot{Tasks: tasks, Builds: builds})
	require.NoError(t, err)

	loaded, err := repo.LoadTaskGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, loaded.Names())

	last, err := repo.LastImport(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, second.ID, last.ID)
}

func TestSQLRepository_EmptyDatabase(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	_, err := repo.LoadTaskGraph(ctx)
	assert.True(t, errors.Is(err, graph.ErrValidation))
	assert.EqualError(t, err, "No tasks defined in 'sqlite database'")

	_, err = repo.LoadBuildGraph(ctx)
	assert.True(t, errors.Is(err, graph.ErrValidation))

	last, err := repo.LastImport(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestSQLRepository_RejectsIncompleteSnapshot(t *testing.T) {
	repo := openTestRepo(t)

	_, err := repo.SaveDefinitions(context.Background(), &graph.Snapshot{})
	assert.Error(t, err)
}

func TestSQLiteDialect_CreateTableSQL(t *testing.T) {
	ddl := NewSQLiteDialect().CreateTableSQL("CREATE TABLE t (\n\t\tname NAME PRIMARY KEY\n\t)")
	assert.Contains(t, ddl, "name TEXT PRIMARY KEY")
}
