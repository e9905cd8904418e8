package simulation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/domain"
)

func twoByTwo() *domain.CostMatrix {
	return &domain.CostMatrix{
		ID:       1,
		Tasks:    2,
		Machines: 2,
		Costs:    [][]int64{{1, 5}, {5, 1}},
	}
}

func TestRun(t *testing.T) {
	run := &domain.SimulationRun{
		ID:           uuid.New(),
		CostMatrixID: 1,
		Generations:  300,
		PoolSize:     60,
		Threads:      2,
		Patience:     500,
		Seeds:        []uint64{1, 2, 3},
		Status:       domain.SimulationStatusRunning,
	}

	require.NoError(t, Run(twoByTwo(), run, ModeSync))

	assert.Equal(t, domain.SimulationStatusSucceeded, run.Status)
	assert.Equal(t, 500.0, run.BestScore)
	assert.Equal(t, int64(1), run.Makespan)
	assert.Equal(t, []int{0, 1}, run.Assignments)
	assert.NotNil(t, run.FinishedAt)
	assert.Empty(t, run.ErrorMessage)
}

func TestRun_InvalidThreads(t *testing.T) {
	run := &domain.SimulationRun{
		CostMatrixID: 1,
		Generations:  10,
		PoolSize:     10,
		Threads:      0,
		Seeds:        []uint64{1},
	}

	err := Run(twoByTwo(), run, ModeAsync)

	require.Error(t, err)
	assert.Equal(t, domain.SimulationStatusFailed, run.Status)
	assert.NotEmpty(t, run.ErrorMessage)
	assert.NotNil(t, run.FinishedAt)
}

func TestRun_InvalidMatrix(t *testing.T) {
	m := twoByTwo()
	m.Costs = [][]int64{{1, 5}}

	err := Run(m, &domain.SimulationRun{Generations: 1, PoolSize: 1, Threads: 1}, ModeSync)

	assert.Error(t, err)
}

func TestCacheKey(t *testing.T) {
	a := &domain.SimulationRun{CostMatrixID: 3, Generations: 10, PoolSize: 20, Threads: 2, Seeds: []uint64{1, 2}}
	b := &domain.SimulationRun{CostMatrixID: 3, Generations: 10, PoolSize: 20, Threads: 2, Patience: 30, Seeds: []uint64{1, 2}}
	c := &domain.SimulationRun{CostMatrixID: 3, Generations: 10, PoolSize: 20, Threads: 2, Seeds: []uint64{1, 3}}

	assert.Equal(t, "simulation:3:g10:p20:t2:c30:s1,2", CacheKey(a))
	assert.Equal(t, CacheKey(a), CacheKey(b))
	assert.NotEqual(t, CacheKey(a), CacheKey(c))
}
