package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMatrix(t *testing.T, costs [][]int64) *CostMatrix {
	t.Helper()
	m, err := NewCostMatrix(costs)
	require.NoError(t, err)
	return m
}

func TestNewCostMatrix(t *testing.T) {
	m := mustMatrix(t, [][]int64{{1, 2, 3}, {4, 5, 6}})

	assert.Equal(t, 2, m.Tasks())
	assert.Equal(t, 3, m.Machines())
	assert.Equal(t, int64(2), m.Cost(0, 1))
	assert.Equal(t, int64(6), m.Cost(1, 2))
}

func TestNewCostMatrix_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		costs [][]int64
	}{
		{"no tasks", nil},
		{"no machines", [][]int64{{}}},
		{"ragged", [][]int64{{1, 2}, {3}}},
		{"negative", [][]int64{{1, -2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCostMatrix(tt.costs)
			assert.Error(t, err)
		})
	}
}

func TestCostMatrix_RowsIsACopy(t *testing.T) {
	m := mustMatrix(t, [][]int64{{1, 2}, {3, 4}})

	rows := m.Rows()
	rows[0][0] = 100

	assert.Equal(t, int64(1), m.Cost(0, 0))
	assert.Equal(t, [][]int64{{1, 2}, {3, 4}}, m.Rows())
}

func TestSchedule_ScoreIsCachedUntilAssignmentChanges(t *testing.T) {
	m := mustMatrix(t, [][]int64{{1, 5}, {5, 1}})
	s := NewSchedule(2)

	_, ok := s.CachedScore()
	assert.False(t, ok)

	// 两个任务都在机器 0 上：makespan = 1 + 5 = 6
	assert.Equal(t, 1000.0/7, s.Score(m))
	cached, ok := s.CachedScore()
	require.True(t, ok)
	assert.Equal(t, 1000.0/7, cached)
	assert.Equal(t, s.Score(m), s.Score(m))

	s.SetTaskAssignment(1, 1)
	_, ok = s.CachedScore()
	assert.False(t, ok)

	assert.Equal(t, int64(1), s.Makespan(m))
	assert.Equal(t, 500.0, s.Score(m))
}

func TestSchedule_EmptyScoresZero(t *testing.T) {
	m := mustMatrix(t, [][]int64{{0}})

	assert.Equal(t, 0.0, NewSchedule(0).Score(m))
	assert.Equal(t, 0.0, (&Schedule{}).Score(m))
}

func TestSchedule_ZeroMakespanScoresMaximum(t *testing.T) {
	m := mustMatrix(t, [][]int64{{0, 3}, {0, 3}})

	assert.Equal(t, 1000.0, NewSchedule(2).Score(m))
}

func TestSchedule_CloneIsIndependent(t *testing.T) {
	m := mustMatrix(t, [][]int64{{1, 5}, {5, 1}})
	s := NewSchedule(2)
	s.SetTaskAssignment(1, 1)
	_ = s.Score(m)

	c := s.Clone()
	c.SetTaskAssignment(0, 1)

	assert.Equal(t, []int{0, 1}, s.Assignments())
	assert.Equal(t, []int{1, 1}, c.Assignments())
	cached, ok := s.CachedScore()
	assert.True(t, ok)
	assert.Equal(t, 500.0, cached)
}

func TestParameters_Patience(t *testing.T) {
	assert.Equal(t, DefaultPatience, Parameters{}.patience())
	assert.Equal(t, 5, Parameters{Patience: 5}.patience())
}
