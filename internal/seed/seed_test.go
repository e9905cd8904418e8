package seed

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/scheduler"
)

type fakeStore struct {
	created []*domain.CostMatrix
	failAt  int
}

func (s *fakeStore) CreateCostMatrix(m *domain.CostMatrix) error {
	if s.failAt > 0 && len(s.created)+1 == s.failAt {
		s.failAt = 0
		return errors.New("duplicate name")
	}
	m.ID = int64(len(s.created) + 1)
	s.created = append(s.created, m)
	return nil
}

func TestSeedRandomCostMatrices(t *testing.T) {
	store := &fakeStore{failAt: 2}

	cnt := SeedRandomCostMatrices(store, 3, 4, 2, 30, scheduler.NewRandom([]uint64{1, 2}))

	assert.Equal(t, 2, cnt)
	require.Len(t, store.created, 2)
	for _, m := range store.created {
		assert.Equal(t, 4, m.Tasks)
		assert.Equal(t, 2, m.Machines)
		require.Len(t, m.Costs, 4)
		for _, row := range m.Costs {
			for _, c := range row {
				assert.True(t, c >= 0 && c <= 30)
			}
		}
	}
}

func TestReadCostMatrixCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    [][]int64
		wantErr bool
	}{
		{"plain", "1,2\n3,4\n", [][]int64{{1, 2}, {3, 4}}, false},
		{"header", "m0,m1\n1, 2\n3,4\n", [][]int64{{1, 2}, {3, 4}}, false},
		{"bad value", "1,2\n3,x\n", nil, true},
		{"ragged", "1,2\n3\n", nil, true},
		{"empty", "", nil, true},
		{"header only", "m0,m1\n", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadCostMatrixCSV(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeedCostMatrixFromCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factory.csv")
	require.NoError(t, os.WriteFile(path, []byte("1,5\n5,1\n"), 0o644))

	store := &fakeStore{}
	m, err := SeedCostMatrixFromCSV(store, path)

	require.NoError(t, err)
	assert.Equal(t, "factory", m.Name)
	assert.Equal(t, [][]int64{{1, 5}, {5, 1}}, m.Costs)
	assert.Len(t, store.created, 1)

	_, err = SeedCostMatrixFromCSV(store, filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
