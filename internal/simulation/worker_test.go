package simulation

import (
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/domain"
)

type fakeStore struct {
	runs     map[uuid.UUID]*domain.SimulationRun
	matrices map[int64]*domain.CostMatrix
	updates  []domain.SimulationStatus
	getErr   error
}

func (s *fakeStore) GetSimulationRunByID(id uuid.UUID) (*domain.SimulationRun, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	run, ok := s.runs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return run, nil
}

func (s *fakeStore) GetCostMatrixByID(id int64) (*domain.CostMatrix, error) {
	m, ok := s.matrices[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return m, nil
}

func (s *fakeStore) UpdateSimulationRunResult(run *domain.SimulationRun) error {
	s.updates = append(s.updates, run.Status)
	return nil
}

type fakeNotifier struct {
	notified []uuid.UUID
}

func (n *fakeNotifier) Notify(run *domain.SimulationRun) error {
	n.notified = append(n.notified, run.ID)
	return nil
}

func newFakeStore(run *domain.SimulationRun) *fakeStore {
	return &fakeStore{
		runs: map[uuid.UUID]*domain.SimulationRun{run.ID: run},
		matrices: map[int64]*domain.CostMatrix{
			1: twoByTwo(),
		},
	}
}

func pendingRun() *domain.SimulationRun {
	return &domain.SimulationRun{
		ID:           uuid.New(),
		CostMatrixID: 1,
		Generations:  300,
		PoolSize:     60,
		Threads:      1,
		Patience:     500,
		Seeds:        []uint64{1, 2, 3},
		Status:       domain.SimulationStatusPending,
		NotifyEmail:  "someone@example.com",
	}
}

func message(t *testing.T, id uuid.UUID) []byte {
	t.Helper()

	body, err := json.Marshal(domain.SimulationMessage{RunID: id})
	require.NoError(t, err)
	return body
}

func TestWorker_Process(t *testing.T) {
	run := pendingRun()
	store := newFakeStore(run)
	notifier := &fakeNotifier{}

	requeue, err := NewWorker(store, notifier).Process(message(t, run.ID))

	require.NoError(t, err)
	assert.False(t, requeue)
	assert.Equal(t, domain.SimulationStatusSucceeded, run.Status)
	assert.Equal(t, 500.0, run.BestScore)
	assert.Equal(t, []domain.SimulationStatus{domain.SimulationStatusRunning, domain.SimulationStatusSucceeded}, store.updates)
	assert.Equal(t, []uuid.UUID{run.ID}, notifier.notified)
}

func TestWorker_ProcessFailedRun(t *testing.T) {
	run := pendingRun()
	run.Threads = 0
	store := newFakeStore(run)

	requeue, err := NewWorker(store, nil).Process(message(t, run.ID))

	require.NoError(t, err)
	assert.False(t, requeue)
	assert.Equal(t, domain.SimulationStatusFailed, run.Status)
	assert.NotEmpty(t, run.ErrorMessage)
	assert.Len(t, store.updates, 2)
}

func TestWorker_ProcessDuplicate(t *testing.T) {
	run := pendingRun()
	run.Status = domain.SimulationStatusSucceeded
	store := newFakeStore(run)
	notifier := &fakeNotifier{}

	requeue, err := NewWorker(store, notifier).Process(message(t, run.ID))

	require.NoError(t, err)
	assert.False(t, requeue)
	assert.Empty(t, store.updates)
	assert.Empty(t, notifier.notified)
}

func TestWorker_ProcessErrors(t *testing.T) {
	t.Run("bad message", func(t *testing.T) {
		requeue, err := NewWorker(&fakeStore{}, nil).Process([]byte("not json"))
		assert.Error(t, err)
		assert.False(t, requeue)
	})

	t.Run("unknown run", func(t *testing.T) {
		requeue, err := NewWorker(&fakeStore{}, nil).Process(message(t, uuid.New()))
		assert.Error(t, err)
		assert.False(t, requeue)
	})

	t.Run("unknown matrix", func(t *testing.T) {
		run := pendingRun()
		run.CostMatrixID = 42
		requeue, err := NewWorker(newFakeStore(run), nil).Process(message(t, run.ID))
		assert.Error(t, err)
		assert.False(t, requeue)
	})

	t.Run("database down", func(t *testing.T) {
		store := &fakeStore{getErr: errors.New("connection refused")}
		requeue, err := NewWorker(store, nil).Process(message(t, uuid.New()))
		assert.Error(t, err)
		assert.True(t, requeue)
	})
}
