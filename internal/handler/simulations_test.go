package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/simulation"
)

type fakeStore struct {
	matrices map[int64]*domain.CostMatrix
	runs     map[uuid.UUID]*domain.SimulationRun
	inserted []*domain.SimulationRun
	updated  []domain.SimulationStatus
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		matrices: map[int64]*domain.CostMatrix{
			1: {ID: 1, Name: "2x2", Tasks: 2, Machines: 2, Costs: [][]int64{{1, 5}, {5, 1}}},
			// 行长度不一致，运行时会失败
			2: {ID: 2, Name: "ragged", Tasks: 2, Machines: 2, Costs: [][]int64{{1, 5}, {5}}},
		},
		runs: map[uuid.UUID]*domain.SimulationRun{},
	}
}

func (s *fakeStore) CreateCostMatrix(m *domain.CostMatrix) error {
	m.ID = int64(len(s.matrices) + 1)
	s.matrices[m.ID] = m
	return nil
}

func (s *fakeStore) GetCostMatrixByID(id int64) (*domain.CostMatrix, error) {
	m, ok := s.matrices[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return m, nil
}

func (s *fakeStore) GetAllCostMatrices() ([]*domain.CostMatrix, error) {
	matrices := []*domain.CostMatrix{}
	for _, m := range s.matrices {
		matrices = append(matrices, m)
	}
	return matrices, nil
}

func (s *fakeStore) DeleteCostMatrix(id int64) error {
	if _, ok := s.matrices[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.matrices, id)
	return nil
}

func (s *fakeStore) InsertSimulationRun(run *domain.SimulationRun) error {
	s.runs[run.ID] = run
	s.inserted = append(s.inserted, run)
	return nil
}

func (s *fakeStore) UpdateSimulationRunResult(run *domain.SimulationRun) error {
	s.updated = append(s.updated, run.Status)
	return nil
}

func (s *fakeStore) GetSimulationRunByID(id uuid.UUID) (*domain.SimulationRun, error) {
	run, ok := s.runs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return run, nil
}

func (s *fakeStore) GetSimulationRunsByCostMatrixID(costMatrixID int64) ([]*domain.SimulationRun, error) {
	runs := []*domain.SimulationRun{}
	for _, run := range s.inserted {
		if run.CostMatrixID == costMatrixID {
			runs = append(runs, run)
		}
	}
	return runs, nil
}

type fakePublisher struct {
	err       error
	keys      []string
	published []amqp.Publishing
}

func (p *fakePublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	p.published = append(p.published, msg)
	return nil
}

type fakeCache struct {
	results map[string]domain.SimulationRun
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{results: map[string]domain.SimulationRun{}}
}

func (c *fakeCache) Get(ctx context.Context, run *domain.SimulationRun) (bool, error) {
	res, ok := c.results[simulation.CacheKey(run)]
	if !ok {
		return false, nil
	}
	run.Status = domain.SimulationStatusSucceeded
	run.BestScore = res.BestScore
	run.Makespan = res.Makespan
	run.Assignments = res.Assignments
	run.Cached = true
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, run *domain.SimulationRun) error {
	c.results[simulation.CacheKey(run)] = *run
	c.sets++
	return nil
}

const simulationBody = `{"generations":300,"poolSize":60,"threads":1,"patience":500,"seeds":"1,2,3"}`

func TestRunSimulation_CacheMiss(t *testing.T) {
	store, cache := newFakeStore(), newFakeCache()
	h := newTestHandlerWith(t, store, &fakePublisher{}, cache)
	token := issueToken(t, h)

	rec, resp := do(t, h, http.MethodPost, "/matrices/1/simulations", simulationBody, token)

	require.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "succeeded", data["status"])
	assert.Equal(t, false, data["cached"])

	assert.Equal(t, 1, cache.sets)
	require.Len(t, store.inserted, 1)
	run := store.inserted[0]
	assert.Equal(t, domain.SimulationStatusSucceeded, run.Status)
	assert.Equal(t, []uint64{1, 2, 3}, run.Seeds)
	assert.Greater(t, run.BestScore, 0.0)
	assert.Equal(t, run.BestScore, cache.results[simulation.CacheKey(run)].BestScore)
}

func TestRunSimulation_CacheHit(t *testing.T) {
	store, cache := newFakeStore(), newFakeCache()
	key := simulation.CacheKey(&domain.SimulationRun{
		CostMatrixID: 1,
		Generations:  300,
		PoolSize:     60,
		Threads:      1,
		Patience:     500,
		Seeds:        []uint64{1, 2, 3},
	})
	cache.results[key] = domain.SimulationRun{BestScore: 123, Makespan: 7, Assignments: []int{1, 0}}

	h := newTestHandlerWith(t, store, &fakePublisher{}, cache)
	token := issueToken(t, h)

	rec, resp := do(t, h, http.MethodPost, "/matrices/1/simulations", simulationBody, token)

	require.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, true, data["cached"])
	assert.Equal(t, 123.0, data["bestScore"])

	assert.Zero(t, cache.sets)
	require.Len(t, store.inserted, 1)
	assert.True(t, store.inserted[0].Cached)
	assert.Equal(t, []int{1, 0}, store.inserted[0].Assignments)
}

func TestRunSimulation_FailedRunIsStored(t *testing.T) {
	store, cache := newFakeStore(), newFakeCache()
	h := newTestHandlerWith(t, store, &fakePublisher{}, cache)
	token := issueToken(t, h)

	rec, _ := do(t, h, http.MethodPost, "/matrices/2/simulations", simulationBody, token)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Zero(t, cache.sets)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, domain.SimulationStatusFailed, store.inserted[0].Status)
	assert.NotEmpty(t, store.inserted[0].ErrorMessage)
	assert.NotNil(t, store.inserted[0].FinishedAt)
}

func TestRunSimulation_BadRequest(t *testing.T) {
	store := newFakeStore()
	h := newTestHandlerWith(t, store, &fakePublisher{}, newFakeCache())
	token := issueToken(t, h)

	tests := []struct {
		name string
		body string
	}{
		{"zero threads", `{"generations":10,"poolSize":10,"threads":0}`},
		{"pool smaller than threads", `{"generations":10,"poolSize":2,"threads":3}`},
		{"too many generations", `{"generations":1001,"poolSize":10,"threads":1}`},
		{"bad seeds", `{"generations":10,"poolSize":10,"threads":1,"seeds":"a"}`},
		{"bad email", `{"generations":10,"poolSize":10,"threads":1,"notifyEmail":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := do(t, h, http.MethodPost, "/matrices/1/simulations", tt.body, token)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Empty(t, store.inserted)

	rec, _ := do(t, h, http.MethodPost, "/matrices/99/simulations", simulationBody, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitSimulation(t *testing.T) {
	store, publisher := newFakeStore(), &fakePublisher{}
	h := newTestHandlerWith(t, store, publisher, newFakeCache())
	token := issueToken(t, h)

	rec, _ := do(t, h, http.MethodPost, "/matrices/1/simulations/async", simulationBody, token)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, store.inserted, 1)
	run := store.inserted[0]
	assert.Equal(t, domain.SimulationStatusPending, run.Status)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, []string{"simulation_queue"}, publisher.keys)
	assert.Equal(t, amqp.Persistent, publisher.published[0].DeliveryMode)

	var msg domain.SimulationMessage
	require.NoError(t, json.Unmarshal(publisher.published[0].Body, &msg))
	assert.Equal(t, run.ID, msg.RunID)

	rec, resp := do(t, h, http.MethodGet, "/simulations/"+run.ID.String(), "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pending", resp.Data.(map[string]any)["status"])
}

func TestSubmitSimulation_PublishFailure(t *testing.T) {
	store := newFakeStore()
	publisher := &fakePublisher{err: errors.New("channel closed")}
	h := newTestHandlerWith(t, store, publisher, newFakeCache())
	token := issueToken(t, h)

	rec, _ := do(t, h, http.MethodPost, "/matrices/1/simulations/async", simulationBody, token)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Len(t, store.inserted, 1)
	run := store.inserted[0]
	assert.Equal(t, domain.SimulationStatusFailed, run.Status)
	assert.Equal(t, "无法投递到消息队列", run.ErrorMessage)
	assert.NotNil(t, run.FinishedAt)
	assert.Equal(t, []domain.SimulationStatus{domain.SimulationStatusFailed}, store.updated)
}
