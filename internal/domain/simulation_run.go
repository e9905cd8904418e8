package domain

import (
	"time"

	"github.com/google/uuid"
)

type SimulationStatus string

const (
	SimulationStatusPending   SimulationStatus = "pending"
	SimulationStatusRunning   SimulationStatus = "running"
	SimulationStatusSucceeded SimulationStatus = "succeeded"
	SimulationStatusFailed    SimulationStatus = "failed"
)

type SimulationRun struct {
	ID           uuid.UUID        `json:"id"`
	CostMatrixID int64            `json:"costMatrixID"`
	Generations  int              `json:"generations"`
	PoolSize     int              `json:"poolSize"`
	Threads      int              `json:"threads"`
	Patience     int              `json:"patience"`
	Seeds        []uint64         `json:"seeds"`
	Status       SimulationStatus `json:"status"`
	BestScore    float64          `json:"bestScore"`
	Makespan     int64            `json:"makespan"`
	Assignments  []int            `json:"assignments"`
	Duration     time.Duration    `json:"duration"`
	ErrorMessage string           `json:"errorMessage,omitempty"`
	NotifyEmail  string           `json:"notifyEmail,omitempty"`
	Cached       bool             `json:"cached"`
	CreatedAt    time.Time        `json:"createdAt"`
	FinishedAt   *time.Time       `json:"finishedAt"`
}

// SimulationMessage 是投递到消息队列中的异步模拟任务
type SimulationMessage struct {
	RunID uuid.UUID `json:"runID"`
}
