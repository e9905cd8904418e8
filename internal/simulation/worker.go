package simulation

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/domain"
)

type RunStore interface {
	GetSimulationRunByID(id uuid.UUID) (*domain.SimulationRun, error)
	GetCostMatrixByID(id int64) (*domain.CostMatrix, error)
	UpdateSimulationRunResult(run *domain.SimulationRun) error
}

type Notifier interface {
	Notify(run *domain.SimulationRun) error
}

// Worker 处理消息队列中的异步模拟任务
type Worker struct {
	store    RunStore
	notifier Notifier
}

// NewWorker 的 notifier 可以为 nil，此时不发送通知邮件
func NewWorker(store RunStore, notifier Notifier) *Worker {
	return &Worker{
		store:    store,
		notifier: notifier,
	}
}

// Process 处理一条消息，requeue 表示消息是否应该重新入队
func (w *Worker) Process(body []byte) (requeue bool, err error) {
	var msg domain.SimulationMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return false, fmt.Errorf("消息反序列化失败: %w", err)
	}

	run, err := w.store.GetSimulationRunByID(msg.RunID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("模拟 %s 不存在", msg.RunID)
		}
		return true, err
	}

	// 重复投递的消息直接丢弃
	if run.Status == domain.SimulationStatusSucceeded || run.Status == domain.SimulationStatusFailed {
		slog.Info("模拟已经完成，忽略重复的消息", "id", run.ID, "status", run.Status)
		return false, nil
	}

	m, err := w.store.GetCostMatrixByID(run.CostMatrixID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("执行时间表 %d 不存在", run.CostMatrixID)
		}
		return true, err
	}

	run.Status = domain.SimulationStatusRunning
	if err := w.store.UpdateSimulationRunResult(run); err != nil {
		return true, err
	}

	// 失败的模拟同样需要写回数据库
	if err := Run(m, run, ModeAsync); err != nil {
		slog.Error("模拟运行失败", "id", run.ID, "error", err)
	}

	if err := w.store.UpdateSimulationRunResult(run); err != nil {
		return true, err
	}

	if w.notifier != nil && run.NotifyEmail != "" {
		if err := w.notifier.Notify(run); err != nil {
			slog.Error("无法发送通知邮件", "id", run.ID, "to", run.NotifyEmail, "error", err)
		}
	}

	slog.Info("模拟已完成", "id", run.ID, "status", run.Status, "score", run.BestScore, "duration", run.Duration)
	return false, nil
}
