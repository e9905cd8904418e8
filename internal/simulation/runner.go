package simulation

import (
	"strconv"
	"time"

	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/utils"
)

const (
	ModeSync  = "sync"
	ModeAsync = "async"
)

func ParametersOf(run *domain.SimulationRun) scheduler.Parameters {
	return scheduler.Parameters{
		Generations: run.Generations,
		PoolSize:    run.PoolSize,
		Threads:     run.Threads,
		Patience:    run.Patience,
	}
}

// Run 在执行时间表 m 上运行遗传算法，并把结果写回 run
// 失败时 run 的状态被设置为 failed，同时返回错误
func Run(m *domain.CostMatrix, run *domain.SimulationRun, mode string) error {
	if err := runOnce(m, run); err != nil {
		now := time.Now()
		run.Status = domain.SimulationStatusFailed
		run.ErrorMessage = err.Error()
		run.FinishedAt = &now
		metrics.SimulationsTotal.WithLabelValues(mode, string(run.Status)).Inc()
		return err
	}

	metrics.SimulationsTotal.WithLabelValues(mode, string(run.Status)).Inc()
	metrics.SimulationDuration.Observe(run.Duration.Seconds())
	metrics.BestScore.WithLabelValues(strconv.FormatInt(m.ID, 10)).Set(run.BestScore)
	return nil
}

func runOnce(m *domain.CostMatrix, run *domain.SimulationRun) error {
	matrix, err := utils.ToSchedulerMatrix(m)
	if err != nil {
		return err
	}

	start := time.Now()
	best, err := scheduler.RunSimulation(matrix, ParametersOf(run), scheduler.NewRandom(run.Seeds))
	if err != nil {
		return err
	}
	now := time.Now()

	run.Status = domain.SimulationStatusSucceeded
	run.BestScore = best.Score(matrix)
	run.Makespan = best.Makespan(matrix)
	run.Assignments = best.Assignments()
	run.Duration = now.Sub(start)
	run.ErrorMessage = ""
	run.FinishedAt = &now
	return nil
}
