package utils

import (
	"errors"
	"fmt"

	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/config"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/scheduler"
)

// ValidateCostMatrix 检查执行时间表的维度和内容是否一致
func ValidateCostMatrix(m *domain.CostMatrix) error {
	if m.Tasks != len(m.Costs) {
		return fmt.Errorf("任务数为 %d，但执行时间表有 %d 行", m.Tasks, len(m.Costs))
	}

	for t, row := range m.Costs {
		if len(row) != m.Machines {
			return fmt.Errorf("任务 %d 的执行时间个数为 %d，应为 %d", t, len(row), m.Machines)
		}
		for j, c := range row {
			if c < 0 {
				return fmt.Errorf("任务 %d 在机器 %d 上的执行时间不能为负数", t, j)
			}
		}
	}

	return nil
}

func ValidateCostMatrixWithLimits(m *domain.CostMatrix, cfg *config.Config) error {
	if m.Tasks < 1 || m.Machines < 1 {
		return errors.New("任务数和机器数都必须大于 0")
	}
	if m.Tasks > cfg.Simulation.MaxTasks {
		return fmt.Errorf("任务数不能超过 %d", cfg.Simulation.MaxTasks)
	}
	if m.Machines > cfg.Simulation.MaxMachines {
		return fmt.Errorf("机器数不能超过 %d", cfg.Simulation.MaxMachines)
	}
	return nil
}

func ValidateParametersWithLimits(params scheduler.Parameters, cfg *config.Config) error {
	if params.PoolSize > cfg.Simulation.MaxPoolSize {
		return fmt.Errorf("种群大小不能超过 %d", cfg.Simulation.MaxPoolSize)
	}
	if params.Generations > cfg.Simulation.MaxGenerations {
		return fmt.Errorf("迭代次数不能超过 %d", cfg.Simulation.MaxGenerations)
	}
	if params.Threads > cfg.Simulation.MaxThreads {
		return fmt.Errorf("线程数不能超过 %d", cfg.Simulation.MaxThreads)
	}
	if params.PoolSize < params.Threads {
		return errors.New("种群大小不能小于线程数")
	}
	return nil
}

// ToSchedulerMatrix 将领域模型转换为遗传算法使用的执行时间表
func ToSchedulerMatrix(m *domain.CostMatrix) (*scheduler.CostMatrix, error) {
	if err := ValidateCostMatrix(m); err != nil {
		return nil, err
	}
	return scheduler.NewCostMatrix(m.Costs)
}
