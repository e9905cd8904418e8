package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/utils"
)

type Store interface {
	CreateCostMatrix(m *domain.CostMatrix) error
}

// SeedRandomCostMatrices 插入 n 个随机执行时间表，返回成功插入的数量
func SeedRandomCostMatrices(s Store, n, tasks, machines, maxCost int, rng *rand.Rand) int {
	cnt := 0
	for i := 0; i < n; i++ {
		m := utils.GenerateRandomCostMatrix(tasks, machines, maxCost, rng)
		if err := s.CreateCostMatrix(m); err != nil {
			slog.Error("无法插入执行时间表", "error", err)
			continue
		}

		cnt++
	}

	return cnt
}

// ReadCostMatrixCSV 读取 CSV 格式的执行时间表，每一行是一个任务，每一列是一台机器
// 如果第一行不是数字，则视为表头
func ReadCostMatrixCSV(r io.Reader) ([][]int64, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	var costs [][]int64
	for line := 1; ; line++ {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}

		values := make([]int64, len(row))
		for i, field := range row {
			v, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
			if err != nil {
				if line == 1 {
					values = nil
					break
				}
				return nil, fmt.Errorf("第 %d 行第 %d 列不是整数: %q", line, i+1, field)
			}
			values[i] = v
		}

		if values != nil {
			costs = append(costs, values)
		}
	}

	if len(costs) == 0 {
		return nil, errors.New("文件中没有数据")
	}

	return costs, nil
}

// SeedCostMatrixFromCSV 从 CSV 文件中导入一个执行时间表
func SeedCostMatrixFromCSV(s Store, path string) (*domain.CostMatrix, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	costs, err := ReadCostMatrixCSV(file)
	if err != nil {
		return nil, err
	}

	m := &domain.CostMatrix{
		Name:        strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Description: "从 " + filepath.Base(path) + " 导入",
		Tasks:       len(costs),
		Machines:    len(costs[0]),
		Costs:       costs,
	}
	if err := utils.ValidateCostMatrix(m); err != nil {
		return nil, err
	}

	if err := s.CreateCostMatrix(m); err != nil {
		return nil, err
	}

	return m, nil
}
