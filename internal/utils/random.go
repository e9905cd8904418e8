package utils

import (
	"fmt"
	"math/rand/v2"

	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/domain"
)

var letters = []rune("abcdefghijklmnopqrstuvwxyz0123456789")

// GenerateRandomMatrix 生成 tasks × machines 的执行时间表，每个元素在 [0, maxCost] 中均匀采样
func GenerateRandomMatrix(tasks, machines, maxCost int, rng *rand.Rand) [][]int64 {
	costs := make([][]int64, tasks)
	for t := range costs {
		costs[t] = make([]int64, machines)
		for m := range costs[t] {
			costs[t][m] = int64(rng.IntN(maxCost + 1))
		}
	}
	return costs
}

// GenerateRandomSeeds 在没有指定种子时随机生成 n 个种子
func GenerateRandomSeeds(n int) []uint64 {
	seeds := make([]uint64, n)
	for i := range seeds {
		seeds[i] = uint64(rand.Uint32())
	}
	return seeds
}

func GenerateRandomID(length int) string {
	id := make([]rune, length)
	for i := range id {
		id[i] = letters[rand.IntN(len(letters))]
	}
	return string(id)
}

func GenerateRandomCostMatrix(tasks, machines, maxCost int, rng *rand.Rand) *domain.CostMatrix {
	return &domain.CostMatrix{
		Name:        fmt.Sprintf("随机执行时间表-%dx%d-%s", tasks, machines, GenerateRandomID(6)),
		Description: fmt.Sprintf("执行时间在 [0, %d] 中均匀采样", maxCost),
		Tasks:       tasks,
		Machines:    machines,
		Costs:       GenerateRandomMatrix(tasks, machines, maxCost, rng),
	}
}
