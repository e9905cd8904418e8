package scheduler

import (
	"math/rand/v2"
	"slices"
	"sort"
)

// Makespan 计算调度的最大完工时间，即负载最重的机器上所有任务执行时间之和
// 没有分配任务的机器负载为 0
func (s *Schedule) Makespan(matrix *CostMatrix) int64 {
	loads := make([]int64, matrix.Machines())
	for task, machine := range s.assignments {
		loads[machine] += matrix.Cost(task, machine)
	}

	var makespan int64
	for _, load := range loads {
		makespan = max(makespan, load)
	}
	return makespan
}

/**
 * 计算调度的适应度
 * score = 1000 / (makespan + 1)
 * 其中:
 * 		1. makespan 越小适应度越高，makespan 为 0 时取到最大值 1000
 * 		2. 没有任务的调度适应度固定为 0
 * 结果会缓存在调度上，直到下一次修改分配
 */
func (s *Schedule) Score(matrix *CostMatrix) float64 {
	if s.hasCache {
		return s.cachedScore
	}

	score := 0.0
	if len(s.assignments) > 0 {
		score = maxScore / float64(s.Makespan(matrix)+1)
	}

	s.cachedScore = score
	s.hasCache = true
	return score
}

// populateGenePool 随机生成初始种群，每个任务等概率地分配到任意一台机器
// 返回的种群按适应度降序排列
func populateGenePool(matrix *CostMatrix, poolSize int, rng *rand.Rand) []*Schedule {
	genePool := make([]*Schedule, 0, poolSize)

	for range poolSize {
		s := NewSchedule(matrix.Tasks())
		for task := range matrix.Tasks() {
			s.SetTaskAssignment(task, uniformInt(rng, 0, matrix.Machines()-1))
		}
		genePool = append(genePool, s)
	}

	slices.SortStableFunc(genePool, func(a, b *Schedule) int {
		sa, sb := a.Score(matrix), b.Score(matrix)
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		}
		return 0
	})

	return genePool
}

// 单点交叉
// 在 [0, len(p1)-1] 中随机选择交叉点，交叉点之前取自 p1，之后取自 p2
func crossOver(p1, p2 *Schedule, rng *rand.Rand) *Schedule {
	if p1.Tasks() == 0 {
		return p1.Clone()
	}
	return crossOverAt(p1, p2, uniformInt(rng, 0, p1.Tasks()-1))
}

// crossOverAt 在固定的交叉点 point 处交叉，不修改任何一个父本
func crossOverAt(p1, p2 *Schedule, point int) *Schedule {
	child := p1.Clone()

	// 按理来说两个父本的长度应该是相等的，这里只是以防万一
	for i := point; i < child.Tasks() && i < p2.Tasks(); i++ {
		child.SetTaskAssignment(i, p2.TaskAssignment(i))
	}

	return child
}

// 变异
// 随机选择一个任务，把它重新分配到一台随机的机器上
func mutate(matrix *CostMatrix, s *Schedule, rng *rand.Rand) {
	if s.Tasks() == 0 {
		return
	}
	task := uniformInt(rng, 0, s.Tasks()-1)
	machine := uniformInt(rng, 0, matrix.Machines()-1)
	s.SetTaskAssignment(task, machine)
}

// selectByRoulette 使用轮盘赌选择父本
// totals 是适应度的前缀和，返回第一个不小于随机值的位置
func selectByRoulette(totals []float64, rng *rand.Rand) int {
	pick := rng.Float64() * totals[len(totals)-1]
	idx := sort.SearchFloat64s(totals, pick)

	// 理论上不会越界，这里只是以防浮点误差
	return min(idx, len(totals)-1)
}

// runSingleGeneration 执行一代进化：先交叉产生新个体，再对已有个体变异
//
// 调用前种群必须按适应度降序排列，调用后仍然保持这一顺序且大小不变。
// 每次只修正发生变化的个体的位置，而不对整个种群重新排序。
func runSingleGeneration(matrix *CostMatrix, genePool []*Schedule, rng *rand.Rand) []*Schedule {
	if len(genePool) == 0 {
		return genePool
	}

	maxCrossovers := min(10, len(genePool)/2+1)
	maxMutations := min(25, len(genePool)/3+1)

	// 交叉
	crossovers := uniformInt(rng, 0, maxCrossovers)
	if crossovers > 0 && crossovers < len(genePool) {
		// 淘汰最差的 crossovers 个个体，为新个体腾出位置
		keep := len(genePool) - crossovers
		clear(genePool[keep:])
		genePool = genePool[:keep]

		// 父本从淘汰后的种群中选择，新插入的个体不参与本代的选择
		parents := slices.Clone(genePool)
		totals := make([]float64, len(parents))
		sum := 0.0
		for i, p := range parents {
			sum += p.Score(matrix)
			totals[i] = sum
		}

		for range crossovers {
			p1 := parents[selectByRoulette(totals, rng)]
			p2 := parents[selectByRoulette(totals, rng)]

			child := crossOver(p1, p2, rng)
			pos := insertionPoint(matrix, genePool, child.Score(matrix))
			genePool = slices.Insert(genePool, pos, child)
		}
	}

	// 变异
	mutations := uniformInt(rng, 0, maxMutations)
	for range mutations {
		i := uniformInt(rng, 0, len(genePool)-1)
		s := genePool[i]
		mutate(matrix, s, rng)

		// 把变异后的个体移动到正确的位置，其余个体相对顺序不变
		genePool = slices.Delete(genePool, i, i+1)
		pos := insertionPoint(matrix, genePool, s.Score(matrix))
		genePool = slices.Insert(genePool, pos, s)
	}

	return genePool
}
