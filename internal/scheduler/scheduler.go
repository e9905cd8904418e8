package scheduler

import (
	"errors"
	"log/slog"
	"math/rand/v2"

	"github.com/sourcegraph/conc/pool"
)

// ErrInvalidThreadCount 表示线程数小于 1
var ErrInvalidThreadCount = errors.New("线程数不能小于 1")

// workerSeedCount 是每个线程的随机数生成器所使用的种子个数
const workerSeedCount = 6

// runGenerations 最多进化 generations 代，返回过程中见过的最佳调度
// 连续超过 patience 代最佳适应度没有提升时提前停止
func runGenerations(matrix *CostMatrix, genePool []*Schedule, generations, patience int, rng *rand.Rand) *Schedule {
	if len(genePool) == 0 {
		// 理论上不会运行到这个地方
		slog.Warn("种群为空，返回默认调度")
		return &Schedule{}
	}

	// 这里需要深拷贝，因为最佳个体之后可能会被变异
	best := genePool[0].Clone()
	bestScore := best.Score(matrix)
	unchanged := 0

	for range generations {
		genePool = runSingleGeneration(matrix, genePool, rng)

		front := genePool[0]
		if front.Score(matrix) > bestScore {
			bestScore = front.Score(matrix)
			best = front.Clone()
			unchanged = 0
		} else {
			unchanged++
		}

		if unchanged > patience {
			break
		}
	}

	return best
}

// subPoolSize 计算第 worker 个线程的种群大小
// 总种群平均分配给每个线程，余数全部分给最后一个线程
func subPoolSize(poolSize, threads, worker int) int {
	size := poolSize / threads
	if worker == threads-1 {
		size += poolSize % threads
	}
	return size
}

// RunSimulation 运行遗传算法并返回适应度最高的调度
//
// 单线程时直接使用传入的随机数生成器；多线程时每个线程拥有独立的种群，
// 其随机数生成器由 rng 事先生成的种子构造，因此对固定的初始种子结果可复现，
// 与线程的调度顺序无关。
func RunSimulation(matrix *CostMatrix, params Parameters, rng *rand.Rand) (*Schedule, error) {
	if params.Threads < 1 {
		return nil, ErrInvalidThreadCount
	}

	if params.Threads == 1 {
		genePool := populateGenePool(matrix, params.PoolSize, rng)
		return runGenerations(matrix, genePool, params.Generations, params.patience(), rng), nil
	}

	winners := make([]*Schedule, params.Threads)
	p := pool.New().WithMaxGoroutines(params.Threads)

	for i := range params.Threads {
		// 种子必须在启动线程之前生成，线程内部不能再访问共享的 rng
		seeds := make([]uint64, workerSeedCount)
		for j := range seeds {
			seeds[j] = uint64(uniformInt(rng, 0, 100))
		}
		size := subPoolSize(params.PoolSize, params.Threads, i)

		p.Go(func() {
			workerRng := NewRandom(seeds)
			genePool := populateGenePool(matrix, size, workerRng)
			winners[i] = runGenerations(matrix, genePool, params.Generations, params.patience(), workerRng)
		})
	}

	p.Wait()

	// 取适应度严格最高的调度，相同时保留先出现的
	best := winners[0]
	for _, w := range winners[1:] {
		if w.Score(matrix) > best.Score(matrix) {
			best = w
		}
	}

	return best, nil
}
