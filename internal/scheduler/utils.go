package scheduler

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mathext/prng"
)

// NewRandom 用一组种子构造可复现的随机数生成器（64 位梅森旋转）
// 相同的种子序列总是产生相同的随机序列
func NewRandom(seeds []uint64) *rand.Rand {
	src := prng.NewMT19937_64()
	src.SeedFromKeys(seeds)
	return rand.New(src)
}

// uniformInt 在闭区间 [lo, hi] 上均匀采样
func uniformInt(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

// insertionPoint 返回第一个适应度不大于 score 的位置
// genePool 必须按适应度降序排列
func insertionPoint(matrix *CostMatrix, genePool []*Schedule, score float64) int {
	return sort.Search(len(genePool), func(i int) bool {
		return genePool[i].Score(matrix) <= score
	})
}
