package simulation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/utils"
)

// 同一个执行时间表、相同参数和种子的模拟结果是确定的，因此可以直接缓存
type cachedResult struct {
	BestScore   float64       `json:"bestScore"`
	Makespan    int64         `json:"makespan"`
	Assignments []int         `json:"assignments"`
	Duration    time.Duration `json:"duration"`
}

// KV 是结果缓存用到的 redis 命令，*redis.Client 实现了它
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type ResultCache struct {
	rdb        KV
	expiration time.Duration
}

func NewResultCache(rdb KV, expiration time.Duration) *ResultCache {
	return &ResultCache{
		rdb:        rdb,
		expiration: expiration,
	}
}

func CacheKey(run *domain.SimulationRun) string {
	params := ParametersOf(run)
	patience := params.Patience
	if patience <= 0 {
		patience = scheduler.DefaultPatience
	}
	return fmt.Sprintf("simulation:%d:g%d:p%d:t%d:c%d:s%s",
		run.CostMatrixID, params.Generations, params.PoolSize, params.Threads, patience, utils.FormatSeeds(run.Seeds))
}

// Get 查询缓存，命中时把结果写回 run 并返回 true
func (c *ResultCache) Get(ctx context.Context, run *domain.SimulationRun) (bool, error) {
	val, err := c.rdb.Get(ctx, CacheKey(run)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.ResultCacheLookups.WithLabelValues("miss").Inc()
			return false, nil
		}
		return false, err
	}

	var res cachedResult
	if err := json.Unmarshal(val, &res); err != nil {
		return false, err
	}
	metrics.ResultCacheLookups.WithLabelValues("hit").Inc()

	now := time.Now()
	run.Status = domain.SimulationStatusSucceeded
	run.BestScore = res.BestScore
	run.Makespan = res.Makespan
	run.Assignments = res.Assignments
	run.Duration = res.Duration
	run.Cached = true
	run.FinishedAt = &now
	return true, nil
}

func (c *ResultCache) Set(ctx context.Context, run *domain.SimulationRun) error {
	val, err := json.Marshal(cachedResult{
		BestScore:   run.BestScore,
		Makespan:    run.Makespan,
		Assignments: run.Assignments,
		Duration:    run.Duration,
	})
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, CacheKey(run), val, c.expiration).Err()
}
