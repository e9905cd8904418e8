package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/report"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/utils"
)

func main() {
	var (
		seeds        = flag.String("seeds", "", "随机数种子，多个种子用逗号分隔，为空时随机生成")
		minPoolSize  = flag.Int("min-pool-size", 1000, "最小种群大小")
		maxPoolSize  = flag.Int("max-pool-size", 20000, "最大种群大小")
		poolSizeStep = flag.Int("pool-size-step", 1000, "种群大小的步长")
		tasks        = flag.Int("tasks", 1000, "任务数")
		machines     = flag.Int("machines", 10, "机器数")
		generations  = flag.Int("generations", 1000, "最大迭代代数")
		threads      = flag.Int("threads", 1, "线程数")
		maxCost      = flag.Int("max-cost", 30, "执行时间的最大值")
		patience     = flag.Int("patience", scheduler.DefaultPatience, "连续多少代没有改进时提前停止")
		xlsxPath     = flag.String("xlsx", "", "把结果写入 xlsx 文件")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *minPoolSize < 1 || *maxPoolSize < *minPoolSize || *poolSizeStep < 1 {
		logger.Error("种群大小范围非法", "min", *minPoolSize, "max", *maxPoolSize, "step", *poolSizeStep)
		os.Exit(2)
	}
	if *tasks < 1 || *machines < 1 || *generations < 1 || *threads < 1 || *maxCost < 0 || *patience < 0 {
		logger.Error("参数非法")
		os.Exit(2)
	}

	parsed, err := utils.ParseSeedsOrRandom(*seeds)
	if err != nil {
		logger.Error("无法解析随机数种子", "error", err)
		os.Exit(2)
	}
	logger.Info("随机数种子", "seeds", utils.FormatSeeds(parsed))

	// 同一个随机数生成器先用于生成执行时间表，再依次用于每个种群大小的模拟
	rng := scheduler.NewRandom(parsed)
	matrix, err := scheduler.NewCostMatrix(utils.GenerateRandomMatrix(*tasks, *machines, *maxCost, rng))
	if err != nil {
		logger.Error("无法生成执行时间表", "error", err)
		os.Exit(1)
	}

	rep := &report.Report{
		Seeds:       parsed,
		Tasks:       *tasks,
		Machines:    *machines,
		Generations: *generations,
		Threads:     *threads,
	}
	var best *scheduler.Schedule

	if err := report.WriteRowHeader(os.Stdout); err != nil {
		logger.Error("无法输出结果", "error", err)
		os.Exit(1)
	}

	for poolSize := *minPoolSize; poolSize <= *maxPoolSize; poolSize += *poolSizeStep {
		if poolSize < *threads {
			logger.Warn("种群大小小于线程数，部分线程的种群为空", "pool", poolSize, "threads", *threads)
		}

		params := scheduler.Parameters{
			Generations: *generations,
			PoolSize:    poolSize,
			Threads:     *threads,
			Patience:    *patience,
		}

		start := time.Now()
		result, err := scheduler.RunSimulation(matrix, params, rng)
		if err != nil {
			logger.Error("模拟失败", "pool", poolSize, "error", err)
			os.Exit(1)
		}
		row := report.Row{
			PoolSize: poolSize,
			Score:    result.Score(matrix),
			Makespan: result.Makespan(matrix),
			Duration: time.Since(start),
		}

		if err := report.WriteRow(os.Stdout, row); err != nil {
			logger.Error("无法输出结果", "error", err)
			os.Exit(1)
		}
		rep.Rows = append(rep.Rows, row)

		if best == nil || row.Score > best.Score(matrix) {
			best = result
		}
	}

	if *xlsxPath == "" {
		return
	}

	if best != nil {
		rep.BestAssignments = best.Assignments()
		rep.BestCosts = make([]int64, best.Tasks())
		for t := range rep.BestCosts {
			rep.BestCosts[t] = matrix.Cost(t, best.TaskAssignment(t))
		}
	}

	if err := report.WriteXLSX(*xlsxPath, rep); err != nil {
		logger.Error("无法写入 xlsx 文件", "path", *xlsxPath, "error", err)
		os.Exit(1)
	}
	logger.Info("结果已写入 xlsx 文件", "path", *xlsxPath)
}
