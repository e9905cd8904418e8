package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/config"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/repository"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/seed"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n, tasks, machines, maxCost int
	var seeds, csvPath string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机执行时间表, 2: 从 CSV 文件导入执行时间表)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.IntVar(&tasks, "tasks", 1000, "任务数")
	flag.IntVar(&machines, "machines", 10, "机器数")
	flag.IntVar(&maxCost, "max-cost", 30, "执行时间的最大值")
	flag.StringVar(&seeds, "seeds", "", "随机数种子，多个种子用逗号分隔")
	flag.StringVar(&csvPath, "csv", "", "要导入的 CSV 文件路径")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 || tasks <= 0 || machines <= 0 || maxCost < 0 {
			slog.Error("请输入合法的数量和维度")
			return
		}

		parsed, err := utils.ParseSeedsOrRandom(seeds)
		if err != nil {
			slog.Error("无法解析随机数种子", slog.String("error", err.Error()))
			return
		}

		cnt := seed.SeedRandomCostMatrices(repo, n, tasks, machines, maxCost, scheduler.NewRandom(parsed))
		slog.Info("插入执行时间表成功", slog.Int("count", cnt), slog.String("seeds", utils.FormatSeeds(parsed)))
	case 2:
		if csvPath == "" {
			slog.Error("请指定 CSV 文件路径")
			return
		}

		m, err := seed.SeedCostMatrixFromCSV(repo, csvPath)
		if err != nil {
			slog.Error("无法导入执行时间表", slog.String("error", err.Error()))
			return
		}

		slog.Info("导入执行时间表成功", slog.Int64("id", m.ID), slog.Int("tasks", m.Tasks), slog.Int("machines", m.Machines))
	default:
		slog.Error("指定的操作非法")
	}
}
