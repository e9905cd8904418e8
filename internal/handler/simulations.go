package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/simulation"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/utils"
)

type simulationRequest struct {
	Generations int    `json:"generations" validate:"required,min=1"`
	PoolSize    int    `json:"poolSize" validate:"required,min=1"`
	Threads     int    `json:"threads" validate:"required,min=1"`
	Patience    int    `json:"patience" validate:"min=0"`
	Seeds       string `json:"seeds"`
	NotifyEmail string `json:"notifyEmail" validate:"omitempty,email"`
}

// readSimulationRequest 解析并校验请求，返回一个尚未运行的模拟
func (h *Handler) readSimulationRequest(w http.ResponseWriter, r *http.Request, m *domain.CostMatrix) (*domain.SimulationRun, bool) {
	var req simulationRequest

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return nil, false
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return nil, false
	}

	params := scheduler.Parameters{
		Generations: req.Generations,
		PoolSize:    req.PoolSize,
		Threads:     req.Threads,
		Patience:    req.Patience,
	}
	if err := utils.ValidateParametersWithLimits(params, h.config); err != nil {
		h.badRequest(w, r, err)
		return nil, false
	}

	seeds, err := utils.ParseSeedsOrRandom(req.Seeds)
	if err != nil {
		h.badRequest(w, r, err)
		return nil, false
	}

	return &domain.SimulationRun{
		ID:           uuid.New(),
		CostMatrixID: m.ID,
		Generations:  params.Generations,
		PoolSize:     params.PoolSize,
		Threads:      params.Threads,
		Patience:     params.Patience,
		Seeds:        seeds,
		Status:       domain.SimulationStatusPending,
		Assignments:  []int{},
		NotifyEmail:  req.NotifyEmail,
	}, true
}

// RunSimulation 同步运行模拟，相同的参数和种子会直接返回缓存的结果
func (h *Handler) RunSimulation(w http.ResponseWriter, r *http.Request) {
	m := r.Context().Value(CostMatrixCtx).(*domain.CostMatrix)

	run, ok := h.readSimulationRequest(w, r, m)
	if !ok {
		return
	}

	hit, err := h.resultCache.Get(r.Context(), run)
	if err != nil {
		// 缓存不可用时直接运行
		slog.Warn("无法读取模拟结果缓存", "error", err)
	}

	if !hit {
		run.Status = domain.SimulationStatusRunning
		if err := simulation.Run(m, run, simulation.ModeSync); err != nil {
			if errors.Is(err, scheduler.ErrInvalidThreadCount) {
				h.badRequest(w, r, err)
				return
			}

			// 失败的模拟同样保存下来，与异步模拟保持一致
			if insertErr := h.repository.InsertSimulationRun(run); insertErr != nil {
				slog.Error("无法保存失败的模拟", "id", run.ID, "error", insertErr)
			}
			h.internalServerError(w, r, err)
			return
		}

		if err := h.resultCache.Set(r.Context(), run); err != nil {
			slog.Warn("无法写入模拟结果缓存", "error", err)
		}
	}

	if err := h.repository.InsertSimulationRun(run); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, http.StatusOK, "模拟完成", run)
}

// SubmitSimulation 把模拟投递到消息队列，由 worker 异步运行
func (h *Handler) SubmitSimulation(w http.ResponseWriter, r *http.Request) {
	m := r.Context().Value(CostMatrixCtx).(*domain.CostMatrix)

	run, ok := h.readSimulationRequest(w, r, m)
	if !ok {
		return
	}

	if err := h.repository.InsertSimulationRun(run); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	body, err := json.Marshal(domain.SimulationMessage{RunID: run.ID})
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.simulationChannel.PublishWithContext(
		ctx,
		"",
		h.config.RabbitMQ.Queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    run.ID.String(),
			Body:         body,
		},
	); err != nil {
		// 投递失败时把模拟标记为失败，避免它永远处于等待状态
		now := time.Now()
		run.Status = domain.SimulationStatusFailed
		run.ErrorMessage = "无法投递到消息队列"
		run.FinishedAt = &now
		if updateErr := h.repository.UpdateSimulationRunResult(run); updateErr != nil {
			slog.Error("无法更新模拟状态", "id", run.ID, "error", updateErr)
		}
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, http.StatusAccepted, "模拟已提交", run)
}

func (h *Handler) GetCostMatrixSimulations(w http.ResponseWriter, r *http.Request) {
	m := r.Context().Value(CostMatrixCtx).(*domain.CostMatrix)

	runs, err := h.repository.GetSimulationRunsByCostMatrixID(m.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, http.StatusOK, "获取模拟记录成功", runs)
}

func (h *Handler) GetSimulation(w http.ResponseWriter, r *http.Request) {
	run := r.Context().Value(SimulationRunCtx).(*domain.SimulationRun)

	h.successResponse(w, r, http.StatusOK, "获取模拟成功", run)
}
