package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/utils"
)

func (h *Handler) CreateCostMatrix(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string    `json:"name" validate:"max=200"`
		Description string    `json:"description" validate:"max=2000"`
		Costs       [][]int64 `json:"costs" validate:"omitempty,dive,min=1,dive,min=0"`
		Random      *struct {
			Tasks    int    `json:"tasks" validate:"required,min=1"`
			Machines int    `json:"machines" validate:"required,min=1"`
			MaxCost  *int   `json:"maxCost" validate:"omitempty,min=0"`
			Seeds    string `json:"seeds"`
		} `json:"random"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if (len(req.Costs) == 0) == (req.Random == nil) {
		h.badRequest(w, r, errors.New("costs 和 random 必须且只能指定其中一个"))
		return
	}

	var m *domain.CostMatrix
	if req.Random != nil {
		// 先检查维度，避免生成过大的执行时间表
		if err := utils.ValidateCostMatrixWithLimits(&domain.CostMatrix{Tasks: req.Random.Tasks, Machines: req.Random.Machines}, h.config); err != nil {
			h.badRequest(w, r, err)
			return
		}

		seeds, err := utils.ParseSeedsOrRandom(req.Random.Seeds)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}

		maxCost := h.config.Simulation.DefaultMaxCost
		if req.Random.MaxCost != nil {
			maxCost = *req.Random.MaxCost
		}

		m = utils.GenerateRandomCostMatrix(req.Random.Tasks, req.Random.Machines, maxCost, scheduler.NewRandom(seeds))
	} else {
		m = &domain.CostMatrix{
			Name:     "执行时间表-" + utils.GenerateRandomID(8),
			Tasks:    len(req.Costs),
			Machines: len(req.Costs[0]),
			Costs:    req.Costs,
		}
	}

	if req.Name != "" {
		m.Name = req.Name
	}
	if req.Description != "" {
		m.Description = req.Description
	}

	if err := utils.ValidateCostMatrixWithLimits(m, h.config); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateCostMatrix(m); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateCostMatrix(m); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "cost_matrices_name_key":
				h.errorResponse(w, r, http.StatusConflict, "执行时间表名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, http.StatusCreated, "创建执行时间表成功", m)
}

func (h *Handler) GetAllCostMatrices(w http.ResponseWriter, r *http.Request) {
	matrices, err := h.repository.GetAllCostMatrices()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, http.StatusOK, "获取所有执行时间表成功", matrices)
}

func (h *Handler) GetCostMatrix(w http.ResponseWriter, r *http.Request) {
	m := r.Context().Value(CostMatrixCtx).(*domain.CostMatrix)

	h.successResponse(w, r, http.StatusOK, "获取执行时间表成功", m)
}

func (h *Handler) DeleteCostMatrix(w http.ResponseWriter, r *http.Request) {
	m := r.Context().Value(CostMatrixCtx).(*domain.CostMatrix)

	if err := h.repository.DeleteCostMatrix(m.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.notFound(w, r, "执行时间表不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, http.StatusOK, "删除执行时间表成功", nil)
}
