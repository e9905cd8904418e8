package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/config"
	"github.com/sysu-ecnc-dev/makespan-scheduler/backend/internal/domain"
)

// Store 由 repository.Repository 实现
type Store interface {
	CreateCostMatrix(m *domain.CostMatrix) error
	GetCostMatrixByID(id int64) (*domain.CostMatrix, error)
	GetAllCostMatrices() ([]*domain.CostMatrix, error)
	DeleteCostMatrix(id int64) error
	InsertSimulationRun(run *domain.SimulationRun) error
	UpdateSimulationRunResult(run *domain.SimulationRun) error
	GetSimulationRunByID(id uuid.UUID) (*domain.SimulationRun, error)
	GetSimulationRunsByCostMatrixID(costMatrixID int64) ([]*domain.SimulationRun, error)
}

// Publisher 由 *amqp.Channel 实现
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// ResultCache 由 simulation.ResultCache 实现
type ResultCache interface {
	Get(ctx context.Context, run *domain.SimulationRun) (bool, error)
	Set(ctx context.Context, run *domain.SimulationRun) error
}

type Handler struct {
	validate          *validator.Validate
	config            *config.Config
	repository        Store
	translator        ut.Translator
	simulationChannel Publisher
	resultCache       ResultCache

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo Store, simulationCh Publisher, cache ResultCache) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:          validate,
		config:            cfg,
		repository:        repo,
		translator:        trans,
		simulationChannel: simulationCh,
		resultCache:       cache,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Handle("/metrics", promhttp.Handler())

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/token", h.IssueToken)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在认证后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/matrices", func(r chi.Router) {
			r.Post("/", h.CreateCostMatrix)
			r.Get("/", h.GetAllCostMatrices)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.costMatrix)
				r.Get("/", h.GetCostMatrix)
				r.Delete("/", h.DeleteCostMatrix)
				r.Route("/simulations", func(r chi.Router) {
					r.Post("/", h.RunSimulation)
					r.Post("/async", h.SubmitSimulation)
					r.Get("/", h.GetCostMatrixSimulations)
				})
			})
		})

		r.Route("/simulations/{id}", func(r chi.Router) {
			r.Use(h.simulationRun)
			r.Get("/", h.GetSimulation)
		})
	})
}
