package handler

type ContextKey string

var (
	SubCtxKey        ContextKey = "sub"
	CostMatrixCtx    ContextKey = "costMatrix"
	SimulationRunCtx ContextKey = "simulationRun"
)
