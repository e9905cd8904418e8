package domain

type SimulationFinishedMailData struct {
	RunID        string  `json:"runID"`
	CostMatrixID int64   `json:"costMatrixID"`
	Status       string  `json:"status"`
	BestScore    float64 `json:"bestScore"`
	Makespan     int64   `json:"makespan"`
	Duration     string  `json:"duration"`
	ErrorMessage string  `json:"errorMessage"`
}
