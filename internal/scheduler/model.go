package scheduler

import (
	"errors"
	"fmt"
)

// maxScore 是 makespan 为 0 时的适应度上限
const maxScore = 1000.0

// CostMatrix: 任务 × 机器 的执行时间表，构造后不可变
type CostMatrix struct {
	tasks    int
	machines int
	costs    []int64 // 行优先存储，costs[t*machines+m]
}

// NewCostMatrix 根据二维数组构造执行时间表
// 要求每一行长度一致且所有执行时间非负
func NewCostMatrix(costs [][]int64) (*CostMatrix, error) {
	if len(costs) == 0 {
		return nil, errors.New("执行时间表至少需要一个任务")
	}

	machines := len(costs[0])
	if machines == 0 {
		return nil, errors.New("执行时间表至少需要一台机器")
	}

	m := &CostMatrix{
		tasks:    len(costs),
		machines: machines,
		costs:    make([]int64, 0, len(costs)*machines),
	}

	for t, row := range costs {
		if len(row) != machines {
			return nil, fmt.Errorf("任务 %d 的执行时间个数为 %d，应为 %d", t, len(row), machines)
		}
		for j, c := range row {
			if c < 0 {
				return nil, fmt.Errorf("任务 %d 在机器 %d 上的执行时间为负数", t, j)
			}
		}
		m.costs = append(m.costs, row...)
	}

	return m, nil
}

func (m *CostMatrix) Tasks() int {
	return m.tasks
}

func (m *CostMatrix) Machines() int {
	return m.machines
}

// Cost 返回任务 task 在机器 machine 上的执行时间
func (m *CostMatrix) Cost(task, machine int) int64 {
	return m.costs[task*m.machines+machine]
}

// Rows 返回执行时间表的二维副本，用于序列化
func (m *CostMatrix) Rows() [][]int64 {
	rows := make([][]int64, m.tasks)
	for t := range rows {
		rows[t] = make([]int64, m.machines)
		copy(rows[t], m.costs[t*m.machines:(t+1)*m.machines])
	}
	return rows
}

// Schedule: 一个候选解，即每个任务被分配到的机器编号
// 适应度会被缓存，任何分配的修改都会使缓存失效
type Schedule struct {
	assignments []int
	hasCache    bool
	cachedScore float64
}

// NewSchedule 创建一个包含 tasks 个任务的调度，所有任务初始分配到机器 0
func NewSchedule(tasks int) *Schedule {
	return &Schedule{
		assignments: make([]int, tasks),
	}
}

// Tasks 返回调度中的任务数量
func (s *Schedule) Tasks() int {
	return len(s.assignments)
}

func (s *Schedule) TaskAssignment(task int) int {
	return s.assignments[task]
}

// SetTaskAssignment 将任务 task 分配到机器 machine，并使适应度缓存失效
func (s *Schedule) SetTaskAssignment(task, machine int) {
	s.assignments[task] = machine
	s.hasCache = false
}

// Assignments 返回分配结果的副本
func (s *Schedule) Assignments() []int {
	out := make([]int, len(s.assignments))
	copy(out, s.assignments)
	return out
}

// Clone 深拷贝调度（包括缓存），两者之后互不影响
func (s *Schedule) Clone() *Schedule {
	return &Schedule{
		assignments: s.Assignments(),
		hasCache:    s.hasCache,
		cachedScore: s.cachedScore,
	}
}

// CachedScore 返回缓存的适应度，以及缓存是否有效
func (s *Schedule) CachedScore() (float64, bool) {
	return s.cachedScore, s.hasCache
}

// 遗传算法参数
type Parameters struct {
	Generations int `json:"generations" validate:"required,min=1"` // 最大迭代次数
	PoolSize    int `json:"poolSize" validate:"required,min=1"`    // 种群大小（多线程时为所有线程的总和）
	Threads     int `json:"threads" validate:"required,min=1"`     // 线程数
	Patience    int `json:"patience" validate:"min=0"`             // 连续多少代没有进步就提前停止，0 表示使用默认值
}

// DefaultPatience 是收敛判定的默认耐心值
const DefaultPatience = 30

func (p Parameters) patience() int {
	if p.Patience <= 0 {
		return DefaultPatience
	}
	return p.Patience
}
