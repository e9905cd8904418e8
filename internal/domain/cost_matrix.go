package domain

import "time"

type CostMatrix struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Tasks       int       `json:"tasks"`
	Machines    int       `json:"machines"`
	Costs       [][]int64 `json:"costs,omitempty"` // 列表接口中不返回
	CreatedAt   time.Time `json:"createdAt"`
	Version     int32     `json:"-"`
}
