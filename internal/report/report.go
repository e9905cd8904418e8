package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// Row 是一次模拟（某个种群大小）的结果
type Row struct {
	PoolSize int
	Score    float64
	Makespan int64
	Duration time.Duration
}

// Report 是一次种群大小扫描的全部结果
type Report struct {
	Seeds       []uint64
	Tasks       int
	Machines    int
	Generations int
	Threads     int
	Rows        []Row

	// 所有扫描中适应度最高的调度
	BestAssignments []int
	BestCosts       []int64
}

const (
	summarySheet  = "Summary"
	scheduleSheet = "Best Schedule"
)

// WriteRowHeader 和 WriteRow 按照制表符分隔输出，便于直接粘贴到表格中
func WriteRowHeader(w io.Writer) error {
	_, err := fmt.Fprint(w, "Pool\tResult\tTime (s)\n")
	return err
}

func WriteRow(w io.Writer, row Row) error {
	_, err := fmt.Fprintf(w, "%d\t%g\t%g\n", row.PoolSize, row.Score, row.Duration.Seconds())
	return err
}

// WriteXLSX 把扫描结果写入 xlsx 文件
func WriteXLSX(path string, rep *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}

	meta := [][]any{
		{"Tasks", rep.Tasks},
		{"Machines", rep.Machines},
		{"Generations", rep.Generations},
		{"Threads", rep.Threads},
		{"Seeds", fmt.Sprint(rep.Seeds)},
		{},
		{"Pool", "Score", "Makespan", "Time (s)"},
	}
	for _, row := range rep.Rows {
		meta = append(meta, []any{row.PoolSize, row.Score, row.Makespan, row.Duration.Seconds()})
	}
	if err := writeRows(f, summarySheet, meta); err != nil {
		return err
	}

	if len(rep.BestAssignments) > 0 {
		if _, err := f.NewSheet(scheduleSheet); err != nil {
			return err
		}

		rows := [][]any{{"Task", "Machine", "Cost"}}
		for task, machine := range rep.BestAssignments {
			var cost int64
			if task < len(rep.BestCosts) {
				cost = rep.BestCosts[task]
			}
			rows = append(rows, []any{task, machine, cost})
		}
		if err := writeRows(f, scheduleSheet, rows); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
