package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"tasklist/internal/locale"
	"tasklist/internal/task"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderTaskTable lays tasks out as ID, Task, Date, Priority, Done.
func renderTaskTable(tasks []task.Task, labels locale.Labels, colorize bool) string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			t.Description,
			t.DueDate,
			priorityCell(t.Priority, labels, colorize),
			yesNo(t.Completed),
		})
	}
	return renderTable(
		[]string{"ID", "Task", "Date", "Priority", "Done"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	)
}

func priorityCell(p task.Priority, labels locale.Labels, colorize bool) string {
	label := labels.Priority(p)
	if !colorize {
		return label
	}
	switch p {
	case task.PriorityHigh:
		return ansiRed + label + ansiReset
	case task.PriorityLow:
		return ansiBlue + label + ansiReset
	}
	return label
}
