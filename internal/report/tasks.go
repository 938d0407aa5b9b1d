// Package report exports a task collection as an xlsx workbook.
package report

import (
	"io"

	"github.com/locvowork/taskflow/internal/domain"
)

const (
	TasksSheet   = "Tasks"
	SummarySheet = "Summary"
)

const createdLayout = "2006-01-02 15:04"

var taskColumns = []Column{
	{FieldName: "ID", Header: "ID", Width: 8, Formatter: func(v interface{}) interface{} { return int64(v.(domain.FlexID)) }},
	{FieldName: "Title", Header: "Title", Width: 32},
	{FieldName: "Description", Header: "Description", Width: 48},
	{FieldName: "DueDate", Header: "Due Date", Width: 12, Formatter: func(v interface{}) interface{} { return v.(domain.Date).String() }},
	{FieldName: "Priority", Header: "Priority", Width: 10, Formatter: func(v interface{}) interface{} { return string(v.(domain.Priority)) }},
	{FieldName: "Completed", Header: "Status", Width: 12, Formatter: statusLabel},
	{FieldName: "CreatedAt", Header: "Created At", Width: 18, Formatter: func(v interface{}) interface{} {
		ts := v.(domain.Timestamp)
		if ts.IsZero() {
			return ""
		}
		return ts.Format(createdLayout)
	}},
}

func statusLabel(v interface{}) interface{} {
	if v.(domain.FlexBool) {
		return "Completed"
	}
	return "Pending"
}

// ExportTasks writes tasks, in the given order, and their stats to w.
func ExportTasks(w io.Writer, tasks []domain.Task, stats domain.Stats) error {
	exp, err := NewStreamExporter(w)
	if err != nil {
		return err
	}
	defer exp.Abort()

	sheet, err := exp.AddSheet(TasksSheet)
	if err != nil {
		return err
	}
	if err := sheet.WriteHeader(taskColumns); err != nil {
		return err
	}
	for _, t := range tasks {
		if err := sheet.WriteRow(t); err != nil {
			return err
		}
	}

	summary, err := exp.AddSheet(SummarySheet)
	if err != nil {
		return err
	}
	if err := summary.WriteHeader([]Column{{Header: "Metric", Width: 14}, {Header: "Count", Width: 10}}); err != nil {
		return err
	}
	for _, row := range [][]interface{}{
		{"Total", stats.Total},
		{"Pending", stats.Pending},
		{"Completed", stats.Completed},
	} {
		if err := summary.WriteValues(row...); err != nil {
			return err
		}
	}

	return exp.Close()
}
