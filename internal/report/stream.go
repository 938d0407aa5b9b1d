package report

import (
	"fmt"
	"io"
	"reflect"

	"github.com/xuri/excelize/v2"
)

// Column maps one struct field (or map key) to a sheet column.
type Column struct {
	FieldName string
	Header    string
	Width     float64
	Formatter func(interface{}) interface{}
}

// StreamExporter writes a workbook sheet by sheet through excelize stream writers.
type StreamExporter struct {
	file        *excelize.File
	writer      io.Writer
	sheets      map[string]*StreamSheet
	order       []string
	headerStyle int
	closed      bool
}

func NewStreamExporter(w io.Writer) (*StreamExporter, error) {
	f := excelize.NewFile()
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &StreamExporter{
		file:        f,
		writer:      w,
		sheets:      make(map[string]*StreamSheet),
		headerStyle: style,
	}, nil
}

// StreamSheet is one sheet being written. Rows must come after the header.
type StreamSheet struct {
	stream     *excelize.StreamWriter
	name       string
	columns    []Column
	style      int
	currentRow int
}

func (e *StreamExporter) AddSheet(name string) (*StreamSheet, error) {
	if _, ok := e.sheets[name]; ok {
		return nil, fmt.Errorf("sheet %s already exists", name)
	}
	if idx, _ := e.file.GetSheetIndex(name); idx == -1 {
		if _, err := e.file.NewSheet(name); err != nil {
			return nil, err
		}
	}
	sw, err := e.file.NewStreamWriter(name)
	if err != nil {
		return nil, err
	}

	sheet := &StreamSheet{stream: sw, name: name, style: e.headerStyle, currentRow: 1}
	e.sheets[name] = sheet
	e.order = append(e.order, name)
	return sheet, nil
}

func (s *StreamSheet) WriteHeader(columns []Column) error {
	s.columns = columns
	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = excelize.Cell{Value: col.Header, StyleID: s.style}
		if col.Width > 0 {
			if err := s.stream.SetColWidth(i+1, i+1, col.Width); err != nil {
				return err
			}
		}
	}
	return s.setRow(header)
}

func (s *StreamSheet) WriteRow(item interface{}) error {
	if s.columns == nil {
		return fmt.Errorf("sheet %s: header must be written before data", s.name)
	}
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	row := make([]interface{}, len(s.columns))
	for i, col := range s.columns {
		val := extractValue(v, col.FieldName)
		if col.Formatter != nil {
			val = col.Formatter(val)
		}
		row[i] = val
	}
	return s.setRow(row)
}

// WriteValues writes a row of literal cell values.
func (s *StreamSheet) WriteValues(values ...interface{}) error {
	return s.setRow(values)
}

func (s *StreamSheet) setRow(values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, s.currentRow)
	if err != nil {
		return err
	}
	if err := s.stream.SetRow(cell, values); err != nil {
		return err
	}
	s.currentRow++
	return nil
}

// Close flushes every sheet, drops the unused default sheet and writes the
// workbook to the output. The workbook is released even when writing fails.
func (e *StreamExporter) Close() (err error) {
	defer func() {
		if cerr := e.Abort(); err == nil {
			err = cerr
		}
	}()
	for _, name := range e.order {
		if err := e.sheets[name].stream.Flush(); err != nil {
			return err
		}
	}
	if _, ok := e.sheets["Sheet1"]; !ok && len(e.order) > 0 {
		if err := e.file.DeleteSheet("Sheet1"); err != nil {
			return err
		}
		if idx, err := e.file.GetSheetIndex(e.order[0]); err == nil && idx >= 0 {
			e.file.SetActiveSheet(idx)
		}
	}
	return e.file.Write(e.writer)
}

// Abort releases the workbook without writing it. It is a no-op after Close.
func (e *StreamExporter) Abort() error {
	if e.closed {
		return nil
	}
	e.closed = true
	return e.file.Close()
}

func extractValue(item reflect.Value, fieldName string) interface{} {
	switch item.Kind() {
	case reflect.Struct:
		if f := item.FieldByName(fieldName); f.IsValid() {
			return f.Interface()
		}
	case reflect.Map:
		if val := item.MapIndex(reflect.ValueOf(fieldName)); val.IsValid() {
			return val.Interface()
		}
	}
	return ""
}
