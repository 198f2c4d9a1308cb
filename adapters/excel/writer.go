package excel

import (
	"fmt"
	"io"
	"strconv"

	"goportfolio/internal/translator"

	"github.com/xuri/excelize/v2"
)

// Writer renders workbooks with excelize
type Writer struct {
	config WorkbookConfig
}

// NewWriter creates a writer with the given sheet names
func NewWriter(config WorkbookConfig) *Writer {
	return &Writer{config: config}
}

// Write renders wb as an .xlsx stream
func (w *Writer) Write(out io.Writer, wb Workbook) error {
	f, err := w.build(wb)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Save renders wb to a file
func (w *Writer) Save(path string, wb Workbook) error {
	f, err := w.build(wb)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func (w *Writer) build(wb Workbook) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", w.config.SummarySheet); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	steps := []func(*excelize.File, Workbook, int) error{
		w.summary,
		w.constraints,
		w.evaluations,
		w.vertices,
	}
	for _, step := range steps {
		if err := step(f, wb, bold); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to build workbook: %w", err)
		}
	}
	return f, nil
}

func (w *Writer) summary(f *excelize.File, wb Workbook, bold int) error {
	doc := wb.Document
	rows := [][]interface{}{
		{"field", "value"},
		{"name", wb.Name},
		{"system_hash", doc.Hash},
		{"epsilon", doc.Epsilon},
		{"projects", len(doc.Projects)},
		{"criteria", len(doc.Criteria)},
		{"variables", len(doc.Variables)},
		{"evaluations", len(doc.Evaluations)},
		{"constraints", len(doc.Constraints)},
	}
	if r := wb.Validation; r != nil {
		rows = append(rows,
			[]interface{}{"overconstrained", r.IsOverconstrained},
			[]interface{}{"warnings", len(r.Warnings)},
		)
		for _, warn := range r.Warnings {
			rows = append(rows, []interface{}{warn.Code, warn.Message})
		}
	}
	if vs := wb.Vertices; vs != nil {
		rows = append(rows,
			[]interface{}{"vertices", vs.Len()},
			[]interface{}{"reason", string(vs.Reason)},
			[]interface{}{"possibly_unbounded", vs.PossiblyUnbounded},
			[]interface{}{"incomplete", vs.Incomplete},
		)
	}
	return writeRows(f, w.config.SummarySheet, rows, bold)
}

func (w *Writer) constraints(f *excelize.File, wb Workbook, bold int) error {
	tbl := translator.ConstraintTable(wb.Document)
	return w.table(f, w.config.ConstraintsSheet, tbl, bold, true)
}

func (w *Writer) evaluations(f *excelize.File, wb Workbook, bold int) error {
	tbl, err := translator.EvaluationTable(wb.Document.Evaluations)
	if err != nil {
		return err
	}
	return w.table(f, w.config.EvaluationsSheet, tbl, bold, false)
}

func (w *Writer) vertices(f *excelize.File, wb Workbook, bold int) error {
	vs := wb.Vertices
	if vs == nil {
		return nil
	}
	if _, err := f.NewSheet(w.config.VerticesSheet); err != nil {
		return err
	}
	rows := make([][]interface{}, 0, vs.Len()+1)
	header := []interface{}{"vertex"}
	for _, v := range vs.Variables {
		header = append(header, v)
	}
	rows = append(rows, header)
	for i, p := range vs.Vertices {
		row := []interface{}{i + 1}
		for _, x := range p {
			row = append(row, x)
		}
		rows = append(rows, row)
	}
	return writeRows(f, w.config.VerticesSheet, rows, bold)
}

func (w *Writer) table(f *excelize.File, sheet string, tbl translator.Table, bold int, numeric bool) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := make([][]interface{}, 0, len(tbl.Rows)+1)
	rows = append(rows, cells(tbl.Header, false))
	for _, r := range tbl.Rows {
		rows = append(rows, cells(r, numeric))
	}
	return writeRows(f, sheet, rows, bold)
}

// cells converts a string row; with numeric set, number-like cells are
// written as numbers
func cells(row []string, numeric bool) []interface{} {
	out := make([]interface{}, len(row))
	for i, s := range row {
		if v, err := strconv.ParseFloat(s, 64); numeric && err == nil {
			out[i] = v
			continue
		}
		out[i] = s
	}
	return out
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}, bold int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return err
		}
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return err
		}
	}
	return nil
}
