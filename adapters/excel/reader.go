package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"goportfolio/domain/evaluation"
	"goportfolio/internal/translator"

	"github.com/xuri/excelize/v2"
)

// EvaluationReader loads evaluation specs from an .xlsx workbook or a CSV
// file with the evaluation table header
type EvaluationReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
}

// NewEvaluationReader creates a reader; the file extension picks the format
func NewEvaluationReader(filePath string, config WorkbookConfig) *EvaluationReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &EvaluationReader{filePath: filePath, fileType: fileType, sheet: config.EvaluationsSheet}
}

// ReadSpecs reads every evaluation row from the file
func (r *EvaluationReader) ReadSpecs() ([]evaluation.Spec, error) {
	log.Printf("[EvaluationReader] Starting to read %s file: %s", r.fileType, r.filePath)

	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}
	defer file.Close()

	if r.fileType == "csv" {
		return ReadCSV(file)
	}
	return ReadWorkbook(file, r.sheet)
}

// ReadWorkbook reads the named sheet of an .xlsx stream
func ReadWorkbook(in io.Reader, sheet string) ([]evaluation.Spec, error) {
	start := time.Now()
	f, err := excelize.OpenReader(in)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	log.Printf("[EvaluationReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(start).Nanoseconds())/1e6, len(rows))
	return processRows(rows)
}

// ReadCSV reads a CSV stream whose first row is the evaluation header
func ReadCSV(in io.Reader) ([]evaluation.Spec, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return processRows(rows)
}

func processRows(rows [][]string) ([]evaluation.Spec, error) {
	if len(rows) < 1 {
		return nil, fmt.Errorf("evaluation sheet must have a header row")
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	body := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		// GetRows trims trailing empty cells
		padded := make([]string, len(header))
		for j := range padded {
			if j < len(row) {
				padded[j] = strings.TrimSpace(row[j])
			}
		}
		body = append(body, padded)
	}

	return translator.ParseEvaluationTable(translator.Table{Header: header, Rows: body})
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
