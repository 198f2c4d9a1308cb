package translator

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"goportfolio/domain/constraint"
	"goportfolio/domain/core"
	"goportfolio/domain/criterion"
	"goportfolio/domain/evaluation"
)

// Format selects an export rendering
type Format string

const (
	FormatDict     Format = "dict"
	FormatTable    Format = "table"
	FormatMatrices Format = "matrices"
)

// ParseFormat accepts the export format names, case-insensitively
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatDict, FormatTable, FormatMatrices:
		return f, nil
	case "json":
		return FormatDict, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, s)
}

// Entry is one constraint row in the structured export
type Entry struct {
	ID           string               `json:"id"`
	Kind         constraint.Kind      `json:"kind"`
	Criterion    string               `json:"criterion"`
	Coefficients []float64            `json:"coefficients"`
	Bound        float64              `json:"bound"`
	IsEquality   bool                 `json:"is_equality"`
	Expression   string               `json:"expression"`
	RecordID     core.ID              `json:"record_id"`
	Evaluator    string               `json:"evaluator_id"`
	Confidence   float64              `json:"confidence"`
	Ordering     *constraint.Ordering `json:"ordering,omitempty"`
}

// Document is the structured export of a translator. It carries enough to
// rebuild an equivalent translator with Import.
type Document struct {
	Projects    []string          `json:"projects"`
	Criteria    []string          `json:"criteria"`
	Variables   []string          `json:"variables"`
	Epsilon     float64           `json:"epsilon"`
	Evaluations []evaluation.Spec `json:"evaluations"`
	Constraints []Entry           `json:"constraints"`
	Hash        string            `json:"system_hash"`
}

// Table is a header plus string rows, one row per constraint
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Export renders the current system in the requested format
func (t *Translator) Export(format Format) (interface{}, error) {
	switch format {
	case FormatDict:
		return t.ExportDocument(), nil
	case FormatTable:
		return t.ExportTable(), nil
	case FormatMatrices:
		return t.Matrices(), nil
	}
	return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, format)
}

// ExportDocument returns the structured export
func (t *Translator) ExportDocument() Document {
	layout, recs := t.snapshot()
	sys := constraint.NewSystem(layout, t.epsilon, translateAll(layout, t.epsilon, recs))

	doc := Document{
		Projects:    layout.Projects,
		Criteria:    layout.Criteria,
		Variables:   layout.Variables,
		Epsilon:     t.epsilon,
		Evaluations: make([]evaluation.Spec, 0, len(recs)),
		Constraints: make([]Entry, 0, sys.Len()),
		Hash:        sys.Hash.String(),
	}
	for _, rec := range recs {
		doc.Evaluations = append(doc.Evaluations, rec.Spec())
	}
	for _, c := range sys.Constraints {
		doc.Constraints = append(doc.Constraints, Entry{
			ID:           c.ID,
			Kind:         c.Kind,
			Criterion:    c.Criterion,
			Coefficients: c.Coefficients,
			Bound:        c.Bound,
			IsEquality:   c.IsEquality,
			Expression:   c.Format(layout.Variables),
			RecordID:     c.SourceID(),
			Evaluator:    c.Evaluator(),
			Confidence:   c.Confidence(),
			Ordering:     c.Ordering,
		})
	}
	return doc
}

// ConstraintHeader is the fixed part of the table header; one column per
// variable follows it.
var ConstraintHeader = []string{"id", "kind", "criterion", "record_id", "evaluator_id", "confidence", "is_equality", "bound", "expression"}

// ExportTable returns one row per constraint with a column per variable
func (t *Translator) ExportTable() Table {
	return ConstraintTable(t.ExportDocument())
}

// ConstraintTable flattens a document's constraint rows
func ConstraintTable(doc Document) Table {
	header := append(append([]string(nil), ConstraintHeader...), doc.Variables...)
	rows := make([][]string, 0, len(doc.Constraints))
	for _, e := range doc.Constraints {
		row := []string{
			e.ID,
			string(e.Kind),
			e.Criterion,
			e.RecordID.String(),
			e.Evaluator,
			formatFloat(e.Confidence),
			strconv.FormatBool(e.IsEquality),
			formatFloat(e.Bound),
			e.Expression,
		}
		for _, a := range e.Coefficients {
			row = append(row, formatFloat(a))
		}
		rows = append(rows, row)
	}
	return Table{Header: header, Rows: rows}
}

// EvaluationHeader is the column set of the evaluation table
var EvaluationHeader = []string{"id", "evaluator_id", "type", "projects", "operator", "values", "confidence", "criterion", "timestamp", "metadata"}

// EvaluationTable renders record specs as a table. List and map cells are
// JSON-encoded so the table can be parsed back losslessly.
func EvaluationTable(specs []evaluation.Spec) (Table, error) {
	rows := make([][]string, 0, len(specs))
	for _, s := range specs {
		projects, err := json.Marshal(s.Projects)
		if err != nil {
			return Table{}, err
		}
		values := ""
		if len(s.Values) > 0 {
			b, err := json.Marshal(s.Values)
			if err != nil {
				return Table{}, err
			}
			values = string(b)
		}
		metadata := ""
		if len(s.Metadata) > 0 {
			b, err := json.Marshal(s.Metadata)
			if err != nil {
				return Table{}, err
			}
			metadata = string(b)
		}
		confidence := ""
		if s.Confidence != nil {
			confidence = formatFloat(*s.Confidence)
		}
		rows = append(rows, []string{
			s.ID.String(),
			s.EvaluatorID,
			string(s.Type),
			string(projects),
			string(s.Operator),
			values,
			confidence,
			s.Criterion,
			s.Timestamp.String(),
			metadata,
		})
	}
	return Table{Header: append([]string(nil), EvaluationHeader...), Rows: rows}, nil
}

// ParseEvaluationTable reads specs from a table produced by EvaluationTable.
// Columns are located by header name; unknown columns are ignored.
func ParseEvaluationTable(tbl Table) ([]evaluation.Spec, error) {
	col := make(map[string]int, len(tbl.Header))
	for i, h := range tbl.Header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"evaluator_id", "type", "projects"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", core.ErrUnsupportedFormat, required)
		}
	}
	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	specs := make([]evaluation.Spec, 0, len(tbl.Rows))
	for n, row := range tbl.Rows {
		s := evaluation.Spec{
			ID:          core.ID(cell(row, "id")),
			EvaluatorID: cell(row, "evaluator_id"),
			Type:        evaluation.Type(cell(row, "type")),
			Operator:    evaluation.Operator(cell(row, "operator")),
			Criterion:   cell(row, "criterion"),
		}
		if err := json.Unmarshal([]byte(cell(row, "projects")), &s.Projects); err != nil {
			return nil, fmt.Errorf("row %d: projects: %w", n+1, err)
		}
		if v := cell(row, "values"); v != "" {
			if err := json.Unmarshal([]byte(v), &s.Values); err != nil {
				return nil, fmt.Errorf("row %d: values: %w", n+1, err)
			}
		}
		if v := cell(row, "confidence"); v != "" {
			c, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: confidence: %w", n+1, err)
			}
			s.Confidence = &c
		}
		if v := cell(row, "timestamp"); v != "" {
			ts, err := core.ParseTimestamp(v)
			if err != nil {
				return nil, fmt.Errorf("row %d: timestamp: %w", n+1, err)
			}
			s.Timestamp = ts
		}
		if v := cell(row, "metadata"); v != "" {
			if err := json.Unmarshal([]byte(v), &s.Metadata); err != nil {
				return nil, fmt.Errorf("row %d: metadata: %w", n+1, err)
			}
		}
		specs = append(specs, s)
	}
	return specs, nil
}

// Import rebuilds a translator from a structured export. The criterion
// space is recreated from the document's projects and criteria and the
// evaluations are re-validated in their original order.
func Import(doc Document, opts ...Option) (*Translator, error) {
	space, err := criterion.NewSpace(doc.Projects, doc.Criteria)
	if err != nil {
		return nil, err
	}
	if doc.Epsilon > 0 {
		opts = append([]Option{WithEpsilon(doc.Epsilon)}, opts...)
	}
	t := New(space, opts...)

	recs := make([]*evaluation.Record, 0, len(doc.Evaluations))
	for _, spec := range doc.Evaluations {
		rec, err := evaluation.New(spec)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := t.AddAll(recs); err != nil {
		return nil, err
	}
	return t, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
