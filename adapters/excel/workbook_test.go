package excel

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"goportfolio/internal/geometry"
	"goportfolio/internal/testkit"
	"goportfolio/internal/translator"
	"goportfolio/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func referenceWorkbook(t *testing.T) Workbook {
	t.Helper()
	space, recs := testkit.ReferenceScenario()
	tr := translator.New(space)
	require.NoError(t, tr.AddAll(recs))
	report := validator.New().Validate(tr.System())
	return Workbook{Name: "reference", Document: tr.ExportDocument(), Validation: &report}
}

func TestWriter_RoundTripsEvaluations(t *testing.T) {
	wb := referenceWorkbook(t)
	cfg := DefaultWorkbookConfig()

	var buf bytes.Buffer
	require.NoError(t, NewWriter(cfg).Write(&buf, wb))

	specs, err := ReadWorkbook(bytes.NewReader(buf.Bytes()), cfg.EvaluationsSheet)
	require.NoError(t, err)
	assert.Equal(t, wb.Document.Evaluations, specs)
}

func TestWriter_Sheets(t *testing.T) {
	space, box := testkit.UnitBox(2)
	tr := translator.New(space)
	require.NoError(t, tr.AddAll(box))
	vs, err := geometry.Enumerate(context.Background(), tr.System(), geometry.DefaultConfig())
	require.NoError(t, err)

	cfg := DefaultWorkbookConfig()
	var buf bytes.Buffer
	require.NoError(t, NewWriter(cfg).Write(&buf, Workbook{Name: "box", Document: tr.ExportDocument(), Vertices: &vs}))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{cfg.SummarySheet, cfg.ConstraintsSheet, cfg.EvaluationsSheet, cfg.VerticesSheet}, f.GetSheetList())

	constraints, err := f.GetRows(cfg.ConstraintsSheet)
	require.NoError(t, err)
	require.Len(t, constraints, 5)
	assert.Equal(t, append(append([]string(nil), translator.ConstraintHeader...), "P1_value", "P2_value"), constraints[0])

	vertices, err := f.GetRows(cfg.VerticesSheet)
	require.NoError(t, err)
	assert.Len(t, vertices, 5)
	assert.Equal(t, []string{"vertex", "P1_value", "P2_value"}, vertices[0])

	name, err := f.GetCellValue(cfg.SummarySheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "box", name)
}

func TestEvaluationReader_CSV(t *testing.T) {
	wb := referenceWorkbook(t)
	tbl, err := translator.EvaluationTable(wb.Document.Evaluations[:2])
	require.NoError(t, err)

	var sb strings.Builder
	for _, row := range append([][]string{tbl.Header}, tbl.Rows...) {
		for i, c := range row {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(`"` + strings.ReplaceAll(c, `"`, `""`) + `"`)
		}
		sb.WriteString("\n")
	}

	path := filepath.Join(t.TempDir(), "evaluations.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))

	specs, err := NewEvaluationReader(path, DefaultWorkbookConfig()).ReadSpecs()
	require.NoError(t, err)
	assert.Equal(t, wb.Document.Evaluations[:2], specs)
}

func TestEvaluationReader_MissingFile(t *testing.T) {
	_, err := NewEvaluationReader(filepath.Join(t.TempDir(), "none.xlsx"), DefaultWorkbookConfig()).ReadSpecs()
	assert.Error(t, err)
}
