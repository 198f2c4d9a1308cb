package excel

// WorkbookConfig names the sheets of an exported workbook
type WorkbookConfig struct {
	SummarySheet     string `json:"summary_sheet"`
	ConstraintsSheet string `json:"constraints_sheet"`
	EvaluationsSheet string `json:"evaluations_sheet"`
	VerticesSheet    string `json:"vertices_sheet"`
}

// DefaultWorkbookConfig returns the sheet names used by the CLI and API
func DefaultWorkbookConfig() WorkbookConfig {
	return WorkbookConfig{
		SummarySheet:     "Summary",
		ConstraintsSheet: "Constraints",
		EvaluationsSheet: "Evaluations",
		VerticesSheet:    "Vertices",
	}
}
