package excel

import (
	"goportfolio/internal/geometry"
	"goportfolio/internal/translator"
	"goportfolio/internal/validator"
)

// Workbook is everything written to an exported spreadsheet. Validation and
// Vertices are optional; their sheets are omitted when nil.
type Workbook struct {
	Name       string
	Document   translator.Document
	Validation *validator.Report
	Vertices   *geometry.VertexSet
}
