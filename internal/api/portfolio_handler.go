package api

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"goportfolio/adapters/excel"
	"goportfolio/app"
	"goportfolio/domain/core"
	"goportfolio/domain/evaluation"
	"goportfolio/internal/errors"
	"goportfolio/internal/report"

	"github.com/gin-gonic/gin"
)

// PortfolioHandler serves portfolio, evaluation and geometry requests
type PortfolioHandler struct {
	service  *app.PortfolioService
	workbook excel.WorkbookConfig
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(service *app.PortfolioService, workbook excel.WorkbookConfig) *PortfolioHandler {
	return &PortfolioHandler{service: service, workbook: workbook}
}

func portfolioID(c *gin.Context) core.PortfolioID {
	return core.PortfolioID(c.Param("id"))
}

// CreatePortfolio handles POST /portfolios
func (h *PortfolioHandler) CreatePortfolio(c *gin.Context) {
	var req app.CreatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}
	p, err := h.service.CreatePortfolio(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// ListPortfolios handles GET /portfolios
func (h *PortfolioHandler) ListPortfolios(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	list, err := h.service.ListPortfolios(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"portfolios": list, "count": len(list)})
}

// GetPortfolio handles GET /portfolios/:id
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	p, err := h.service.GetPortfolio(c.Request.Context(), portfolioID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeletePortfolio handles DELETE /portfolios/:id
func (h *PortfolioHandler) DeletePortfolio(c *gin.Context) {
	if err := h.service.DeletePortfolio(c.Request.Context(), portfolioID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListEvaluations handles GET /portfolios/:id/evaluations
func (h *PortfolioHandler) ListEvaluations(c *gin.Context) {
	specs, err := h.service.Evaluations(c.Request.Context(), portfolioID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"evaluations": specs, "count": len(specs)})
}

// AddEvaluations handles POST /portfolios/:id/evaluations. The body is a
// single evaluation or an array of them.
func (h *PortfolioHandler) AddEvaluations(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondError(c, errors.InvalidInput("failed to read body"))
		return
	}
	specs, err := decodeSpecs(body)
	if err != nil {
		respondError(c, err)
		return
	}
	h.add(c, specs)
}

// ImportEvaluations handles POST /portfolios/:id/evaluations/import with a
// multipart "file" field holding an .xlsx workbook or a CSV file
func (h *PortfolioHandler) ImportEvaluations(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, errors.InvalidInput("file field is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, errors.Wrap(err, "failed to open upload"))
		return
	}
	defer file.Close()

	var specs []evaluation.Spec
	if strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		specs, err = excel.ReadCSV(file)
	} else {
		specs, err = excel.ReadWorkbook(file, h.workbook.EvaluationsSheet)
	}
	if err != nil {
		respondError(c, errors.WithCode(errors.CodeInvalidInput, err))
		return
	}
	h.add(c, specs)
}

func (h *PortfolioHandler) add(c *gin.Context, specs []evaluation.Spec) {
	res, err := h.service.AddEvaluations(c.Request.Context(), portfolioID(c), specs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// RemoveEvaluation handles DELETE /portfolios/:id/evaluations/:recordId
func (h *PortfolioHandler) RemoveEvaluation(c *gin.Context) {
	err := h.service.RemoveEvaluation(c.Request.Context(), portfolioID(c), core.ID(c.Param("recordId")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Constraints handles GET /portfolios/:id/constraints?format=dict|table|matrices
func (h *PortfolioHandler) Constraints(c *gin.Context) {
	out, err := h.service.Export(c.Request.Context(), portfolioID(c), c.DefaultQuery("format", "dict"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Optimization handles GET /portfolios/:id/optimization
func (h *PortfolioHandler) Optimization(c *gin.Context) {
	doc, err := h.service.Optimization(c.Request.Context(), portfolioID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Validation handles GET /portfolios/:id/validation
func (h *PortfolioHandler) Validation(c *gin.Context) {
	rep, err := h.service.Validate(c.Request.Context(), portfolioID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// Vertices handles GET /portfolios/:id/vertices
func (h *PortfolioHandler) Vertices(c *gin.Context) {
	vs, err := h.service.Vertices(c.Request.Context(), portfolioID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vs)
}

// Properties handles GET /portfolios/:id/properties
func (h *PortfolioHandler) Properties(c *gin.Context) {
	props, err := h.service.Properties(c.Request.Context(), portfolioID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, props)
}

// Projection handles GET /portfolios/:id/projection?dims=0,1[,2]
func (h *PortfolioHandler) Projection(c *gin.Context) {
	dims, err := parseDims(c.Query("dims"))
	if err != nil {
		respondError(c, err)
		return
	}
	proj, err := h.service.Project(c.Request.Context(), portfolioID(c), dims)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, proj)
}

// Geometry handles GET /portfolios/:id/geometry
func (h *PortfolioHandler) Geometry(c *gin.Context) {
	doc, err := h.service.Geometry(c.Request.Context(), portfolioID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Report handles GET /portfolios/:id/report?format=markdown|html
func (h *PortfolioHandler) Report(c *gin.Context) {
	in, err := h.service.Report(c.Request.Context(), portfolioID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	switch c.DefaultQuery("format", "html") {
	case "markdown", "md":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(in)))
	case "html":
		c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML(in))
	default:
		respondError(c, errors.InvalidInput("format must be markdown or html"))
	}
}

// Workbook handles GET /portfolios/:id/workbook
func (h *PortfolioHandler) Workbook(c *gin.Context) {
	snap, err := h.service.Snapshot(c.Request.Context(), portfolioID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	err = excel.NewWriter(h.workbook).Write(&buf, excel.Workbook{
		Name:       snap.Portfolio.Name,
		Document:   snap.Document,
		Validation: &snap.Validation,
		Vertices:   &snap.Geometry.Vertices,
	})
	if err != nil {
		respondError(c, errors.Wrap(err, "failed to render workbook"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+snap.Portfolio.ID.String()+`.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func parseDims(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.InvalidInput("dims query parameter is required")
	}
	parts := strings.Split(raw, ",")
	dims := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, errors.InvalidInput("dims must be comma-separated integers")
		}
		dims = append(dims, d)
	}
	return dims, nil
}
