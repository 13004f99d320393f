package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stanleysydney/anonsafety-api/internal/dto"
	"github.com/stanleysydney/anonsafety-api/internal/models"
	appErrors "github.com/stanleysydney/anonsafety-api/pkg/errors"
	"github.com/stanleysydney/anonsafety-api/pkg/response"
)

type reportService interface {
	Create(ctx context.Context, req dto.CreateReportRequest, evidence *dto.EvidenceFile, claims *models.JWTClaims) (*models.Report, error)
	ListRecent(ctx context.Context) ([]models.Report, error)
	Get(ctx context.Context, id string) (*models.Report, error)
	Like(ctx context.Context, id string) error
	Comment(ctx context.Context, id string, req dto.CommentRequest, claims *models.JWTClaims) (*models.Report, error)
	ExportFeed(ctx context.Context, format string) ([]byte, string, string, error)
}

// ReportHandler exposes the incident report endpoints.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Create godoc
// @Summary Submit an incident report
// @Description Accepts JSON or multipart form data with an optional evidence file
// @Tags Reports
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param payload body dto.CreateReportRequest true "Report payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	var req dto.CreateReportRequest
	var evidence *dto.EvidenceFile

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBind(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
			return
		}
		fileHeader, err := c.FormFile("evidence")
		if err == nil && fileHeader != nil {
			file, openErr := fileHeader.Open()
			if openErr != nil {
				response.Error(c, appErrors.Wrap(openErr, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable evidence file"))
				return
			}
			defer file.Close()
			evidence = &dto.EvidenceFile{
				Name:        fileHeader.Filename,
				ContentType: fileHeader.Header.Get("Content-Type"),
				Size:        fileHeader.Size,
				Reader:      file,
			}
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
			return
		}
	}

	report, err := h.reports.Create(c.Request.Context(), req, evidence, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, report, nil)
}

// List godoc
// @Summary List recent reports
// @Description Returns the feed newest first with comments inlined
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	reports, err := h.reports.ListRecent(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, nil)
}

// Get godoc
// @Summary Get one report
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	report, err := h.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Like godoc
// @Summary Like a report
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{id}/like [put]
func (h *ReportHandler) Like(c *gin.Context) {
	id := c.Param("id")
	if err := h.reports.Like(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": id, "liked": true}, nil)
}

// Comment godoc
// @Summary Comment on a report
// @Description Appends a comment and returns the updated report
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param payload body dto.CommentRequest true "Comment payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{id}/comment [put]
func (h *ReportHandler) Comment(c *gin.Context) {
	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid comment payload"))
		return
	}

	report, err := h.reports.Comment(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Export godoc
// @Summary Export the feed
// @Description Renders the current feed as CSV or PDF; officials only
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if !claims.IsOfficial() {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "export is restricted to officials"))
		return
	}

	payload, contentType, filename, err := h.reports.ExportFeed(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
