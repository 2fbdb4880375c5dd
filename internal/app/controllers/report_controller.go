package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/fneseed/internal/app/models/dto"
	"github.com/yigit/fneseed/internal/middleware"
	"github.com/yigit/fneseed/internal/pkg/filestorage"
	"github.com/yigit/fneseed/internal/pkg/helpers"
)

// ReportController serves the stored run reports read-only
type ReportController struct {
	storage filestorage.ReportStorage
}

// NewReportController creates a new ReportController
func NewReportController(storage filestorage.ReportStorage) *ReportController {
	return &ReportController{storage: storage}
}

// ListReports handles GET /reports?page=&size=, newest first
func (c *ReportController) ListReports(ctx *gin.Context) {
	reports, err := c.storage.ListReports()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	start, end := helpers.CalculateSliceIndices(page, size, len(reports))

	items := make([]dto.ReportFileResponse, 0, end-start)
	for _, r := range reports[start:end] {
		items = append(items, dto.FromFileInfo(r))
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.PaginatedResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(len(reports), page, size),
	}, "Reports retrieved successfully"))
}

// GetLatestReport handles GET /reports/latest
func (c *ReportController) GetLatestReport(ctx *gin.Context) {
	latest, err := c.storage.LatestReport()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.respondWithReport(ctx, latest.Filename)
}

// GetReport handles GET /reports/:name
func (c *ReportController) GetReport(ctx *gin.Context) {
	c.respondWithReport(ctx, ctx.Param("name"))
}

func (c *ReportController) respondWithReport(ctx *gin.Context, name string) {
	data, err := c.storage.ReadReport(name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if !json.Valid(data) {
		detail := dto.NewErrorDetail(dto.ErrorCodeStorageError, "Stored report is not valid JSON").WithField("name")
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(detail))
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.ReportResponse{
		Filename: name,
		Report:   json.RawMessage(data),
	}, "Report retrieved successfully"))
}

// Health handles GET /health
func Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(gin.H{"status": "ok"}, ""))
}
