package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/screening-service/internal/services"
	"github.com/SAP-F-2025/screening-service/internal/utils"
	"github.com/SAP-F-2025/screening-service/internal/validator"
)

type AnalysisHandler struct {
	BaseHandler
	scanService services.ScanService
}

func NewAnalysisHandler(scanService services.ScanService, v *validator.Validator, logger utils.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		BaseHandler: NewBaseHandler(logger, v),
		scanService: scanService,
	}
}

// Analyze forwards an uploaded brain scan to the classification backend
// @Summary Analyze scan
// @Tags analysis
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Scan image"
// @Success 200 {object} models.ScanAnalysis
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /analyze [post]
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Scan file is required",
			Details: err.Error(),
		})
		return
	}

	f, err := header.Open()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	defer f.Close()

	h.LogRequest(c, "Analyzing scan", "filename", header.Filename, "size", header.Size)

	result, err := h.scanService.Analyze(c.Request.Context(), header.Filename, f)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
