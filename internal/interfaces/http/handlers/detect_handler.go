package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appdetection "github.com/veritype/veritype/internal/application/detection"
	"github.com/veritype/veritype/internal/infrastructure/monitoring/logging"
	apperrors "github.com/veritype/veritype/pkg/errors"
	"github.com/veritype/veritype/pkg/types/detection"
)

// maxUploadBytes bounds batch file uploads.
const maxUploadBytes = 32 << 20

// DetectHandler serves the detection endpoints.
type DetectHandler struct {
	service appdetection.Service
	logger  logging.Logger
}

// NewDetectHandler builds the handler.
func NewDetectHandler(service appdetection.Service, logger logging.Logger) *DetectHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &DetectHandler{
		service: service,
		logger:  logger.Named("handlers"),
	}
}

// detectRequest is the POST /detect body.
type detectRequest struct {
	Text           string `json:"text"`
	IncludeOpinion bool   `json:"include_opinion"`
}

// batchRequest is the POST /detect/batch body.
type batchRequest struct {
	Texts []string `json:"texts"`
}

// Detect scores one text.
//
//	POST /api/v1/detect
func (h *DetectHandler) Detect(c *gin.Context) {
	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, "request body must be JSON with a \"text\" field")
		return
	}

	resp, err := h.service.Detect(c.Request.Context(), &appdetection.DetectRequest{
		Text:           req.Text,
		IncludeOpinion: req.IncludeOpinion,
		Source:         "http",
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DetectBatch scores a JSON array of texts.
//
//	POST /api/v1/detect/batch
func (h *DetectHandler) DetectBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, "request body must be JSON with a \"texts\" array")
		return
	}

	resp, err := h.service.DetectBatch(c.Request.Context(), &appdetection.BatchRequest{
		Texts:  req.Texts,
		Source: "http",
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Upload scores a batch file (CSV with a "text" column, JSON array, or JSON
// Lines). The response format follows the "format" query parameter: "json"
// (default) or "csv".
//
//	POST /api/v1/detect/upload
func (h *DetectHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondValidationError(c, "multipart form must carry a \"file\" part")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		respondError(c, apperrors.New(apperrors.ErrCodeBadRequest,
			fmt.Sprintf("file exceeds the %d MiB upload limit", maxUploadBytes>>20)))
		return
	}

	format, err := appdetection.DetectSourceFormat(fileHeader.Filename)
	if err != nil {
		respondError(c, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "failed to read uploaded file"))
		return
	}
	defer file.Close()

	texts, err := appdetection.ParseSource(file, format)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.service.DetectBatch(c.Request.Context(), &appdetection.BatchRequest{
		Texts:  texts,
		Source: "upload",
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("format") == "csv" {
		h.respondCSV(c, resp.Items)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DetectHandler) respondCSV(c *gin.Context, items []detection.BatchItem) {
	filename := fmt.Sprintf("veritype-results-%s.csv", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	if err := appdetection.WriteResultsCSV(c.Writer, items); err != nil {
		h.logger.Error("failed to stream CSV export", logging.Err(err))
	}
}
