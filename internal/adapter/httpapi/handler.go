package httpapi

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"appraisal-orchestrator/internal/domain"
	"appraisal-orchestrator/internal/usecase"
)

// allowedImageTypes bounds uploads to formats the vision oracle accepts.
var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// Handler exposes the appraisal pipeline over HTTP.
type Handler struct {
	appraise       usecase.AppraiseUsecase
	extractor      domain.Extractor
	oracleKeySet   bool
	uploadMaxBytes int64
	logger         *slog.Logger
}

func NewHandler(
	appraise usecase.AppraiseUsecase,
	extractor domain.Extractor,
	oracleKeySet bool,
	uploadMaxBytes int64,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		appraise:       appraise,
		extractor:      extractor,
		oracleKeySet:   oracleKeySet,
		uploadMaxBytes: uploadMaxBytes,
		logger:         logger,
	}
}

// Register wires the routes onto the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/api/ask", h.Ask)
	e.POST("/api/upload", h.Upload)
	e.OPTIONS("/api/upload", h.UploadPreflight)
	e.POST("/api/chat", h.Chat)
	e.GET("/api/hello", h.Hello)
}

type askRequest struct {
	Question string `json:"question"`
	Context  string `json:"context"`
	Depth    string `json:"depth"`
}

type fileInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

type appraiseResponse struct {
	OK bool `json:"ok"`
	*usecase.AppraisalResult
	File *fileInfo `json:"file,omitempty"`
}

// Ask runs the text pipeline for a free-form question.
// (POST /api/ask)
func (h *Handler) Ask(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Question == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing question"})
	}
	if !h.oracleKeySet {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server misconfig: OPENAI_API_KEY missing"})
	}

	result, err := h.appraise.Execute(c.Request().Context(), usecase.AppraiseInput{
		Question: req.Question,
		Context:  req.Context,
		Depth:    usecase.Depth(req.Depth),
	})
	if err != nil {
		return h.pipelineError(c, err)
	}

	return c.JSON(http.StatusOK, appraiseResponse{OK: true, AppraisalResult: result})
}

// Upload runs the vision pipeline for an uploaded photo.
// (POST /api/upload)
func (h *Handler) Upload(c echo.Context) error {
	if !h.oracleKeySet {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server misconfig: OPENAI_API_KEY missing"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No file provided"})
	}
	if fileHeader.Size > h.uploadMaxBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{
			"error": fmt.Sprintf("File too large (limit %d bytes). Compress first.", h.uploadMaxBytes),
		})
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	if _, ok := allowedImageTypes[contentType]; !ok {
		return c.JSON(http.StatusUnsupportedMediaType, map[string]string{"error": "Unsupported file type: " + contentType})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Could not read file"})
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.uploadMaxBytes+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Could not read file"})
	}
	if int64(len(data)) > h.uploadMaxBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{
			"error": fmt.Sprintf("File too large (limit %d bytes). Compress first.", h.uploadMaxBytes),
		})
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))

	result, err := h.appraise.Execute(c.Request().Context(), usecase.AppraiseInput{
		ImageDataURL: dataURL,
	})
	if err != nil {
		return h.pipelineError(c, err)
	}

	return c.JSON(http.StatusOK, appraiseResponse{
		OK:              true,
		AppraisalResult: result,
		File: &fileInfo{
			Name: fileHeader.Filename,
			Type: contentType,
			Size: int64(len(data)),
		},
	})
}

// UploadPreflight answers CORS preflight for the upload endpoint.
// (OPTIONS /api/upload)
func (h *Handler) UploadPreflight(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

type chatRequest struct {
	Messages []domain.Message `json:"messages"`
}

// Chat forwards a message array near-verbatim to the oracle.
// (POST /api/chat)
func (h *Handler) Chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if len(req.Messages) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing messages array"})
	}
	if !h.oracleKeySet {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server misconfig: OPENAI_API_KEY missing"})
	}

	answer, err := h.extractor.Chat(c.Request().Context(), req.Messages)
	if err != nil {
		return h.pipelineError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"answer": answer})
}

// Hello is a simple health check.
// (GET /api/hello)
func (h *Handler) Hello(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok":  true,
		"now": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) pipelineError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrMissingInput):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrMissingCredential):
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrUpstreamTimeout):
		return c.JSON(http.StatusGatewayTimeout, map[string]string{
			"error":  "Upstream timeout",
			"detail": err.Error(),
		})
	default:
		h.logger.Error("pipeline_failed", slog.String("error", err.Error()))
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error":  "Appraisal pipeline failed",
			"detail": err.Error(),
		})
	}
}
