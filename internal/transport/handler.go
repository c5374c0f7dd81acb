package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-image-reader/internal/config"
	apperrors "go-image-reader/internal/errors"
	"go-image-reader/internal/logger"
	"go-image-reader/internal/observer"
	"go-image-reader/internal/report"
	"go-image-reader/internal/service"
	"go-image-reader/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	imageField        = "image"
	expectedTextField = "expected_text"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// StatsResponse is the body of GET /stats
type StatsResponse struct {
	Inspections int64                                        `json:"inspections"`
	Backends    map[models.BackendName]observer.BackendStats `json:"backends"`
}

// NewHandler builds the HTTP API around the inspection service. metrics may
// be nil, in which case /stats is not registered.
func NewHandler(svc service.ImageAnalysisService, metrics *observer.MetricsObserver, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.Server.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)
	r.POST("/inspect", inspectImage(svc, cfg))
	if metrics != nil {
		r.GET("/stats", stats(metrics))
	}

	return r
}

func inspectImage(svc service.ImageAnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.Server.RequestTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing image inspection request")

		formatter, err := report.NewFormatter(c.DefaultQuery("format", config.FormatJSON), cfg.OCR.PreviewLength)
		if err != nil {
			_ = c.Error(apperrors.NewValidationError("invalid format", err))
			return
		}

		file, err := c.FormFile(imageField)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				appErr := apperrors.NewValidationError(fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit), err)
				appErr.StatusCode = http.StatusRequestEntityTooLarge
				_ = c.Error(appErr)
				return
			}
			_ = c.Error(apperrors.NewValidationError(fmt.Sprintf("multipart field %q is required", imageField), err))
			return
		}

		path, err := saveUpload(c, file.Filename)
		if err != nil {
			_ = c.Error(apperrors.NewInternalError("failed to store upload", err))
			return
		}
		defer os.Remove(path)

		if err := c.SaveUploadedFile(file, path); err != nil {
			_ = c.Error(apperrors.NewInternalError("failed to store upload", err))
			return
		}

		expected := strings.TrimSpace(c.PostForm(expectedTextField))
		result := svc.AnalyzeFile(ctx, path, file.Filename, expected)

		var body bytes.Buffer
		if err := formatter.Format(&body, result); err != nil {
			_ = c.Error(apperrors.NewInternalError("failed to render report", err))
			return
		}

		logger.WithFields(logrus.Fields{
			"report_id":          result.ID,
			"filename":           file.Filename,
			"size_bytes":         file.Size,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Image inspection completed")

		c.Data(http.StatusOK, formatter.ContentType(), body.Bytes())
	}
}

// saveUpload reserves a temp file named after the upload's extension so the
// decoders and MIME sniffing see a familiar suffix.
func saveUpload(c *gin.Context, filename string) (string, error) {
	tmp, err := os.CreateTemp("", "imagereader-upload-*"+strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return "", err
	}
	path := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func stats(metrics *observer.MetricsObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, StatsResponse{
			Inspections: metrics.Inspections(),
			Backends:    metrics.Snapshot(),
		})
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			last := c.Errors.Last().Err
			message, cause := "request processing failed", last
			if appErr, ok := apperrors.As(last); ok {
				message, cause = appErr.Message, appErr.Cause
			}
			respondError(c, determineStatusCode(last), message, cause)
		}
	}
}

func determineStatusCode(err error) int {
	if _, ok := apperrors.As(err); ok {
		return apperrors.GetStatusCode(err)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	if err != nil {
		message = fmt.Sprintf("%s: %v", message, err)
	}
	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
	})
}
