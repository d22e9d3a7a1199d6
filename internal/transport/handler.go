package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-iris-segmenter/internal/config"
	apperrors "go-iris-segmenter/internal/errors"
	"go-iris-segmenter/internal/logger"
	"go-iris-segmenter/internal/observer"
	"go-iris-segmenter/internal/overlay"
	"go-iris-segmenter/internal/service"
	"go-iris-segmenter/pkg/models"
)

// MetricsProvider exposes the request counters served on /metrics
type MetricsProvider interface {
	GetMetrics() observer.Metrics
}

// NewHandler builds the gin router. metrics may be nil.
func NewHandler(svc service.SegmentationService, metrics MetricsProvider, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)
	r.GET("/metrics", metricsHandler(metrics))
	r.POST("/segment", segmentImage(svc, cfg))
	r.POST("/segment/overlay", segmentOverlay(svc, cfg))
	r.GET("/segmentations", listSegmentations(svc))
	r.GET("/segmentations/:id", getSegmentation(svc))

	return r
}

// bindSource reads and validates the request body. It writes the error
// response itself and returns false on failure.
func bindSource(c *gin.Context, svc service.SegmentationService) (string, bool) {
	var req models.SegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WithError(err).WithField("ip", c.ClientIP()).Error("Invalid request format")
		respondError(c, http.StatusBadRequest, "invalid request format", err)
		return "", false
	}

	if err := svc.ValidateSource(req.Image); err != nil {
		respondError(c, apperrors.GetStatusCode(err), "invalid image source", err)
		return "", false
	}
	return req.Image, true
}

func segmentImage(svc service.SegmentationService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing segmentation request")

		source, ok := bindSource(c, svc)
		if !ok {
			return
		}

		resp, err := svc.Segment(ctx, source)
		if err != nil {
			respondError(c, statusFor(err), "segmentation failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"source":             resp.Source,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
			"pupil_radius":       resp.Iris.PupilRadius,
			"iris_radius":        resp.Iris.IrisRadius,
		}).Info("Segmentation completed successfully")

		c.JSON(http.StatusOK, resp)
	}
}

func segmentOverlay(svc service.SegmentationService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		source, ok := bindSource(c, svc)
		if !ok {
			return
		}

		img, resp, err := svc.Overlay(ctx, source)
		if err != nil {
			respondError(c, statusFor(err), "segmentation failed", err)
			return
		}

		var buf bytes.Buffer
		if err := overlay.EncodePNG(&buf, img); err != nil {
			respondError(c, http.StatusInternalServerError, "failed to encode overlay",
				apperrors.NewProcessingError("png encoding failed", err))
			return
		}

		c.Header("X-Iris-Data", fmt.Sprintf("%d,%d,%d,%d,%d,%d",
			resp.Iris.PupilCenterX, resp.Iris.PupilCenterY, resp.Iris.PupilRadius,
			resp.Iris.IrisCenterX, resp.Iris.IrisCenterY, resp.Iris.IrisRadius))
		c.Data(http.StatusOK, "image/png", buf.Bytes())
	}
}

func getSegmentation(svc service.SegmentationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			respondError(c, http.StatusBadRequest, "invalid segmentation id",
				apperrors.NewValidationError("id must be a positive integer", err))
			return
		}

		rec, err := svc.GetSegmentation(c.Request.Context(), id)
		if err != nil {
			respondError(c, statusFor(err), "failed to load segmentation", err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

func listSegmentations(svc service.SegmentationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 20
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 || n > 500 {
				respondError(c, http.StatusBadRequest, "invalid limit",
					apperrors.NewValidationError("limit must be between 1 and 500", err))
				return
			}
			limit = n
		}

		records, err := svc.ListSegmentations(c.Request.Context(), limit)
		if err != nil {
			respondError(c, statusFor(err), "failed to list segmentations", err)
			return
		}
		c.JSON(http.StatusOK, models.SegmentationList{Items: records, Count: len(records)})
	}
}

func metricsHandler(metrics MetricsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.JSON(http.StatusOK, observer.Metrics{})
			return
		}
		c.JSON(http.StatusOK, metrics.GetMetrics())
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
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
			err := c.Errors.Last()
			respondError(c, statusFor(err.Err), "request processing failed", err)
		}
	}
}

// statusFor maps typed errors to their status and context errors to
// gateway timeout.
func statusFor(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
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

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
