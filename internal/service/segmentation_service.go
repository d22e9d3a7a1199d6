package service

import (
	"context"
	"errors"
	"image"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "go-iris-segmenter/internal/errors"
	"go-iris-segmenter/internal/logger"
	"go-iris-segmenter/internal/observer"
	"go-iris-segmenter/internal/overlay"
	"go-iris-segmenter/internal/repository"
	"go-iris-segmenter/internal/segmenter"
	"go-iris-segmenter/internal/storage"
	"go-iris-segmenter/pkg/models"
	"go-iris-segmenter/pkg/validation"
)

// SegmentationService loads images, segments them and records the outcome
type SegmentationService interface {
	// Segment loads source and locates both boundaries
	Segment(ctx context.Context, source string) (*models.SegmentationResponse, error)

	// SegmentBatch segments every source concurrently; results keep input order
	SegmentBatch(ctx context.Context, sources []string) []BatchItem

	// Overlay segments source and returns it with both boundaries drawn
	Overlay(ctx context.Context, source string) (*image.RGBA, *models.SegmentationResponse, error)

	// GetSegmentation returns a stored result
	GetSegmentation(ctx context.Context, id int64) (*models.SegmentationRecord, error)

	// ListSegmentations returns the newest stored results
	ListSegmentations(ctx context.Context, limit int) ([]models.SegmentationRecord, error)

	// ValidateSource checks a source string without loading it
	ValidateSource(source string) error
}

// BatchItem is the outcome for one source of a batch
type BatchItem struct {
	Source   string
	Response *models.SegmentationResponse
	Err      error
}

// Dependencies groups the collaborators of the service. Results and Events
// may be nil.
type Dependencies struct {
	Images    repository.ImageRepository
	Segmenter segmenter.Segmenter
	Results   repository.SegmentationRepository
	Events    observer.Subject
	Quality   *validation.QualityValidator
	Workers   int
}

type segmentationService struct {
	images    repository.ImageRepository
	segmenter segmenter.Segmenter
	results   repository.SegmentationRepository
	events    observer.Subject
	quality   *validation.QualityValidator
	workers   int
}

// NewSegmentationService creates a new segmentation service
func NewSegmentationService(deps Dependencies) SegmentationService {
	quality := deps.Quality
	if quality == nil {
		quality = validation.NewQualityValidator()
	}
	return &segmentationService{
		images:    deps.Images,
		segmenter: deps.Segmenter,
		results:   deps.Results,
		events:    deps.Events,
		quality:   quality,
		workers:   deps.Workers,
	}
}

// Segment loads source and locates both boundaries
func (s *segmentationService) Segment(ctx context.Context, source string) (*models.SegmentationResponse, error) {
	_, resp, err := s.run(ctx, source)
	return resp, err
}

// Overlay segments source and draws the result on the original image
func (s *segmentationService) Overlay(ctx context.Context, source string) (*image.RGBA, *models.SegmentationResponse, error) {
	loaded, resp, err := s.run(ctx, source)
	if err != nil {
		return nil, nil, err
	}
	return overlay.Draw(loaded.Image, resp.Iris, overlay.DefaultStyle()), resp, nil
}

// SegmentBatch runs Segment for each source on a worker pool
func (s *segmentationService) SegmentBatch(ctx context.Context, sources []string) []BatchItem {
	items := make([]BatchItem, len(sources))
	if len(sources) == 0 {
		return items
	}

	workers := s.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(sources))

	pool := segmenter.NewWorkerPool(workers)
	pool.Start()
	defer pool.Close()

	for i, source := range sources {
		pool.Submit(func() {
			resp, err := s.Segment(ctx, source)
			items[i] = BatchItem{Source: source, Response: resp, Err: err}
		})
	}
	pool.Wait()

	return items
}

// GetSegmentation returns a stored result
func (s *segmentationService) GetSegmentation(ctx context.Context, id int64) (*models.SegmentationRecord, error) {
	if s.results == nil {
		return nil, apperrors.NewUnavailableError("persistence is disabled", repository.ErrRepositoryUnavailable)
	}
	rec, err := s.results.Get(ctx, id)
	if errors.Is(err, repository.ErrSegmentationNotFound) {
		return nil, apperrors.NewNotFoundError("segmentation not found", err)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read segmentation", err)
	}
	return rec, nil
}

// ListSegmentations returns the newest stored results
func (s *segmentationService) ListSegmentations(ctx context.Context, limit int) ([]models.SegmentationRecord, error) {
	if s.results == nil {
		return nil, apperrors.NewUnavailableError("persistence is disabled", repository.ErrRepositoryUnavailable)
	}
	records, err := s.results.List(ctx, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list segmentations", err)
	}
	return records, nil
}

// ValidateSource checks a source string without loading it
func (s *segmentationService) ValidateSource(source string) error {
	return s.images.ValidateSource(source)
}

func (s *segmentationService) run(ctx context.Context, source string) (*repository.LoadedImage, *models.SegmentationResponse, error) {
	start := time.Now()
	display := storage.Redact(source)
	s.publish(ctx, observer.SegmentationEvent{EventType: observer.SegmentationStarted, Source: display})

	loaded, err := s.images.FetchImage(ctx, source)
	if err != nil {
		err = classifyLoadError(err)
		s.publish(ctx, observer.SegmentationEvent{
			EventType:      observer.ImageLoadFailed,
			Source:         display,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		s.fail(ctx, display, start, err)
		return nil, nil, err
	}

	s.publish(ctx, observer.SegmentationEvent{
		EventType: observer.ImageLoaded,
		Source:    display,
		Success:   true,
		Metadata: map[string]interface{}{
			"width":  loaded.Metadata.Width,
			"height": loaded.Metadata.Height,
			"format": loaded.Metadata.Format,
		},
	})

	// the search itself is not interruptible, so check once before starting
	if err := ctx.Err(); err != nil {
		err = apperrors.NewTimeoutError("request cancelled before segmentation", err)
		s.fail(ctx, display, start, err)
		return nil, nil, err
	}

	result, err := s.segmenter.SegmentWithOptions(loaded.Image, s.segmenter.Options())
	if err != nil {
		s.fail(ctx, display, start, err)
		return nil, nil, err
	}

	resp := s.buildResponse(display, loaded, result)
	s.persist(ctx, resp, result)

	s.publish(ctx, observer.SegmentationEvent{
		EventType:      observer.SegmentationCompleted,
		Source:         display,
		ProcessingTime: result.ProcessingTime,
		Success:        true,
		Metadata: map[string]interface{}{
			"pupil_radius": resp.Iris.PupilRadius,
			"iris_radius":  resp.Iris.IrisRadius,
		},
	})

	return loaded, resp, nil
}

func (s *segmentationService) buildResponse(source string, loaded *repository.LoadedImage, result *segmenter.Result) *models.SegmentationResponse {
	pupil := diagnostics(result.Pupil, result.PupilStats)
	iris := diagnostics(result.IrisBoundary, result.IrisStats)

	issues := s.quality.ValidateSegmentation(validation.SegmentationMetrics{
		Iris:          result.Iris,
		PupilScore:    pupil.Score,
		IrisScore:     iris.Score,
		PupilCoverage: pupil.Coverage,
		IrisCoverage:  iris.Coverage,
	})

	return &models.SegmentationResponse{
		Source:            source,
		Timestamp:         result.Timestamp.UTC().Format(time.RFC3339),
		ProcessingTimeSec: result.ProcessingTime.Seconds(),
		Image:             loaded.Metadata,
		Iris:              result.Iris,
		Pupil:             pupil,
		IrisBoundary:      iris,
		Warnings:          s.quality.ConvertIssuesToMessages(issues),
	}
}

func diagnostics(b segmenter.Boundary, stats segmenter.PerimeterStats) models.BoundaryDiagnostics {
	return models.BoundaryDiagnostics{
		Score:    b.Score,
		Mean:     stats.Mean,
		StdDev:   stats.StdDev,
		Coverage: stats.Coverage(),
	}
}

// persist stores the result when a repository is configured. A storage
// failure is logged and the response is returned without an id.
func (s *segmentationService) persist(ctx context.Context, resp *models.SegmentationResponse, result *segmenter.Result) {
	if s.results == nil {
		return
	}

	id, err := s.results.Save(ctx, &models.SegmentationRecord{
		Source:            resp.Source,
		Iris:              resp.Iris,
		PupilScore:        resp.Pupil.Score,
		IrisScore:         resp.IrisBoundary.Score,
		Width:             result.Width,
		Height:            result.Height,
		ProcessingTimeSec: resp.ProcessingTimeSec,
		CreatedAt:         result.Timestamp.UTC(),
	})
	if err != nil {
		logger.WithError(err).WithField("source", resp.Source).Error("Failed to store segmentation")
		return
	}
	resp.ID = id
}

func (s *segmentationService) fail(ctx context.Context, source string, start time.Time, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"source":             source,
		"processing_time_ms": time.Since(start).Milliseconds(),
	}).Debug("Segmentation request failed")

	s.publish(ctx, observer.SegmentationEvent{
		EventType:      observer.SegmentationFailed,
		Source:         source,
		ProcessingTime: time.Since(start),
		ErrorMessage:   err.Error(),
	})
}

func (s *segmentationService) publish(ctx context.Context, event observer.SegmentationEvent) {
	if s.events == nil {
		return
	}
	s.events.NotifyObservers(ctx, event)
}

// classifyLoadError keeps typed errors and maps the rest to timeout or
// network failures.
func classifyLoadError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.NewTimeoutError("image fetch timeout", err)
	}
	return apperrors.NewNetworkError("failed to fetch image", err)
}
