package container

import (
	"fmt"
	"net/http"

	"go-iris-segmenter/internal/config"
	"go-iris-segmenter/internal/factory"
	"go-iris-segmenter/internal/logger"
	"go-iris-segmenter/internal/observer"
	"go-iris-segmenter/internal/repository"
	"go-iris-segmenter/internal/repository/sqlite"
	"go-iris-segmenter/internal/segmenter"
	"go-iris-segmenter/internal/service"
	"go-iris-segmenter/internal/transport"
	"go-iris-segmenter/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config              *config.Config
	segmenter           segmenter.Segmenter
	imageRepository     repository.ImageRepository
	resultRepository    repository.SegmentationRepository
	publisher           *observer.EventPublisher
	metrics             *observer.MetricsObserver
	segmentationService service.SegmentationService
	handler             http.Handler
}

// Options adjusts how the container is assembled.
type Options struct {
	// AllowLocalFiles lets sources name paths on this machine. The CLI sets
	// it; the HTTP server never does.
	AllowLocalFiles bool

	// WithoutHTTP skips building the gin handler.
	WithoutHTTP bool
}

// NewContainer wires the segmenter, storage, persistence, events and
// transport from cfg.
func NewContainer(cfg *config.Config, opts ...Options) (*Container, error) {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}

	seg, err := segmenter.NewSegmenter(SegmenterOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("invalid segmentation settings: %w", err)
	}

	storageFactory := factory.NewStorageFactory(factory.StorageSettings{
		FetchTimeout:     cfg.ImageFetchTimeout,
		AzureAccountName: cfg.AzureAccountName,
		AzureAccountKey:  cfg.AzureAccountKey,
	})

	sources := validation.NewSourceValidator()
	if o.AllowLocalFiles {
		sources = validation.NewLocalSourceValidator()
	}
	quality := validation.NewQualityValidator()
	imageRepository := repository.NewImageRepository(factory.NewResolver(storageFactory), sources, quality)

	var results repository.SegmentationRepository
	if cfg.DatabasePath != "" {
		db, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open result database: %w", err)
		}
		results = sqlite.NewSegmentationRepository(db)
	}

	publisher := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	svc := service.NewSegmentationService(service.Dependencies{
		Images:    imageRepository,
		Segmenter: seg,
		Results:   results,
		Events:    publisher,
		Quality:   quality,
		Workers:   cfg.Workers,
	})

	c := &Container{
		config:              cfg,
		segmenter:           seg,
		imageRepository:     imageRepository,
		resultRepository:    results,
		publisher:           publisher,
		metrics:             metrics,
		segmentationService: svc,
	}
	if !o.WithoutHTTP {
		c.handler = transport.NewHandler(svc, metrics, cfg)
	}
	return c, nil
}

// SegmenterOptions maps the segmentation block of cfg onto segmenter options
func SegmenterOptions(cfg *config.Config) segmenter.Options {
	s := cfg.Segmentation
	return segmenter.DefaultOptions().
		WithResolution(s.Resolution).
		WithPupilBand(s.PupilMinDivisor, s.PupilMaxDivisor).
		WithIrisBand(s.IrisMinDivisor, s.IrisMaxDivisor)
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Service returns the segmentation service
func (c *Container) Service() service.SegmentationService {
	return c.segmentationService
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close waits for pending event notifications and closes the database.
func (c *Container) Close() error {
	c.publisher.Wait()
	if c.resultRepository != nil {
		return c.resultRepository.Close()
	}
	return nil
}
