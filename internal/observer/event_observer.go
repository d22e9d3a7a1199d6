package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// SegmentationEvent is published at each stage of a segmentation request
type SegmentationEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	Source         string                 `json:"source"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of segmentation event
type EventType string

const (
	// SegmentationStarted when a request is accepted
	SegmentationStarted EventType = "segmentation_started"
	// SegmentationCompleted when both boundaries were located
	SegmentationCompleted EventType = "segmentation_completed"
	// SegmentationFailed when the request ends with an error
	SegmentationFailed EventType = "segmentation_failed"
	// ImageLoaded when the source decoded successfully
	ImageLoaded EventType = "image_loaded"
	// ImageLoadFailed when the source could not be loaded
	ImageLoadFailed EventType = "image_load_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event SegmentationEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event SegmentationEvent)
}

// LoggingObserver logs segmentation events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) *LoggingObserver {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent logs the event at a level matching its outcome
func (o *LoggingObserver) OnEvent(ctx context.Context, event SegmentationEvent) {
	fields := logrus.Fields{
		"event_type":         event.EventType,
		"source":             event.Source,
		"processing_time_ms": event.ProcessingTime.Milliseconds(),
		"success":            event.Success,
	}

	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}

	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case SegmentationStarted:
		entry.Info("Segmentation started")
	case SegmentationCompleted:
		entry.Info("Segmentation completed")
	case SegmentationFailed:
		entry.Error("Segmentation failed")
	case ImageLoaded:
		entry.Debug("Image loaded")
	case ImageLoadFailed:
		entry.Error("Image load failed")
	default:
		entry.Info("Segmentation event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// Metrics is a snapshot of MetricsObserver counters
type Metrics struct {
	TotalSegmentations      int64   `json:"total_segmentations"`
	SuccessfulSegmentations int64   `json:"successful_segmentations"`
	FailedSegmentations     int64   `json:"failed_segmentations"`
	ImageLoadFailures       int64   `json:"image_load_failures"`
	TotalProcessingMs       int64   `json:"total_processing_ms"`
	AvgProcessingMs         float64 `json:"avg_processing_ms"`
}

// MetricsObserver counts segmentation outcomes
type MetricsObserver struct {
	mu                  sync.RWMutex
	total               int64
	successful          int64
	failed              int64
	loadFailures        int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent updates the counters
func (o *MetricsObserver) OnEvent(ctx context.Context, event SegmentationEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case SegmentationStarted:
		o.total++
	case SegmentationCompleted:
		o.successful++
		o.totalProcessingTime += event.ProcessingTime
	case SegmentationFailed:
		o.failed++
	case ImageLoadFailed:
		o.loadFailures++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() Metrics {
	o.mu.RLock()
	defer o.mu.RUnlock()

	m := Metrics{
		TotalSegmentations:      o.total,
		SuccessfulSegmentations: o.successful,
		FailedSegmentations:     o.failed,
		ImageLoadFailures:       o.loadFailures,
		TotalProcessingMs:       o.totalProcessingTime.Milliseconds(),
	}
	if o.successful > 0 {
		m.AvgProcessingMs = float64(o.totalProcessingTime.Microseconds()) / 1000 / float64(o.successful)
	}
	return m
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	inflight  sync.WaitGroup
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers delivers event to every observer in its own goroutine.
// A panicking observer is logged and does not affect the others.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event SegmentationEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		p.inflight.Add(1)
		go func(obs Observer) {
			defer p.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(context.WithoutCancel(ctx), event)
		}(observer)
	}
}

// Wait blocks until all notifications sent so far have been handled.
func (p *EventPublisher) Wait() {
	p.inflight.Wait()
}
