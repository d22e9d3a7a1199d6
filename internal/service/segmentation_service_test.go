package service

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"

	apperrors "go-iris-segmenter/internal/errors"
	"go-iris-segmenter/internal/observer"
	"go-iris-segmenter/internal/repository"
	"go-iris-segmenter/internal/segmenter"
	"go-iris-segmenter/pkg/models"
)

// eyeImage draws a dark pupil and a mid-grey iris centred on a light square.
func eyeImage(size, pupilR, irisR int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, size, size))
	c := size / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d2 := (x-c)*(x-c) + (y-c)*(y-c)
			v := uint8(230)
			switch {
			case d2 <= pupilR*pupilR:
				v = 0
			case d2 <= irisR*irisR:
				v = 80
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

type fakeImages struct {
	images map[string]image.Image
	err    error
}

func (f *fakeImages) FetchImage(ctx context.Context, source string) (*repository.LoadedImage, error) {
	if err := f.ValidateSource(source); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	img, ok := f.images[source]
	if !ok {
		return nil, apperrors.NewNotFoundError("image not found", nil)
	}
	b := img.Bounds()
	return &repository.LoadedImage{
		Image:    img,
		Metadata: models.ImageMetadata{Width: b.Dx(), Height: b.Dy(), Format: "png"},
	}, nil
}

func (f *fakeImages) ValidateSource(source string) error {
	if source == "" {
		return apperrors.NewValidationError("source cannot be empty", nil)
	}
	return nil
}

type memoryResults struct {
	mu      sync.Mutex
	records []models.SegmentationRecord
	saveErr error
}

func (m *memoryResults) Save(ctx context.Context, rec *models.SegmentationRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	rec.ID = int64(len(m.records) + 1)
	m.records = append(m.records, *rec)
	return rec.ID, nil
}

func (m *memoryResults) Get(ctx context.Context, id int64) (*models.SegmentationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id < 1 || int(id) > len(m.records) {
		return nil, repository.ErrSegmentationNotFound
	}
	rec := m.records[id-1]
	return &rec, nil
}

func (m *memoryResults) List(ctx context.Context, limit int) ([]models.SegmentationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.SegmentationRecord, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *memoryResults) Close() error { return nil }

type eventLog struct {
	mu    sync.Mutex
	types []observer.EventType
}

func (e *eventLog) OnEvent(ctx context.Context, event observer.SegmentationEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.types = append(e.types, event.EventType)
}

func (e *eventLog) GetObserverName() string { return "event_log" }

func (e *eventLog) count(t observer.EventType) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, got := range e.types {
		if got == t {
			n++
		}
	}
	return n
}

type fixture struct {
	service   SegmentationService
	images    *fakeImages
	results   *memoryResults
	publisher *observer.EventPublisher
	events    *eventLog
	metrics   *observer.MetricsObserver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	seg, err := segmenter.NewSegmenter(segmenter.FastOptions())
	if err != nil {
		t.Fatalf("Failed to create segmenter: %v", err)
	}

	f := &fixture{
		images: &fakeImages{images: map[string]image.Image{
			"eye.png":  eyeImage(128, 16, 30),
			"flat.png": image.NewGray(image.Rect(0, 0, 64, 64)),
		}},
		results:   &memoryResults{},
		publisher: observer.NewEventPublisher(),
		events:    &eventLog{},
		metrics:   observer.NewMetricsObserver(),
	}
	f.publisher.Subscribe(f.events)
	f.publisher.Subscribe(f.metrics)

	f.service = NewSegmentationService(Dependencies{
		Images:    f.images,
		Segmenter: seg,
		Results:   f.results,
		Events:    f.publisher,
		Workers:   2,
	})
	return f
}

func TestSegment_Success(t *testing.T) {
	f := newFixture(t)

	resp, err := f.service.Segment(context.Background(), "eye.png")
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	f.publisher.Wait()

	if resp.ID != 1 {
		t.Errorf("Expected stored id 1, got %d", resp.ID)
	}
	if resp.Image.Width != 128 || resp.Image.Format != "png" {
		t.Errorf("Unexpected image metadata %+v", resp.Image)
	}
	if d := resp.Iris.PupilRadius - 16; d < -3 || d > 3 {
		t.Errorf("Expected pupil radius near 16, got %d", resp.Iris.PupilRadius)
	}
	if d := resp.Iris.IrisRadius - 30; d < -4 || d > 4 {
		t.Errorf("Expected iris radius near 30, got %d", resp.Iris.IrisRadius)
	}
	if resp.IrisBoundary.Score <= 0 || resp.Pupil.Score <= 0 {
		t.Errorf("Expected positive boundary scores, got %+v / %+v", resp.Pupil, resp.IrisBoundary)
	}
	if resp.Timestamp == "" {
		t.Error("Expected timestamp")
	}

	stored := f.results.records[0]
	if stored.Iris != resp.Iris || stored.Width != 128 {
		t.Errorf("Stored record does not match response: %+v", stored)
	}

	for _, et := range []observer.EventType{observer.SegmentationStarted, observer.ImageLoaded, observer.SegmentationCompleted} {
		if f.events.count(et) != 1 {
			t.Errorf("Expected one %s event, got %d", et, f.events.count(et))
		}
	}
	if m := f.metrics.GetMetrics(); m.TotalSegmentations != 1 || m.SuccessfulSegmentations != 1 {
		t.Errorf("Unexpected metrics %+v", m)
	}
}

func TestSegment_FlatImageWarns(t *testing.T) {
	f := newFixture(t)

	resp, err := f.service.Segment(context.Background(), "flat.png")
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	if len(resp.Warnings) == 0 {
		t.Error("Expected warnings for an image without edges")
	}
	if resp.Pupil.Score != 0 || resp.IrisBoundary.Score != 0 {
		t.Errorf("Expected zero scores on a flat image, got %f / %f", resp.Pupil.Score, resp.IrisBoundary.Score)
	}
}

func TestSegment_LoadFailure(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Segment(context.Background(), "missing.png")
	f.publisher.Wait()

	if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("Expected not found error, got %v", err)
	}
	if f.events.count(observer.ImageLoadFailed) != 1 || f.events.count(observer.SegmentationFailed) != 1 {
		t.Errorf("Expected load failure events, got %v", f.events.types)
	}
	if len(f.results.records) != 0 {
		t.Error("Expected nothing to be stored")
	}
}

func TestSegment_UntypedLoadErrors(t *testing.T) {
	f := newFixture(t)

	f.images.err = context.DeadlineExceeded
	if _, err := f.service.Segment(context.Background(), "eye.png"); !apperrors.IsType(err, apperrors.ErrorTypeTimeout) {
		t.Errorf("Expected timeout error, got %v", err)
	}

	f.images.err = errors.New("connection reset")
	if _, err := f.service.Segment(context.Background(), "eye.png"); !apperrors.IsType(err, apperrors.ErrorTypeNetwork) {
		t.Errorf("Expected network error, got %v", err)
	}
}

func TestSegment_CancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.Segment(ctx, "eye.png")
	if !apperrors.IsType(err, apperrors.ErrorTypeTimeout) {
		t.Errorf("Expected timeout error, got %v", err)
	}
}

func TestSegment_PersistenceFailureStillReturnsResult(t *testing.T) {
	f := newFixture(t)
	f.results.saveErr = errors.New("disk full")

	resp, err := f.service.Segment(context.Background(), "eye.png")
	if err != nil {
		t.Fatalf("Expected result despite storage failure, got %v", err)
	}
	if resp.ID != 0 {
		t.Errorf("Expected no id, got %d", resp.ID)
	}
}

func TestSegmentBatch_KeepsInputOrder(t *testing.T) {
	f := newFixture(t)
	sources := []string{"eye.png", "missing.png", "flat.png", "eye.png"}

	items := f.service.SegmentBatch(context.Background(), sources)

	if len(items) != len(sources) {
		t.Fatalf("Expected %d items, got %d", len(sources), len(items))
	}
	for i, item := range items {
		if item.Source != sources[i] {
			t.Errorf("Item %d: expected source %s, got %s", i, sources[i], item.Source)
		}
	}
	if items[1].Err == nil || items[0].Err != nil || items[2].Err != nil {
		t.Errorf("Unexpected errors: %v %v %v", items[0].Err, items[1].Err, items[2].Err)
	}
	if items[0].Response.Iris != items[3].Response.Iris {
		t.Error("Expected identical inputs to give identical results")
	}

	if got := f.service.SegmentBatch(context.Background(), nil); len(got) != 0 {
		t.Errorf("Expected empty batch result, got %d", len(got))
	}
}

func TestOverlay(t *testing.T) {
	f := newFixture(t)

	img, resp, err := f.service.Overlay(context.Background(), "eye.png")
	if err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}
	if img.Bounds().Dx() != 128 || img.Bounds().Dy() != 128 {
		t.Errorf("Unexpected overlay bounds %v", img.Bounds())
	}

	d := resp.Iris
	got := img.RGBAAt(d.IrisCenterX+d.IrisRadius, d.IrisCenterY)
	if got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("Expected red iris ring, got %v", got)
	}
}

func TestGetAndListSegmentations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.service.Segment(ctx, "eye.png"); err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	rec, err := f.service.GetSegmentation(ctx, 1)
	if err != nil || rec.Source != "eye.png" {
		t.Errorf("Unexpected record %+v, err %v", rec, err)
	}

	if _, err := f.service.GetSegmentation(ctx, 99); !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("Expected not found error, got %v", err)
	}

	list, err := f.service.ListSegmentations(ctx, 10)
	if err != nil || len(list) != 1 {
		t.Errorf("Expected one record, got %d (%v)", len(list), err)
	}
}

func TestPersistenceDisabled(t *testing.T) {
	seg, _ := segmenter.NewSegmenter(segmenter.FastOptions())
	svc := NewSegmentationService(Dependencies{Images: &fakeImages{}, Segmenter: seg})

	if _, err := svc.GetSegmentation(context.Background(), 1); !apperrors.IsType(err, apperrors.ErrorTypeUnavailable) {
		t.Errorf("Expected unavailable error, got %v", err)
	}
	if _, err := svc.ListSegmentations(context.Background(), 1); !apperrors.IsType(err, apperrors.ErrorTypeUnavailable) {
		t.Errorf("Expected unavailable error, got %v", err)
	}
	if err := svc.ValidateSource(""); !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}
