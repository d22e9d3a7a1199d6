package models

// SegmentRequest carries the image to segment: an http(s) URL, a
// data:image/...;base64 URI or an azblob://container/blob reference.
type SegmentRequest struct {
	Image string `json:"image" binding:"required"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// BoundaryDiagnostics reports how strongly one boundary was supported.
type BoundaryDiagnostics struct {
	Score    float64 `json:"score"`
	Mean     float64 `json:"gradient_mean"`
	StdDev   float64 `json:"gradient_std_dev"`
	Coverage float64 `json:"coverage"`
}

// SegmentationResponse is returned by the segment endpoint.
type SegmentationResponse struct {
	ID                int64               `json:"id,omitempty"`
	Source            string              `json:"source"`
	Timestamp         string              `json:"timestamp"`
	ProcessingTimeSec float64             `json:"processing_time_sec"`
	Image             ImageMetadata       `json:"image"`
	Iris              IrisData            `json:"iris"`
	Pupil             BoundaryDiagnostics `json:"pupil_diagnostics"`
	IrisBoundary      BoundaryDiagnostics `json:"iris_diagnostics"`
	Warnings          []string            `json:"warnings,omitempty"`
}

// SegmentationList is the paginated history response.
type SegmentationList struct {
	Items []SegmentationRecord `json:"items"`
	Count int                  `json:"count"`
}
