package models

import (
	"fmt"
	"time"
)

// IrisData is the segmentation result in original image coordinates. Field
// order and JSON names are part of the output contract.
type IrisData struct {
	PupilCenterX int `json:"pupilCenterX"`
	PupilCenterY int `json:"pupilCenterY"`
	PupilRadius  int `json:"pupilRadius"`
	IrisCenterX  int `json:"irisCenterX"`
	IrisCenterY  int `json:"irisCenterY"`
	IrisRadius   int `json:"irisRadius"`
}

func (d IrisData) String() string {
	return fmt.Sprintf("pupil=(%d,%d,%d) iris=(%d,%d,%d)",
		d.PupilCenterX, d.PupilCenterY, d.PupilRadius,
		d.IrisCenterX, d.IrisCenterY, d.IrisRadius)
}

// SegmentationRecord is a stored segmentation with its diagnostics.
type SegmentationRecord struct {
	ID                int64     `json:"id"`
	Source            string    `json:"source"`
	Iris              IrisData  `json:"iris"`
	PupilScore        float64   `json:"pupil_score"`
	IrisScore         float64   `json:"iris_score"`
	Width             int       `json:"width"`
	Height            int       `json:"height"`
	ProcessingTimeSec float64   `json:"processing_time_sec"`
	CreatedAt         time.Time `json:"created_at"`
}

// ImageMetadata describes a decoded input image.
type ImageMetadata struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}
