package shorts

import (
	"fmt"
	"os"

	pigo "github.com/esimov/pigo/core"
)

// Face is one detection. Row and Col are the centre of the face and Scale is
// the side of its bounding square, all in pixels.
type Face struct {
	Row   int
	Col   int
	Scale int
	Q     float32
}

// CenterX returns the horizontal centre of the face.
func (f Face) CenterX() float64 {
	return float64(f.Col)
}

// FaceDetector finds faces in an 8-bit grayscale frame of w x h pixels.
type FaceDetector interface {
	Detect(gray []uint8, w, h int) []Face
}

// Largest returns the face with the biggest Scale.
func Largest(faces []Face) (Face, bool) {
	if len(faces) == 0 {
		return Face{}, false
	}
	best := faces[0]
	for _, f := range faces[1:] {
		if f.Scale > best.Scale {
			best = f
		}
	}
	return best, true
}

// Pigo detection defaults.
const (
	DefaultMinSize          = 20
	DefaultMaxSize          = 1000
	DefaultShiftFactor      = 0.1
	DefaultScaleFactor      = 1.1
	DefaultIoUThreshold     = 0.2
	DefaultQualityThreshold = 5.0
)

// PigoDetector detects frontal faces with a pigo cascade.
type PigoDetector struct {
	classifier *pigo.Pigo

	MinSize          int
	MaxSize          int
	ShiftFactor      float64
	ScaleFactor      float64
	IoUThreshold     float64
	QualityThreshold float32
}

// NewPigoDetector unpacks a pigo face cascade.
func NewPigoDetector(cascade []byte) (*PigoDetector, error) {
	if len(cascade) == 0 {
		return nil, fmt.Errorf("empty cascade")
	}
	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack cascade: %w", err)
	}
	return &PigoDetector{
		classifier:       classifier,
		MinSize:          DefaultMinSize,
		MaxSize:          DefaultMaxSize,
		ShiftFactor:      DefaultShiftFactor,
		ScaleFactor:      DefaultScaleFactor,
		IoUThreshold:     DefaultIoUThreshold,
		QualityThreshold: DefaultQualityThreshold,
	}, nil
}

// LoadPigoDetector reads a cascade file (usually "facefinder") from disk.
func LoadPigoDetector(path string) (*PigoDetector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cascade file: %w", err)
	}
	return NewPigoDetector(data)
}

// Detect implements FaceDetector.
func (d *PigoDetector) Detect(gray []uint8, w, h int) []Face {
	if len(gray) < w*h || w <= 0 || h <= 0 {
		return nil
	}

	maxSize := d.MaxSize
	if h < maxSize {
		maxSize = h
	}

	params := pigo.CascadeParams{
		MinSize:     d.MinSize,
		MaxSize:     maxSize,
		ShiftFactor: d.ShiftFactor,
		ScaleFactor: d.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: gray,
			Rows:   h,
			Cols:   w,
			Dim:    w,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, d.IoUThreshold)

	var faces []Face
	for _, det := range dets {
		if det.Q < d.QualityThreshold {
			continue
		}
		faces = append(faces, Face{Row: det.Row, Col: det.Col, Scale: det.Scale, Q: det.Q})
	}
	return faces
}
