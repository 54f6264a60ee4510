// Package render turns chart specifications and analysis results into
// images and workbooks.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/agridash/internal/chart"
)

// Format is an image encoding.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

var (
	// ErrEmptyChart indicates a chart without any drawable points.
	ErrEmptyChart = errors.New("chart has no drawable data")
	// ErrFormat indicates an unsupported image format.
	ErrFormat = errors.New("unsupported image format")
)

// ParseFormat accepts "png" or "svg" (empty means png).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return PNG, nil
	case "svg":
		return SVG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrFormat, s)
}

// ContentType returns the MIME type for HTTP responses.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Options sets the image size in pixels.
type Options struct {
	Width  int
	Height int
}

// DefaultOptions returns the dashboard image size.
func DefaultOptions() Options {
	return Options{Width: 960, Height: 480}
}

// Chart encodes spec to w.
func Chart(w io.Writer, spec chart.Spec, f Format, opt Options) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	if f != PNG && f != SVG {
		return fmt.Errorf("%w: %q", ErrFormat, f)
	}
	if opt.Width <= 0 || opt.Height <= 0 {
		opt = DefaultOptions()
	}
	switch spec.Kind {
	case chart.KindLine:
		return lineChart(w, spec, f, opt)
	case chart.KindBar:
		return barChart(w, spec, f, opt)
	case chart.KindHeatmap:
		return heatmap(w, spec, f, opt)
	}
	return fmt.Errorf("chart %s: unknown kind %q", spec.ID, spec.Kind)
}
