package viewer

import (
	"math"
	"strconv"

	"pdf-viewer/internal/domain"
)

// Reference page size at scale 1 and the padding around the page area.
// Fit modes are computed from these by the presentation layer only.
const (
	ReferencePageWidth  = 600.0
	ReferencePageHeight = 800.0
	ViewportPadding     = 64.0
)

// Viewport is the size of the container the page is drawn in.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// EffectiveScale is the rendering scale for s inside vp. It is a pure
// function of its inputs and is never stored in a snapshot. Fitted scales
// stay inside [MinScale, MaxScale] like every stored scale.
func EffectiveScale(s domain.ViewerState, vp Viewport) float64 {
	width := vp.Width - ViewportPadding
	height := vp.Height - ViewportPadding

	switch s.FitMode {
	case domain.FitModeWidth:
		if !measured(width) {
			return s.Scale
		}
		return ClampScale(width / ReferencePageWidth)
	case domain.FitModePage:
		if !measured(width) || !measured(height) {
			return s.Scale
		}
		return ClampScale(math.Min(width/ReferencePageWidth, height/ReferencePageHeight))
	default:
		return s.Scale
	}
}

func measured(extent float64) bool {
	return extent > 0 && !math.IsInf(extent, 0)
}

func formatPercent(scale float64) string {
	return strconv.Itoa(int(math.Round(scale*100))) + "%"
}
