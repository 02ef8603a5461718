package viewer

import (
	"math"

	"pdf-viewer/internal/domain"
)

const (
	MinScale     = 0.25
	MaxScale     = 5.0
	DefaultScale = 1.0

	// Multiplicative steps: the step shrinks on the way down and grows on
	// the way up, so repeated zooming never oscillates at a bound.
	ZoomInFactor  = 1.25
	ZoomOutFactor = 0.8
)

// ZoomLevels is the toolbar zoom selector.
var ZoomLevels = []domain.ZoomLevel{
	{Label: "25%", Value: 0.25, Type: domain.ZoomLevelPreset},
	{Label: "50%", Value: 0.5, Type: domain.ZoomLevelPreset},
	{Label: "75%", Value: 0.75, Type: domain.ZoomLevelPreset},
	{Label: "100%", Value: 1.0, Type: domain.ZoomLevelPreset},
	{Label: "125%", Value: 1.25, Type: domain.ZoomLevelPreset},
	{Label: "150%", Value: 1.5, Type: domain.ZoomLevelPreset},
	{Label: "200%", Value: 2.0, Type: domain.ZoomLevelPreset},
	{Label: "300%", Value: 3.0, Type: domain.ZoomLevelPreset},
	{Label: "400%", Value: 4.0, Type: domain.ZoomLevelPreset},
	{Label: "500%", Value: 5.0, Type: domain.ZoomLevelPreset},
	{Label: FitWidthLabel, Value: 0, Type: domain.ZoomLevelFit},
	{Label: FitPageLabel, Value: 0, Type: domain.ZoomLevelFit},
}

const (
	FitWidthLabel = "Fit Width"
	FitPageLabel  = "Fit Page"
)

// ZoomController reconciles explicit scales with fit modes.
type ZoomController struct{}

// ClampScale limits scale to [MinScale, MaxScale].
func ClampScale(scale float64) float64 {
	return math.Min(MaxScale, math.Max(MinScale, scale))
}

// SetZoom sets an explicit scale and switches to the custom fit mode.
// NaN is not a scale and leaves s unchanged.
func (ZoomController) SetZoom(s domain.ViewerState, scale float64) domain.ViewerState {
	if math.IsNaN(scale) {
		return s
	}
	s.Scale = ClampScale(scale)
	s.FitMode = domain.FitModeCustom
	return s
}

func (c ZoomController) ZoomIn(s domain.ViewerState) domain.ViewerState {
	return c.SetZoom(s, s.Scale*ZoomInFactor)
}

func (c ZoomController) ZoomOut(s domain.ViewerState) domain.ViewerState {
	return c.SetZoom(s, s.Scale*ZoomOutFactor)
}

// FitToWidth stores the sentinel scale; the rendered scale comes from the
// viewport, see EffectiveScale.
func (ZoomController) FitToWidth(s domain.ViewerState) domain.ViewerState {
	s.FitMode = domain.FitModeWidth
	s.Scale = DefaultScale
	return s
}

func (ZoomController) FitToPage(s domain.ViewerState) domain.ViewerState {
	s.FitMode = domain.FitModePage
	s.Scale = DefaultScale
	return s
}

func (ZoomController) RotateClockwise(s domain.ViewerState) domain.ViewerState {
	s.Rotation = (s.Rotation + 90) % 360
	return s
}

func (ZoomController) RotateCounterClockwise(s domain.ViewerState) domain.ViewerState {
	s.Rotation = (s.Rotation - 90 + 360) % 360
	return s
}

// ApplyZoomLevel selects a toolbar entry by label.
func (c ZoomController) ApplyZoomLevel(s domain.ViewerState, label string) (domain.ViewerState, error) {
	for _, level := range ZoomLevels {
		if level.Label != label {
			continue
		}
		if level.Type == domain.ZoomLevelPreset {
			return c.SetZoom(s, level.Value), nil
		}
		if label == FitPageLabel {
			return c.FitToPage(s), nil
		}
		return c.FitToWidth(s), nil
	}
	return s, domain.ErrUnknownZoomLevel
}

// ZoomLabel is the toolbar text for the current zoom: a matching preset,
// then the fit mode, then the rounded percentage.
func ZoomLabel(s domain.ViewerState) string {
	if s.FitMode == domain.FitModeCustom {
		for _, level := range ZoomLevels {
			if level.Type == domain.ZoomLevelPreset && math.Abs(level.Value-s.Scale) < 0.01 {
				return level.Label
			}
		}
	}
	switch s.FitMode {
	case domain.FitModeWidth:
		return FitWidthLabel
	case domain.FitModePage:
		return FitPageLabel
	}
	return formatPercent(s.Scale)
}
