package geometry

import "math"

const (
	// ScaleThreshold is how far a scale factor must stray from 1 before
	// dependent properties are rescaled.
	ScaleThreshold = 0.05
	// MinFontSize is the floor for any rescaled font size.
	MinFontSize = 8.0
)

// ScaleFactor is the uniform factor between two sizes, the smaller of the
// per-axis ratios. Degenerate old sizes yield 1.
func ScaleFactor(old, updated Size) float64 {
	if old.Width <= 0 || old.Height <= 0 {
		return 1
	}
	return math.Min(updated.Width/old.Width, updated.Height/old.Height)
}

// ShouldRescale reports whether factor is far enough from 1 to matter.
func ShouldRescale(factor float64) bool {
	return math.Abs(factor-1) > ScaleThreshold
}

// ScaleFontSize scales fs by factor, rounds it and floors it at MinFontSize.
func ScaleFontSize(fs, factor float64) float64 {
	return math.Max(MinFontSize, math.Round(fs*factor))
}

// ReferenceScale is the nominal scale of a shape relative to a 100x100 box.
func ReferenceScale(s Size) float64 {
	return math.Min(s.Width, s.Height) / 100
}
