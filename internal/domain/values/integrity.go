package values

import (
	"fmt"
	"sort"
)

// ColorGrey is returned when a validity rate is below every configured band.
const ColorGrey = "grey"

// IntegrityLevel is one colour band: rates at or above Threshold get Color.
type IntegrityLevel struct {
	Color     string  `json:"color" yaml:"color"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// IntegrityLevels is an ordered set of colour bands used to grade a column's validity rate.
type IntegrityLevels []IntegrityLevel

// DefaultIntegrityLevels returns the standard five bands.
func DefaultIntegrityLevels() IntegrityLevels {
	return IntegrityLevels{
		{Color: "red", Threshold: 0},
		{Color: "orange", Threshold: 0.25},
		{Color: "yellow", Threshold: 0.5},
		{Color: "blue", Threshold: 0.75},
		{Color: "green", Threshold: 1},
	}
}

// Validate checks that thresholds lie in [0, 1] and strictly increase.
func (l IntegrityLevels) Validate() error {
	for i, level := range l {
		if level.Color == "" {
			return fmt.Errorf("integrity level %d: color is required", i)
		}
		if level.Threshold < 0 || level.Threshold > 1 {
			return fmt.Errorf("integrity level %s: threshold %v out of range [0, 1]", level.Color, level.Threshold)
		}
		if i > 0 && level.Threshold <= l[i-1].Threshold {
			return fmt.Errorf("integrity level %s: thresholds must increase", level.Color)
		}
	}
	return nil
}

// Colorcode returns the colour of the highest band whose threshold the rate reaches,
// or ColorGrey when the rate is below all bands (or no bands are configured).
func (l IntegrityLevels) Colorcode(rate float64) string {
	sorted := make(IntegrityLevels, len(l))
	copy(sorted, l)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Threshold < sorted[j].Threshold
	})

	color := ""
	for _, level := range sorted {
		if rate < level.Threshold {
			break
		}
		color = level.Color
	}
	if color == "" {
		return ColorGrey
	}
	return color
}
