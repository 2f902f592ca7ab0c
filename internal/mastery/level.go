package mastery

import "math"

// Mastery levels are integers on a 0-100 scale throughout the engine.
const (
	MinLevel = 0
	MaxLevel = 100

	// Threshold is the level at which a skill counts as mastered.
	Threshold = 70
)

// Clamp bounds a level to [MinLevel, MaxLevel].
func Clamp(level int) int {
	return max(MinLevel, min(MaxLevel, level))
}

// IsMastered reports whether a level meets the mastery threshold.
func IsMastered(level int) bool {
	return level >= Threshold
}

// FromFraction converts a 0.0-1.0 fraction to a level, rounding to the
// nearest integer. NaN maps to 0.
func FromFraction(f float64) int {
	if math.IsNaN(f) {
		return MinLevel
	}
	return Clamp(int(math.Round(f * MaxLevel)))
}

// ToFraction converts a level to a 0.0-1.0 fraction.
func ToFraction(level int) float64 {
	return float64(Clamp(level)) / MaxLevel
}
