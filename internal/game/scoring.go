package game

import (
	"math"

	"memoryatlas/internal/domain"
)

const (
	// EarthRadiusKm is the sphere radius used by the Haversine distance.
	EarthRadiusKm = 6371.0

	// MaxScore is awarded when the guess lands inside the full-score radius.
	MaxScore = 1000

	// FormulaLinear is the default scoring formula: full score inside the
	// radius, then 1000 - distance*100 down to zero.
	FormulaLinear = "linear_v1"

	// CorrectThreshold - a question counts towards accuracy when its score
	// exceeds this.
	CorrectThreshold = 0
)

// HaversineKm returns the great-circle distance in kilometers between two
// lat/lon points.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const rad = math.Pi / 180

	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(a))
}

// RoundKm rounds a distance to two decimal places, half away from zero.
func RoundKm(d float64) float64 {
	return math.Round(d*100) / 100
}

// Scorer turns a guess into a distance and a score for one mode setting.
type Scorer struct {
	FullScoreRadiusKm float64
	Formula           string
}

// NewScorer builds a scorer from the active setting of the session's mode.
func NewScorer(setting *domain.GameSetting) Scorer {
	return Scorer{
		FullScoreRadiusKm: setting.MaxDistanceForFullScoreKm,
		Formula:           setting.ScoringFormula,
	}
}

// Evaluate computes the rounded distance between the ground truth and the
// guess, and the resulting score.
func (s Scorer) Evaluate(correctLat, correctLon, playerLat, playerLon float64) (distanceKm float64, score int) {
	distanceKm = RoundKm(HaversineKm(correctLat, correctLon, playerLat, playerLon))
	return distanceKm, s.Score(distanceKm)
}

// Score maps a distance in kilometers to [0, MaxScore]. Unknown formula
// names fall back to the linear formula so old settings keep scoring the
// same way.
func (s Scorer) Score(distanceKm float64) int {
	switch s.Formula {
	case "", FormulaLinear:
		return s.linear(distanceKm)
	default:
		return s.linear(distanceKm)
	}
}

func (s Scorer) linear(distanceKm float64) int {
	if distanceKm <= s.FullScoreRadiusKm {
		return MaxScore
	}
	score := int(math.Round(float64(MaxScore) - distanceKm*100))
	if score < 0 {
		return 0
	}
	return score
}
