package game

import (
	"math"
	"testing"

	"memoryatlas/internal/domain"
)

const (
	seoulLat = 37.5665
	seoulLon = 126.9780
)

func TestHaversineKm_SamePoint(t *testing.T) {
	if d := HaversineKm(seoulLat, seoulLon, seoulLat, seoulLon); d != 0 {
		t.Fatalf("distance to same point = %f, want 0", d)
	}
}

func TestHaversineKm_Symmetric(t *testing.T) {
	pairs := [][4]float64{
		{seoulLat, seoulLon, 35.6895, 139.6917},  // Seoul - Tokyo
		{51.5074, -0.1278, 40.7128, -74.0060},    // London - New York
		{-33.8688, 151.2093, 64.1466, -21.9426},  // Sydney - Reykjavik
		{0, 0, 0, 180},                           // antipodal on equator
	}
	for _, p := range pairs {
		ab := HaversineKm(p[0], p[1], p[2], p[3])
		ba := HaversineKm(p[2], p[3], p[0], p[1])
		if math.Abs(ab-ba) > 1e-9 {
			t.Fatalf("distance not symmetric: %f vs %f for %v", ab, ba, p)
		}
	}
}

func TestHaversineKm_OneDegreeNorth(t *testing.T) {
	d := RoundKm(HaversineKm(seoulLat, seoulLon, seoulLat+1, seoulLon))
	if d < 111.0 || d > 111.4 {
		t.Fatalf("one degree of latitude = %f km, want ~111.19", d)
	}
}

func TestRoundKm_HalfUp(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{1.004, 1.0},
		{1.006, 1.01},
		{111.194926, 111.19},
		{111.195001, 111.2},
		{99.999, 100.0},
	}
	for _, c := range cases {
		if got := RoundKm(c.in); got != c.want {
			t.Fatalf("RoundKm(%f) = %f, want %f", c.in, got, c.want)
		}
	}
}

func testScorer(radius float64) Scorer {
	return NewScorer(&domain.GameSetting{
		MaxDistanceForFullScoreKm: radius,
		ScoringFormula:            FormulaLinear,
	})
}

func TestScorer_ExactGuess(t *testing.T) {
	s := testScorer(1)
	d, score := s.Evaluate(seoulLat, seoulLon, seoulLat, seoulLon)
	if d != 0.00 {
		t.Fatalf("distance = %f, want 0.00", d)
	}
	if score != MaxScore {
		t.Fatalf("score = %d, want %d", score, MaxScore)
	}
}

func TestScorer_OneDegreeOff(t *testing.T) {
	s := testScorer(1)
	d, score := s.Evaluate(seoulLat, seoulLon, seoulLat+1, seoulLon)
	if d < 111.0 || d > 111.4 {
		t.Fatalf("distance = %f, want about 111.19", d)
	}
	if score != 0 {
		t.Fatalf("score = %d, want 0 for a ~111 km miss", score)
	}
}

func TestScorer_WithinRadius(t *testing.T) {
	s := testScorer(50)
	// ~0.1 degrees, about 11 km
	_, score := s.Evaluate(seoulLat, seoulLon, seoulLat+0.1, seoulLon)
	if score != MaxScore {
		t.Fatalf("score inside radius = %d, want %d", score, MaxScore)
	}
}

func TestScorer_MonotoneAndBounded(t *testing.T) {
	s := testScorer(1)
	prev := MaxScore + 1
	for d := 0.0; d <= 50; d += 0.25 {
		score := s.Score(d)
		if score < 0 || score > MaxScore {
			t.Fatalf("score %d out of [0,%d] at distance %f", score, MaxScore, d)
		}
		if score > prev {
			t.Fatalf("score increased with distance at %f: %d > %d", d, score, prev)
		}
		prev = score
	}
}

func TestScorer_UnknownFormulaFallsBack(t *testing.T) {
	def := testScorer(1)
	odd := Scorer{FullScoreRadiusKm: 1, Formula: "exp_decay_v9"}
	for _, d := range []float64{0, 0.5, 3.7, 9.99, 111.19} {
		if def.Score(d) != odd.Score(d) {
			t.Fatalf("unknown formula diverged from default at %f", d)
		}
	}
}
