package mastery

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestDecay_ReferenceValue(t *testing.T) {
	got := Decay(80, 30, 0.05, 0)
	if math.Abs(got-17.85) > 0.01 {
		t.Errorf("Decay(80, 30, 0.05) = %.4f, want ~17.85", got)
	}
}

func TestDecay_IdentityAtZero(t *testing.T) {
	for _, level := range []float64{0, 1, 42, 70, 100} {
		if got := Decay(level, 0, DefaultDecayRate, 0); got != level {
			t.Errorf("Decay(%g, 0) = %g, want %g", level, got, level)
		}
	}
}

func TestDecay_Monotonic(t *testing.T) {
	prev := Decay(90, 0, DefaultDecayRate, 0)
	for d := 1.0; d <= 365; d++ {
		got := Decay(90, d, DefaultDecayRate, 0)
		if got > prev {
			t.Fatalf("decay increased at day %g: %g > %g", d, got, prev)
		}
		if got < 0 || got > 90 {
			t.Fatalf("decay out of range at day %g: %g", d, got)
		}
		prev = got
	}
}

func TestDecay_EdgeCases(t *testing.T) {
	tests := []struct {
		name                     string
		level, days, rate, floor float64
		want                     float64
	}{
		{"negative days", 50, -3, 0.05, 0, 50},
		{"zero rate", 50, 10, 0, 0, 50},
		{"negative rate", 50, 10, -1, 0, 50},
		{"floor holds", 50, 1000, 0.05, 10, 10},
		{"floor above level", 5, 1000, 0.05, 10, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decay(tt.level, tt.days, tt.rate, tt.floor); got != tt.want {
				t.Errorf("got %g, want %g", got, tt.want)
			}
		})
	}
}

func TestApplyDecay_NeverPracticed(t *testing.T) {
	s := State{SkillID: "a", Level: 40, Baseline: 40, Unlocked: true}
	got, err := ApplyDecay(s, time.Now(), DefaultDecayRate, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != s {
		t.Errorf("state changed: %+v", got)
	}
}

func TestApplyDecay_Idempotent(t *testing.T) {
	practiced := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := practiced.Add(30 * 24 * time.Hour)
	s := State{SkillID: "a", Level: 80, Baseline: 80, Unlocked: true, LastPracticed: &practiced}

	once, err := ApplyDecay(s, now, DefaultDecayRate, 0)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := ApplyDecay(once, now, DefaultDecayRate, 0)
	if err != nil {
		t.Fatal(err)
	}
	if once.Level != 18 {
		t.Errorf("level after 30 days = %d, want 18", once.Level)
	}
	if twice.Level != once.Level {
		t.Errorf("second application changed level: %d -> %d", once.Level, twice.Level)
	}
	if twice.Baseline != 80 {
		t.Errorf("baseline changed to %d", twice.Baseline)
	}
}

func TestApplyDecay_FutureTimestamp(t *testing.T) {
	now := time.Now()
	future := now.Add(48 * time.Hour)
	s := State{SkillID: "a", Level: 60, Baseline: 60, Unlocked: true, LastPracticed: &future}

	got, err := ApplyDecay(s, now, DefaultDecayRate, 0)
	var ise *InvalidStateError
	if !errors.As(err, &ise) {
		t.Fatalf("expected *InvalidStateError, got %v", err)
	}
	if got.Level != 60 {
		t.Errorf("level = %d, want 60 (zero elapsed days)", got.Level)
	}
}

func TestElapsedDays_Fractional(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if got := ElapsedDays(start, start.Add(36*time.Hour)); got != 1.5 {
		t.Errorf("ElapsedDays = %g, want 1.5", got)
	}
}
