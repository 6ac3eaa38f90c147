package domain

import "testing"

func TestGoalProgressPercentage(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		target  float64
		want    float64
	}{
		{name: "zero target", current: 5, target: 0, want: 0},
		{name: "negative target", current: 5, target: -1, want: 0},
		{name: "halfway", current: 5, target: 10, want: 50},
		{name: "exact", current: 10, target: 10, want: 100},
		{name: "capped at 100", current: 25, target: 10, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Goal{CurrentValue: tt.current, TargetValue: tt.target}
			if got := g.ProgressPercentage(); got != tt.want {
				t.Fatalf("expected %.1f, got %.1f", tt.want, got)
			}
		})
	}
}

func TestGoalIsTerminal(t *testing.T) {
	for _, status := range []string{GoalStatusCompleted, GoalStatusExpired, GoalStatusCancelled} {
		g := Goal{Status: status}
		if !g.IsTerminal() {
			t.Fatalf("expected %s to be terminal", status)
		}
	}
	g := Goal{Status: GoalStatusActive}
	if g.IsTerminal() {
		t.Fatalf("active must not be terminal")
	}
}
