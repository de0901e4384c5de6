package recommend

import (
	"testing"

	"github.com/ritzau/knowledge-graph/pkg/model"
)

func TestSuggest(t *testing.T) {
	tests := []struct {
		name   string
		order  []string
		states map[string]model.ReadinessState
		want   string
		wantOK bool
	}{
		{
			name:   "empty",
			wantOK: false,
		},
		{
			name:   "unlocked beats start here",
			order:  []string{"s", "u"},
			states: map[string]model.ReadinessState{"s": model.StateStartHere, "u": model.StateUnlocked},
			want:   "u",
			wantOK: true,
		},
		{
			name:   "start here beats in progress",
			order:  []string{"p", "s"},
			states: map[string]model.ReadinessState{"p": model.StateInProgress, "s": model.StateStartHere},
			want:   "s",
			wantOK: true,
		},
		{
			name:   "in progress when nothing else",
			order:  []string{"c", "p", "l"},
			states: map[string]model.ReadinessState{"c": model.StateCompleted, "p": model.StateInProgress, "l": model.StateLocked},
			want:   "p",
			wantOK: true,
		},
		{
			name:   "first in order wins a tie",
			order:  []string{"u2", "u1"},
			states: map[string]model.ReadinessState{"u1": model.StateUnlocked, "u2": model.StateUnlocked},
			want:   "u2",
			wantOK: true,
		},
		{
			name:   "all completed",
			order:  []string{"a", "b"},
			states: map[string]model.ReadinessState{"a": model.StateCompleted, "b": model.StateCompleted},
			wantOK: false,
		},
		{
			name:   "all locked",
			order:  []string{"a"},
			states: map[string]model.ReadinessState{"a": model.StateLocked},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Suggest(tt.order, tt.states)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Suggest() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestHint(t *testing.T) {
	if Hint(model.StateStartHere) != "Start with" {
		t.Errorf("unexpected start hint %q", Hint(model.StateStartHere))
	}
	if Hint(model.StateUnlocked) != "Up next" {
		t.Errorf("unexpected unlocked hint %q", Hint(model.StateUnlocked))
	}
	if Hint(model.StateInProgress) != "Continue" {
		t.Errorf("unexpected in-progress hint %q", Hint(model.StateInProgress))
	}
	if Hint(model.StateLocked) != "" {
		t.Errorf("locked nodes get no hint, got %q", Hint(model.StateLocked))
	}
}
