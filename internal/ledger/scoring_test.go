package ledger

import "testing"

func TestScoreUser(t *testing.T) {
	tests := []struct {
		name                   string
		pick                   string
		scoreFor, scoreAgainst int
		actual                 string
		actFor, actAgainst     int
		want                   int
	}{
		{"right side and exact score", "W", 4, 2, "W", 4, 2, 3},
		{"right side, wrong score", "W", 3, 2, "W", 4, 2, 1},
		{"right side, swapped goals", "W", 2, 4, "W", 4, 2, 1},
		{"wrong side", "L", 2, 4, "W", 4, 2, 0},
		{"wrong side with matching scoreline", "L", 4, 2, "W", 4, 2, 0},
		{"loss called correctly", "L", 1, 3, "L", 1, 3, 3},
		{"loss called, score off by one", "L", 1, 3, "L", 2, 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreUser(tt.pick, tt.scoreFor, tt.scoreAgainst, tt.actual, tt.actFor, tt.actAgainst)
			if got != tt.want {
				t.Errorf("ScoreUser = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreModel(t *testing.T) {
	tests := []struct {
		pick, actual string
		want         int
	}{
		{"W", "W", 1},
		{"L", "L", 1},
		{"W", "L", 0},
		{"L", "W", 0},
		{"", "W", 0}, // no model loaded at submission time
	}
	for _, tt := range tests {
		if got := ScoreModel(tt.pick, tt.actual); got != tt.want {
			t.Errorf("ScoreModel(%q, %q) = %d, want %d", tt.pick, tt.actual, got, tt.want)
		}
	}
}

func TestValidPick(t *testing.T) {
	for pick, want := range map[string]bool{"W": true, "L": true, "": false, "w": false, "WIN": false} {
		if got := ValidPick(pick); got != want {
			t.Errorf("ValidPick(%q) = %v, want %v", pick, got, want)
		}
	}
}
