package tak

import "testing"

// TestPTNPlaytakRoundTrip generates every legal move from a mid-game 5s
// position, serializes each via PTN and via Playtak notation, re-parses
// both, and checks the parsed move equals the original (spec 8).
func TestPTNPlaytakRoundTrip(t *testing.T) {
	tps := "x,2,x3/x,2,2,x2/x,1,2,1,1/x,12C,21C,1,x/x,1,2,x2 1 9"
	pos, err := ParseTPS(tps, 0)
	if err != nil {
		t.Fatalf("ParseTPS: %v", err)
	}

	for _, m := range GenerateMoves(pos, nil) {
		ptnText := FormatPTN(m, pos.Size)
		got, err := ParsePTN(ptnText, pos.Size)
		if err != nil {
			t.Fatalf("ParsePTN(%q): %v", ptnText, err)
		}
		if got != m {
			t.Errorf("PTN round trip mismatch for %v: text %q parsed back as %v", m, ptnText, got)
		}

		playtakText := FormatPlaytak(m, pos.Size)
		got, err = ParsePlaytak(playtakText, pos.Size)
		if err != nil {
			t.Fatalf("ParsePlaytak(%q): %v", playtakText, err)
		}
		if got != m {
			t.Errorf("Playtak round trip mismatch for %v: text %q parsed back as %v", m, playtakText, got)
		}
	}
}

// TestParseTPSExampleScenario parses the spec's scenario-2 position and
// checks basic structural properties (side to move, move number, and
// that known stones land where expected).
func TestParseTPSExampleScenario(t *testing.T) {
	tps := "x,2,x3/x,2,2,x2/x,1,2,1,1/x,12C,21C,1,x/x,1,2,x2 1 9"
	pos, err := ParseTPS(tps, 0)
	if err != nil {
		t.Fatalf("ParseTPS: %v", err)
	}
	if pos.Size != 5 {
		t.Fatalf("Size = %d, want 5", pos.Size)
	}
	if pos.SideToMove != White {
		t.Fatalf("SideToMove = %v, want White", pos.SideToMove)
	}
	if pos.HalfMovesPlayed != 16 {
		t.Fatalf("HalfMovesPlayed = %d, want 16 (move 9, White to move)", pos.HalfMovesPlayed)
	}

	if FormatTPS(pos) != tps {
		t.Fatalf("FormatTPS round trip: got %q, want %q", FormatTPS(pos), tps)
	}
}

// TestSixBySixRoadWin plays the spec's scenario-3 move sequence and
// checks the game result is a White road win with PTN tag "R-0".
func TestSixBySixRoadWin(t *testing.T) {
	pos, err := NewPosition(6, 0)
	if err != nil {
		t.Fatalf("NewPosition: %v", err)
	}
	ptnMoves := []string{"a1", "f6", "e6", "a2", "d6", "a3", "c6", "a4", "b6", "a5", "a6"}
	var result GameResult
	for _, text := range ptnMoves {
		m, err := ParsePTN(text, pos.Size)
		if err != nil {
			t.Fatalf("ParsePTN(%q): %v", text, err)
		}
		pos.DoMove(m)
		gd := ComputeGroupData(pos)
		result = EvaluateResult(pos, gd)
	}
	if result.Kind != RoadWin || result.Winner != White {
		t.Fatalf("result = %+v, want White RoadWin", result)
	}
	if result.PTN() != "R-0" {
		t.Fatalf("PTN() = %q, want %q", result.PTN(), "R-0")
	}
}
