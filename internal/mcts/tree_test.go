package mcts

import (
	"testing"

	"github.com/taklab/tiltak-go/internal/tak"
)

func TestNewTreeStartsEmpty(t *testing.T) {
	tr := NewTree(1 << 20)
	if tr.Nodes.Len() != 0 || tr.Edges.Len() != 0 {
		t.Fatalf("freshly constructed tree should be empty")
	}
	if tr.Stats().Nodes.MaxBytes <= 0 {
		t.Fatalf("tree should reserve a non-zero node budget")
	}
}

func TestTreeResetReclaimsElements(t *testing.T) {
	tr := NewTree(1 << 20)
	if _, err := tr.Nodes.Add(Node{}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	tr.Reset()
	if tr.Nodes.Len() != 0 {
		t.Fatalf("Nodes.Len() after Reset = %d, want 0", tr.Nodes.Len())
	}
	if tr.Root.Valid() {
		t.Fatalf("Root should be invalid after Reset")
	}
}

func TestTerminalValuePerspective(t *testing.T) {
	result := tak.GameResult{Kind: tak.RoadWin, Winner: tak.White}
	if v := terminalValue(result, tak.White); v != 1.0 {
		t.Fatalf("terminalValue for the winner = %v, want 1.0", v)
	}
	if v := terminalValue(result, tak.Black); v != 0.0 {
		t.Fatalf("terminalValue for the loser = %v, want 0.0", v)
	}
	draw := tak.GameResult{Kind: tak.Draw}
	if v := terminalValue(draw, tak.White); v != 0.5 {
		t.Fatalf("terminalValue for a draw = %v, want 0.5", v)
	}
}

func TestNewLeafNodeNotTerminalOnFreshPosition(t *testing.T) {
	pos, err := tak.NewPosition(5, 0)
	if err != nil {
		t.Fatalf("NewPosition: %v", err)
	}
	n := newLeafNode(pos)
	if n.Terminal {
		t.Fatalf("a fresh empty board should not be a terminal node")
	}
}
