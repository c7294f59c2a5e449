package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestIsTooSmall(t *testing.T) {
	if !IsTooSmall(79, 30) || !IsTooSmall(100, 23) {
		t.Fatal("expected below-minimum sizes to be too small")
	}
	if IsTooSmall(80, 24) {
		t.Fatal("minimum size should fit")
	}
}

func TestRenderHeader(t *testing.T) {
	h := RenderHeader("Free Play", "Asha", 90)
	if !strings.Contains(h, "MathBlocks") || !strings.Contains(h, "Free Play") || !strings.Contains(h, "Asha") {
		t.Fatalf("header missing parts:\n%s", h)
	}
	if w := lipgloss.Width(h); w != 90 {
		t.Fatalf("expected width 90, got %d", w)
	}
}

func TestRenderFrameFillsHeight(t *testing.T) {
	header := RenderHeader("x", "", 80)
	footer := RenderFooter([]KeyHint{{Key: "Esc", Description: "Back"}}, 80)
	frame := RenderFrame(header, "body", footer, 80, 24)
	if got := lipgloss.Height(frame); got != 24 {
		t.Fatalf("expected 24 lines, got %d", got)
	}
}

func TestContentTop(t *testing.T) {
	if got := ContentTop(80); got != 3 {
		t.Fatalf("expected header of 3 rows, got %d", got)
	}
}
