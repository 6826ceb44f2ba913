package highlight

import (
	"strings"
	"testing"
)

func TestSentenceContainsAttributesInSortedOrder(t *testing.T) {
	t.Parallel()

	got := Sentence("!re", map[string]string{"name": "ether1", "disabled": "false"})

	disabledIdx := strings.Index(got, "disabled")
	nameIdx := strings.Index(got, "name")
	if disabledIdx == -1 || nameIdx == -1 {
		t.Fatalf("expected both attribute names present, got %q", got)
	}
	if disabledIdx > nameIdx {
		t.Fatalf("expected sorted attribute order (disabled before name), got %q", got)
	}
}

func TestSentenceTagColorDiffersByKind(t *testing.T) {
	t.Parallel()

	done := Sentence("!done", nil)
	trap := Sentence("!trap", nil)
	fatal := Sentence("!fatal", nil)

	if done == trap || done == fatal || trap == fatal {
		t.Fatal("expected distinct styling per reply tag kind")
	}
}

func TestCommandRendersNonEmptyAndKeepsPathText(t *testing.T) {
	t.Parallel()

	got := Command("/interface/ethernet/print")
	if got == "" {
		t.Fatal("expected non-empty rendering")
	}
	if !strings.Contains(got, "interface") {
		t.Fatalf("expected rendered path to still contain its text, got %q", got)
	}
}

func TestCommandEmptyPath(t *testing.T) {
	t.Parallel()
	if got := Command(""); got != "" {
		t.Fatalf("Command(\"\") = %q, want empty string", got)
	}
}
