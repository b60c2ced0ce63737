package dedup

import (
	"strings"
	"testing"

	"Mnemo/internal/models"
)

func facts(contents ...string) []*models.Fact {
	out := make([]*models.Fact, len(contents))
	for i, c := range contents {
		out[i] = &models.Fact{MemoryID: "m" + string(rune('0'+i)), UserID: "u1", Content: c}
	}
	return out
}

func TestClassifyExactDuplicate(t *testing.T) {
	d := NewDetector(DefaultThreshold)
	existing := facts("My name is Eric.", "I enjoy hiking.")

	tests := []string{
		"My name is Eric.",
		"my name is eric.",
		"  My name is Eric.  ",
	}
	for _, candidate := range tests {
		c := d.Classify(candidate, existing)
		if c.Kind != ExactDuplicate {
			t.Errorf("Classify(%q) kind = %v, want ExactDuplicate", candidate, c.Kind)
		}
		if c.Score != 1.0 {
			t.Errorf("Classify(%q) score = %v, want 1.0", candidate, c.Score)
		}
		if c.Match == nil || c.Match.Content != "My name is Eric." {
			t.Errorf("Classify(%q) matched %+v, want the first fact", candidate, c.Match)
		}
	}
}

func TestClassifySemanticDuplicate(t *testing.T) {
	d := NewDetector(DefaultThreshold)
	existing := facts("I live in San Francisco.")

	c := d.Classify("I live in San Francisco, CA.", existing)
	if c.Kind != SemanticDuplicate {
		t.Fatalf("kind = %v, want SemanticDuplicate", c.Kind)
	}
	if c.Score < DefaultThreshold {
		t.Errorf("score = %v, want >= %v", c.Score, DefaultThreshold)
	}
	if c.Match == nil || c.Match.Content != "I live in San Francisco." {
		t.Errorf("match = %+v, want the existing fact", c.Match)
	}
}

func TestClassifyThresholdInclusive(t *testing.T) {
	// "abcd" vs "abed" scores exactly 0.75; at threshold 0.75 that must be a
	// duplicate, and just above it must not.
	existing := facts("abcd")

	at := NewDetector(0.75).Classify("abed", existing)
	if at.Kind != SemanticDuplicate {
		t.Errorf("at-threshold kind = %v, want SemanticDuplicate", at.Kind)
	}

	above := NewDetector(0.751).Classify("abed", existing)
	if above.Kind != Unique {
		t.Errorf("below-threshold kind = %v, want Unique", above.Kind)
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	d := NewDetector(DefaultThreshold)
	// Both existing facts are near-identical to the candidate; iteration
	// order decides the match.
	existing := facts(
		"I work as a software engineer.",
		"I work as a software engineer!",
	)

	c := d.Classify("I work as a software engineer?", existing)
	if c.Kind != SemanticDuplicate {
		t.Fatalf("kind = %v, want SemanticDuplicate", c.Kind)
	}
	if c.Match.Content != "I work as a software engineer." {
		t.Errorf("match = %q, want the first stored fact", c.Match.Content)
	}
}

func TestClassifyCombinedStatement(t *testing.T) {
	d := NewDetector(DefaultThreshold)

	c := d.Classify("I enjoy hiking and I live in San Francisco and I work as an engineer.", nil)
	if c.Kind != CombinedStatement {
		t.Errorf("kind = %v, want CombinedStatement", c.Kind)
	}

	// Short sentences with a conjunction stay unique.
	c = d.Classify("I like tea and coffee.", nil)
	if c.Kind != Unique {
		t.Errorf("short conjunction kind = %v, want Unique", c.Kind)
	}

	// Long sentences without any marker stay unique.
	long := strings.Repeat("a", 60)
	c = d.Classify(long, nil)
	if c.Kind != Unique {
		t.Errorf("long plain kind = %v, want Unique", c.Kind)
	}

	// Semicolon-joined statements count as combined.
	c = d.Classify("I grew up in Portland; my whole family still lives there today.", nil)
	if c.Kind != CombinedStatement {
		t.Errorf("semicolon kind = %v, want CombinedStatement", c.Kind)
	}
}

func TestClassifyDuplicateBeatsCombined(t *testing.T) {
	d := NewDetector(DefaultThreshold)
	content := "I enjoy hiking and I live in San Francisco and I work as an engineer."
	existing := facts(content)

	// Duplicate checks run before the compound heuristic.
	c := d.Classify(content, existing)
	if c.Kind != ExactDuplicate {
		t.Errorf("kind = %v, want ExactDuplicate", c.Kind)
	}
}

func TestClassifyEmptyExisting(t *testing.T) {
	d := NewDetector(DefaultThreshold)
	c := d.Classify("I play the violin.", nil)
	if c.Kind != Unique {
		t.Errorf("kind = %v, want Unique", c.Kind)
	}
}

func TestFilterBatchRejectsInBatchDuplicates(t *testing.T) {
	d := NewDetector(DefaultThreshold)

	items := d.FilterBatch([]string{
		"My name is Eric.",
		"My name is Eric.",
		"I play the violin.",
		"I play the violin!",
	})

	if len(items) != 4 {
		t.Fatalf("len(items) = %d, want 4", len(items))
	}
	if !items[0].Accepted() {
		t.Errorf("first occurrence rejected: %+v", items[0].Classification)
	}
	if items[1].Classification.Kind != ExactDuplicate {
		t.Errorf("repeat kind = %v, want ExactDuplicate", items[1].Classification.Kind)
	}
	if !items[2].Accepted() {
		t.Errorf("unique item rejected: %+v", items[2].Classification)
	}
	if items[3].Classification.Kind != SemanticDuplicate {
		t.Errorf("near-repeat kind = %v, want SemanticDuplicate", items[3].Classification.Kind)
	}
}

func TestFilterBatchEmpty(t *testing.T) {
	d := NewDetector(DefaultThreshold)
	if items := d.FilterBatch(nil); len(items) != 0 {
		t.Errorf("FilterBatch(nil) = %v, want empty", items)
	}
}
