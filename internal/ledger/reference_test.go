package ledger

import (
	"strings"
	"testing"
)

func TestNewReferenceShape(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		ref, err := NewReference()
		if err != nil {
			t.Fatalf("generate reference: %v", err)
		}
		if len(ref) != referenceLength {
			t.Fatalf("expected length %d, got %q", referenceLength, ref)
		}
		for _, r := range ref {
			if !strings.ContainsRune(referenceAlphabet, r) {
				t.Fatalf("reference %q contains %q outside alphabet", ref, r)
			}
		}
		if _, dup := seen[ref]; dup {
			t.Fatalf("reference %q drawn twice in 1000 draws", ref)
		}
		seen[ref] = struct{}{}
	}
}
