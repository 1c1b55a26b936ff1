package compiler

import (
	"testing"

	"github.com/kr/pretty"

	"github.com/ochre-lang/ochre/internal/value"
)

// numbers extracts the Number constants from fn's constant pool, in
// order, ignoring the interned strings/identifiers the compiler also
// stashes there.
func numbers(fn *value.ObjFunction) []float64 {
	var out []float64
	for _, c := range fn.Chunk.Constants {
		if c.IsNumber() {
			out = append(out, c.AsNumber())
		}
	}
	return out
}

// TestConstantPoolForArithmeticLiterals diffs the full constant pool
// shape via kr/pretty rather than a field-by-field comparison, so a
// mismatch prints a readable structural diff instead of a bare "not
// equal" failure.
func TestConstantPoolForArithmeticLiterals(t *testing.T) {
	fn, errs := compile(t, `1 + 2 * 3 - 4 / 5;`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	got := numbers(fn)
	want := []float64{1, 2, 3, 4, 5}

	if diff := pretty.Diff(got, want); len(diff) != 0 {
		t.Errorf("constant pool mismatch:\n%s", pretty.Sprint(diff))
	}
}

// TestConstantPoolKeepsRepeatedNumberLiterals confirms repeated
// literals each get their own constant slot (makeConstant does not
// dedupe numbers the way InternString dedupes strings), diffed
// structurally again.
func TestConstantPoolKeepsRepeatedNumberLiterals(t *testing.T) {
	fn, errs := compile(t, `1; 1; 1;`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	got := numbers(fn)
	want := []float64{1, 1, 1}

	if diff := pretty.Diff(got, want); len(diff) != 0 {
		t.Errorf("constant pool mismatch:\n%s", pretty.Sprint(diff))
	}
}
