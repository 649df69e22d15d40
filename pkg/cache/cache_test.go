package cache

import (
	"sync"
	"testing"

	"bytebeat/pkg/diag"
	"bytebeat/pkg/generator"
)

func TestKeyOf(t *testing.T) {
	if KeyOf(generator.Expr, "t") != KeyOf(generator.Expr, "t") {
		t.Fatalf("equal inputs gave different keys")
	}
	if KeyOf(generator.Expr, "t") == KeyOf(generator.RPN, "t") {
		t.Fatalf("backend is not part of the key")
	}
	if KeyOf("a", "bc") == KeyOf("ab", "c") {
		t.Fatalf("separator does not split backend from source")
	}
}

func TestCompileHitsAndMisses(t *testing.T) {
	c := New(4)

	first, err := c.Compile(generator.Expr, "t*2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.Compile(generator.Expr, "t*2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("second compile did not return the cached artifact")
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Fatalf("stats wrong. expected=(1, 1), got=(%d, %d)", hits, misses)
	}
}

func TestErrorsAreNotCached(t *testing.T) {
	c := New(4)
	_, err := c.Compile(generator.Expr, "t +")
	if !diag.Is(err, diag.Syntax) {
		t.Fatalf("expected syntax error, got %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("failed compile was cached")
	}
}

func TestEvictsOldest(t *testing.T) {
	c := New(2)
	rpn := []string{"t", "t 2 *", "t 3 *"}
	arts := make([]generator.Artifact, len(rpn))
	for i, src := range rpn {
		art, err := c.Compile(generator.RPN, src)
		if err != nil {
			t.Fatalf("compile %q: %v", src, err)
		}
		arts[i] = art
	}
	if c.Len() != 2 {
		t.Fatalf("len wrong. expected=2, got=%d", c.Len())
	}

	again, _ := c.Compile(generator.RPN, "t 3 *")
	if again != arts[2] {
		t.Fatalf("newest entry was evicted")
	}
	again, _ = c.Compile(generator.RPN, "t")
	if again == arts[0] {
		t.Fatalf("oldest entry was not evicted")
	}
}

func TestHitRefreshesRecency(t *testing.T) {
	c := New(2)
	first, err := c.Compile(generator.RPN, "t")
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Compile(generator.RPN, "t 2 *")
	if err != nil {
		t.Fatal(err)
	}
	if again, _ := c.Compile(generator.RPN, "t"); again != first {
		t.Fatalf("hit did not return the cached artifact")
	}
	if _, err := c.Compile(generator.RPN, "t 3 *"); err != nil {
		t.Fatal(err)
	}

	if again, _ := c.Compile(generator.RPN, "t"); again != first {
		t.Fatalf("recently used entry was evicted")
	}
	if again, _ := c.Compile(generator.RPN, "t 2 *"); again == second {
		t.Fatalf("least recently used entry was not evicted")
	}
	hits, misses := c.Stats()
	if hits != 2 || misses != 4 {
		t.Fatalf("stats wrong. expected=(2, 4), got=(%d, %d)", hits, misses)
	}
}

func TestConcurrentCompile(t *testing.T) {
	c := New(8)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Compile(generator.Expr, "t&t>>8"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if c.Len() != 1 {
		t.Fatalf("len wrong. expected=1, got=%d", c.Len())
	}
}
