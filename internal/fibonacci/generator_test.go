package fibonacci

import (
	"fmt"
	"strings"
	"testing"
)

var firstTerms = []string{
	"0", "1", "1", "2", "3", "5", "8", "13", "21", "34", "55", "89", "144",
	"233", "377", "610", "987", "1597", "2584", "4181", "6765",
}

func allGenerators() []Generator {
	return []Generator{NewDecimalGenerator(), NewBigGenerator()}
}

// walk renders the first n terms of g.
func walk(g Generator, n int) []string {
	terms := make([]string, 0, n)
	var buf []byte
	for i := 0; i < n; i++ {
		buf = g.Next(buf[:0])
		terms = append(terms, string(buf))
	}
	return terms
}

func TestGenerators_FirstTerms(t *testing.T) {
	t.Parallel()
	for _, g := range allGenerators() {
		t.Run(g.Name(), func(t *testing.T) {
			t.Parallel()
			got := walk(g, len(firstTerms))
			for i := range firstTerms {
				if got[i] != firstTerms[i] {
					t.Errorf("F(%d) = %s, want %s", i, got[i], firstTerms[i])
				}
			}
			if g.Index() != uint64(len(firstTerms)) {
				t.Errorf("Index() = %d, want %d", g.Index(), len(firstTerms))
			}
		})
	}
}

func TestGenerators_Agree(t *testing.T) {
	t.Parallel()
	dec, bg := walk(NewDecimalGenerator(), 3000), walk(NewBigGenerator(), 3000)
	for i := range dec {
		if dec[i] != bg[i] {
			t.Fatalf("F(%d): decimal=%s big=%s", i, dec[i], bg[i])
		}
	}
}

func TestGenerators_KnownLargeTerm(t *testing.T) {
	t.Parallel()
	// F(300)
	const want = "222232244629420445529739893461909967206666939096499764990979600"
	for _, g := range allGenerators() {
		terms := walk(g, 301)
		if terms[300] != want {
			t.Errorf("%s: F(300) = %s, want %s", g.Name(), terms[300], want)
		}
	}
}

func TestGenerators_CanonicalText(t *testing.T) {
	t.Parallel()
	for _, g := range allGenerators() {
		for i, term := range walk(g, 1000) {
			if term == "" || (len(term) > 1 && term[0] == '0') {
				t.Fatalf("%s: F(%d) = %q is not canonical", g.Name(), i, term)
			}
			if strings.Trim(term, "0123456789") != "" {
				t.Fatalf("%s: F(%d) = %q contains non-digits", g.Name(), i, term)
			}
		}
	}
}

func TestDecimalGenerator_NextLen(t *testing.T) {
	t.Parallel()
	g := NewDecimalGenerator()
	var buf []byte
	for i := 0; i < 2000; i++ {
		want := g.NextLen()
		buf = g.Next(buf[:0])
		if len(buf) != want {
			t.Fatalf("F(%d): NextLen() = %d, rendered %d bytes", i, want, len(buf))
		}
	}
}

func TestGenerator_AppendsToDst(t *testing.T) {
	t.Parallel()
	g := NewDecimalGenerator()
	dst := []byte("prefix:")
	dst = g.Next(dst)
	dst = append(dst, ',')
	dst = g.Next(dst)
	if string(dst) != "prefix:0,1" {
		t.Errorf("got %q", dst)
	}
}

func BenchmarkGenerators(b *testing.B) {
	for _, name := range NewDefaultFactory().List() {
		b.Run(name, func(b *testing.B) {
			creator, _ := NewDefaultFactory().Get(name)
			var buf []byte
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				g := creator()
				for j := 0; j < 5000; j++ {
					buf = g.Next(buf[:0])
				}
			}
		})
	}
}

func ExampleNewDecimalGenerator() {
	g := NewDecimalGenerator()
	var buf []byte
	for i := 0; i < 8; i++ {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = g.Next(buf)
	}
	fmt.Println(string(buf))
	// Output:
	// 0 1 1 2 3 5 8 13
}
