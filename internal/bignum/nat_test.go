package bignum

import (
	"math/big"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func mustParse(t *testing.T, s string) *Nat {
	t.Helper()
	n, err := ParseDecimal(s)
	if err != nil {
		t.Fatalf("ParseDecimal(%q): %v", s, err)
	}
	return n
}

func TestNatZeroValue(t *testing.T) {
	t.Parallel()
	var z Nat
	if !z.IsZero() {
		t.Error("zero value should be zero")
	}
	if got := z.String(); got != "0" {
		t.Errorf("String() = %q, want %q", got, "0")
	}
	if got := z.DecimalLen(); got != 1 {
		t.Errorf("DecimalLen() = %d, want 1", got)
	}
	if got := z.BigInt().Sign(); got != 0 {
		t.Errorf("BigInt().Sign() = %d, want 0", got)
	}
}

func TestNatAdd(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"zero plus zero", "0", "0", "0"},
		{"zero plus one", "0", "1", "1"},
		{"small", "21", "34", "55"},
		{"carry into new limb", "999999999999999999", "1", "1000000000000000000"},
		{"carry across limbs", "999999999999999999999999999999999999", "1", "1000000000000000000000000000000000000"},
		{"uneven lengths", "1", "123456789012345678901234567890", "123456789012345678901234567891"},
		{"limb boundary no carry", "500000000000000000", "499999999999999999", "999999999999999999"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := new(Nat).Add(mustParse(t, tc.a), mustParse(t, tc.b)).String()
			if got != tc.want {
				t.Errorf("%s + %s = %s, want %s", tc.a, tc.b, got, tc.want)
			}
			// Addition is commutative.
			got = new(Nat).Add(mustParse(t, tc.b), mustParse(t, tc.a)).String()
			if got != tc.want {
				t.Errorf("%s + %s = %s, want %s", tc.b, tc.a, got, tc.want)
			}
		})
	}
}

func TestNatAddAliasing(t *testing.T) {
	t.Parallel()
	x := mustParse(t, "999999999999999999999999999999999999")
	y := NewNat(1)

	x.Add(x, y)
	if got, want := x.String(), "1000000000000000000000000000000000000"; got != want {
		t.Errorf("x.Add(x, y) = %s, want %s", got, want)
	}

	y.Add(x, y)
	if got, want := y.String(), "1000000000000000000000000000000000001"; got != want {
		t.Errorf("y.Add(x, y) = %s, want %s", got, want)
	}

	d := mustParse(t, "123456789123456789123")
	d.Add(d, d)
	if got, want := d.String(), "246913578246913578246"; got != want {
		t.Errorf("d.Add(d, d) = %s, want %s", got, want)
	}
}

func TestNatFibonacciRecurrence(t *testing.T) {
	t.Parallel()
	a, b := new(Nat), NewNat(1)
	fa, fb := big.NewInt(0), big.NewInt(1)
	for i := 0; i < 2000; i++ {
		if a.String() != fa.String() {
			t.Fatalf("F(%d) = %s, want %s", i, a.String(), fa.String())
		}
		a.Add(a, b)
		a, b = b, a
		fa.Add(fa, fb)
		fa, fb = fb, fa
	}
}

func TestNatDecimalLen(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"1", "9", "10", "99", "100", "999999999999999999", "1000000000000000000",
		"12345678901234567890123456789012345678", strings.Repeat("9", 54), "1" + strings.Repeat("0", 54)} {
		n := mustParse(t, s)
		if got := n.DecimalLen(); got != len(s) {
			t.Errorf("DecimalLen(%s) = %d, want %d", s, got, len(s))
		}
	}
}

func TestNatAppendDecimal(t *testing.T) {
	t.Parallel()
	n := mustParse(t, "100000000000000000000000000000000000007")
	got := string(n.AppendDecimal([]byte("x=")))
	if want := "x=100000000000000000000000000000000000007"; got != want {
		t.Errorf("AppendDecimal = %q, want %q", got, want)
	}
}

func TestNatSetAndCmp(t *testing.T) {
	t.Parallel()
	a := mustParse(t, "18446744073709551615")
	b := new(Nat).SetUint64(18446744073709551615)
	if a.Cmp(b) != 0 {
		t.Fatalf("Cmp(%s, %s) != 0", a, b)
	}
	c := new(Nat).Set(a)
	c.Add(c, NewNat(1))
	if a.Cmp(c) != -1 || c.Cmp(a) != 1 {
		t.Errorf("ordering of %s and %s is wrong", a, c)
	}
	if a.String() != "18446744073709551615" {
		t.Errorf("Set aliased its source: %s", a)
	}
	if NewNat(5).Cmp(mustParse(t, "1000000000000000000")) != -1 {
		t.Error("shorter value should compare lower")
	}
}

func TestParseDecimal(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"0", "0", false},
		{"000", "0", false},
		{"0042", "42", false},
		{"1000000000000000000", "1000000000000000000", false},
		{"", "", true},
		{"-1", "", true},
		{"12a", "", true},
		{" 1", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			n, err := ParseDecimal(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Errorf("ParseDecimal(%q) expected error", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimal(%q): %v", tc.in, err)
			}
			if got := n.String(); got != tc.want {
				t.Errorf("ParseDecimal(%q) = %s, want %s", tc.in, got, tc.want)
			}
		})
	}
}

// TestNatAdd_PropertyBased checks Add and rendering against math/big.
func TestNatAdd_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	digits := gen.NumString().SuchThat(func(s string) bool { return s != "" })

	properties.Property("Add matches big.Int.Add", prop.ForAll(
		func(a, b string) bool {
			x, err := ParseDecimal(a)
			if err != nil {
				return false
			}
			y, err := ParseDecimal(b)
			if err != nil {
				return false
			}
			bx, _ := new(big.Int).SetString(a, 10)
			by, _ := new(big.Int).SetString(b, 10)
			want := new(big.Int).Add(bx, by)

			got := new(Nat).Add(x, y)
			return got.String() == want.String() &&
				got.BigInt().Cmp(want) == 0 &&
				got.DecimalLen() == len(want.String())
		},
		digits, digits,
	))

	properties.TestingRun(t)
}

func FuzzParseDecimalRoundTrip(f *testing.F) {
	f.Add("0")
	f.Add("00000")
	f.Add("1")
	f.Add("999999999999999999")
	f.Add("1000000000000000000")
	f.Add("12345678901234567890123456789")

	f.Fuzz(func(t *testing.T, s string) {
		n, err := ParseDecimal(s)
		if err != nil {
			return
		}
		want := strings.TrimLeft(s, "0")
		if want == "" {
			want = "0"
		}
		if got := n.String(); got != want {
			t.Errorf("ParseDecimal(%q).String() = %q, want %q", s, got, want)
		}
		if n.DecimalLen() != len(want) {
			t.Errorf("DecimalLen(%q) = %d, want %d", s, n.DecimalLen(), len(want))
		}
	})
}

func BenchmarkNatAppendDecimal(b *testing.B) {
	x, y := new(Nat), NewNat(1)
	for i := 0; i < 10000; i++ {
		x.Add(x, y)
		x, y = y, x
	}
	buf := make([]byte, 0, x.DecimalLen())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf = x.AppendDecimal(buf[:0])
	}
}
