package random

import "testing"

func TestCryptoRandomFloat64InRange(t *testing.T) {
	r := New()
	for i := 0; i < 1000; i++ {
		v := r.Float64()
		if v < 0 || v >= 1 {
			t.Fatalf("Float64() = %v, want [0, 1)", v)
		}
	}
}
