package num

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	if Round2(21.1) != 21.1 {
		t.Fatalf("round2 must keep 21.1")
	}
	if Round2(1.005000001) != 1.01 {
		t.Fatalf("unexpected round2: %v", Round2(1.005000001))
	}
	if Round(6.955, 1) != 7.0 {
		t.Fatalf("unexpected round1: %v", Round(6.955, 1))
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 1) != 1 || Clamp(-1, 0, 1) != 0 || Clamp(0.5, 0, 1) != 0.5 {
		t.Fatalf("clamp bounds broken")
	}
	if Clamp(math.NaN(), 2, 3) != 2 {
		t.Fatalf("NaN must collapse to lower bound")
	}
	if Clamp01(math.Inf(1)) != 0 {
		t.Fatalf("Inf must collapse to 0")
	}
}

func TestMedian(t *testing.T) {
	if Median(nil) != 0 {
		t.Fatalf("empty median must be 0")
	}
	if Median([]float64{5, 1, 3}) != 3 {
		t.Fatalf("odd median broken")
	}
	in := []float64{4, 1, 3, 2}
	if Median(in) != 2.5 {
		t.Fatalf("even median broken")
	}
	if in[0] != 4 {
		t.Fatalf("median must not reorder its input")
	}
}
