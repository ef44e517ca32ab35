package volume

import (
	"errors"
	"math"
	"testing"

	"github.com/soypat/tpms"
)

func TestSmoothZeroSigma(t *testing.T) {
	g, err := Sample(tpms.FischerKochS{}, 8, tpms.Bounds{Lo: -1, Hi: 1}, 0)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Smooth(g.Volume, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got == g.Volume {
		t.Fatal("sigma=0 must return a copy")
	}
	for i, v := range got.Data() {
		if v != g.Volume.Data()[i] {
			t.Fatalf("sigma=0 modified sample %d", i)
		}
	}
}

func TestSmoothInvalidSigma(t *testing.T) {
	v, _ := New(2, 2, 2)
	for _, sigma := range []float64{-1, -1e-9, math.NaN(), math.Inf(1)} {
		if _, err := Smooth(v, sigma, 0); !errors.Is(err, tpms.ErrInvalidSigma) {
			t.Errorf("sigma=%g: got %v, want ErrInvalidSigma", sigma, err)
		}
	}
}

func TestGaussianKernel(t *testing.T) {
	for _, test := range []struct {
		sigma      float64
		wantRadius int
	}{
		{sigma: 0.1, wantRadius: 0},
		{sigma: 0.5, wantRadius: 2},
		{sigma: 1, wantRadius: 4},
		{sigma: 2.4, wantRadius: 10},
	} {
		k := gaussianKernel(test.sigma)
		if len(k) != 2*test.wantRadius+1 {
			t.Errorf("sigma=%g: kernel length %d, want %d", test.sigma, len(k), 2*test.wantRadius+1)
			continue
		}
		var sum float64
		for i := range k {
			sum += k[i]
			if k[i] != k[len(k)-1-i] {
				t.Errorf("sigma=%g: kernel not symmetric", test.sigma)
			}
		}
		if math.Abs(sum-1) > 1e-14 {
			t.Errorf("sigma=%g: kernel sums to %g", test.sigma, sum)
		}
	}
}

func TestReflect(t *testing.T) {
	// d c b a | a b c d | d c b a
	const n = 4
	for i, want := range map[int]int{-4: 3, -3: 2, -2: 1, -1: 0, 0: 0, 3: 3, 4: 3, 5: 2, 7: 0, 8: 0, 12: 3} {
		if got := reflect(i, n); got != want {
			t.Errorf("reflect(%d, %d) = %d, want %d", i, n, got, want)
		}
	}
	if reflect(-7, 1) != 0 || reflect(5, 1) != 0 {
		t.Error("single sample axis must always reflect to 0")
	}
}

func TestSmoothLineReflect(t *testing.T) {
	const sigma = 0.5
	line := []float64{1, 2, 3, 4, 5}
	v, err := FromData(1, 1, len(line), append([]float64(nil), line...))
	if err != nil {
		t.Fatal(err)
	}
	got, err := Smooth(v, sigma, 1)
	if err != nil {
		t.Fatal(err)
	}
	// Independent reference: radius int(4*0.5+0.5) = 2.
	w := make([]float64, 3)
	var sum float64
	for i := range w {
		w[i] = math.Exp(-float64(i*i) / (2 * sigma * sigma))
		if i == 0 {
			sum += w[i]
		} else {
			sum += 2 * w[i]
		}
	}
	for i := range w {
		w[i] /= sum
	}
	padded := []float64{2, 1, 1, 2, 3, 4, 5, 5, 4}
	for p := range line {
		c := p + 2
		want := w[0]*padded[c] + w[1]*(padded[c-1]+padded[c+1]) + w[2]*(padded[c-2]+padded[c+2])
		if math.Abs(got.Data()[p]-want) > 1e-12 {
			t.Errorf("sample %d: got %.15g, want %.15g", p, got.Data()[p], want)
		}
	}
}

func TestSmoothConstantAndShape(t *testing.T) {
	v, _ := New(4, 6, 3)
	for i := range v.Data() {
		v.Data()[i] = 2.5
	}
	got, err := Smooth(v, 1.7, 3)
	if err != nil {
		t.Fatal(err)
	}
	nx, ny, nz := got.Dims()
	if nx != 4 || ny != 6 || nz != 3 {
		t.Fatalf("shape changed to %d,%d,%d", nx, ny, nz)
	}
	for i, val := range got.Data() {
		if math.Abs(val-2.5) > 1e-12 {
			t.Fatalf("constant volume changed at %d: %g", i, val)
		}
	}
	if v.Data()[0] != 2.5 {
		t.Error("input mutated")
	}
}

func TestSmoothSeparableAxes(t *testing.T) {
	// An impulse spreads identically along every axis.
	const n = 7
	v, _ := New(n, n, n)
	v.Set(3, 3, 3, 1)
	got, err := Smooth(v, 0.8, 2)
	if err != nil {
		t.Fatal(err)
	}
	a, b, c := got.At(2, 3, 3), got.At(3, 2, 3), got.At(3, 3, 2)
	if math.Abs(a-b) > 1e-15 || math.Abs(b-c) > 1e-15 {
		t.Errorf("anisotropic blur: %g %g %g", a, b, c)
	}
	var total float64
	for _, val := range got.Data() {
		total += val
	}
	if math.Abs(total-1) > 1e-12 {
		t.Errorf("interior impulse mass not preserved: %g", total)
	}
}

func TestSmoothWorkersDeterministic(t *testing.T) {
	g, err := Sample(tpms.FischerKochS{}, 11, tpms.Bounds{Lo: -math.Pi, Hi: math.Pi}, 0)
	if err != nil {
		t.Fatal(err)
	}
	ref, err := Smooth(g.Volume, 0.5, 1)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Smooth(g.Volume, 0.5, 8)
	if err != nil {
		t.Fatal(err)
	}
	for i := range ref.Data() {
		if ref.Data()[i] != got.Data()[i] {
			t.Fatalf("sample %d depends on worker count", i)
		}
	}
}

func TestSmoothHugeSigma(t *testing.T) {
	g, err := Sample(tpms.Gyroid{}, 6, tpms.Bounds{Lo: 0, Hi: 2}, 0)
	if err != nil {
		t.Fatal(err)
	}
	var mean float64
	for _, val := range g.Volume.Data() {
		mean += val
	}
	mean /= float64(g.Volume.Len())
	for _, sigma := range []float64{1e6, 1e9, 1e300, math.MaxFloat64} {
		got, err := Smooth(g.Volume, sigma, 0)
		if err != nil {
			t.Fatal(err)
		}
		// Blurring the mirrored volume without bound flattens it to its mean.
		for i, val := range got.Data() {
			if math.Abs(val-mean) > 1e-9 {
				t.Fatalf("sigma=%g: sample %d = %g, want mean %g", sigma, i, val, mean)
			}
		}
	}
}

func TestFoldedKernel(t *testing.T) {
	const n = 3
	for _, sigma := range []float64{0.8, 2, 40} {
		folded := foldedKernel(sigma, n)
		if len(folded) != 2*n {
			t.Fatalf("sigma=%g: folded kernel length %d", sigma, len(folded))
		}
		// Reference: full kernel with every offset reflected into the line.
		full := gaussianKernel(sigma)
		radius := len(full) / 2
		for p := 0; p < n; p++ {
			want := make([]float64, n)
			for q, w := range full {
				want[reflect(p+q-radius, n)] += w
			}
			got := make([]float64, n)
			for m, w := range folded {
				got[reflect(p+m-n, n)] += w
			}
			for j := range want {
				if math.Abs(got[j]-want[j]) > 1e-12 {
					t.Errorf("sigma=%g p=%d: weight on sample %d got %g, want %g", sigma, p, j, got[j], want[j])
				}
			}
		}
	}
	// A kernel much wider than the line is nearly uniform, up to truncation at 4σ.
	direct := foldedKernel(40, n)
	uniform := make([]float64, 2*n)
	for m := range uniform {
		uniform[m] = 1.0 / (2 * n)
	}
	for m := range direct {
		if math.Abs(direct[m]-uniform[m]) > 1e-5 {
			t.Errorf("offset %d: %g, want %g", m-n, direct[m], uniform[m])
		}
	}
}
