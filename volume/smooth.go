package volume

import (
	"math"

	"github.com/soypat/tpms"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"
)

// truncate is the kernel half-width in standard deviations.
const truncate = 4.0

// maxDirectRadius bounds the kernel radius summed term by term when folding.
// Wider kernels are folded with the Poisson summation formula.
const maxDirectRadius = 1 << 20

// Smooth returns a copy of v blurred by a separable Gaussian of standard
// deviation sigma, in lattice units. The volume is convolved along the
// first, second and third axis in that order. Samples outside the volume
// are obtained by mirroring about the edge, the edge sample included
// (d c b a | a b c d | d c b a). A zero sigma returns an unfiltered copy.
func Smooth(v *Volume, sigma float64, workers int) (*Volume, error) {
	if err := tpms.ValidateSigma(sigma); err != nil {
		return nil, err
	}
	if kernelRadius(sigma) == 0 {
		return v.Clone(), nil
	}
	nx, ny, nz := v.Dims()
	src := v.Clone()
	dst := v.Clone()
	for axis, n := range [3]int{nx, ny, nz} {
		kernel := axisKernel(sigma, n)
		if err := convolveAxis(dst, src, axis, kernel, workerCount(workers)); err != nil {
			return nil, err
		}
		src, dst = dst, src
	}
	return src, nil
}

// kernelRadius returns floor(truncate*sigma+0.5). It is kept as a float
// since it may not fit an int for large sigma.
func kernelRadius(sigma float64) float64 {
	return math.Floor(truncate*sigma + 0.5)
}

// axisKernel returns the kernel applied along an axis of n samples. Kernels
// reaching past the axis are folded onto the 2n periodic reflected line,
// giving 2n taps for offsets -n through n-1, so their size depends only on n.
func axisKernel(sigma float64, n int) []float64 {
	if kernelRadius(sigma) < float64(n) {
		return gaussianKernel(sigma)
	}
	return foldedKernel(sigma, n)
}

// gaussianKernel returns the normalized 1D kernel of radius int(truncate*sigma+0.5).
// The radius must fit an int.
func gaussianKernel(sigma float64) []float64 {
	radius := int(kernelRadius(sigma))
	if sigma == 0 || radius == 0 {
		return []float64{1}
	}
	norm := distuv.Normal{Mu: 0, Sigma: sigma}
	kernel := make([]float64, 2*radius+1)
	var sum float64
	for i := range kernel {
		kernel[i] = norm.Prob(float64(i - radius))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// foldedKernel sums the Gaussian weights of every offset congruent modulo 2n.
// Index m holds the weight of offset m-n.
func foldedKernel(sigma float64, n int) []float64 {
	period := 2 * n
	kernel := make([]float64, period)
	if r := kernelRadius(sigma); r <= maxDirectRadius {
		radius := int(r)
		norm := distuv.Normal{Mu: 0, Sigma: sigma}
		for d := -radius; d <= radius; d++ {
			m := (d + n) % period
			if m < 0 {
				m += period
			}
			kernel[m] += norm.Prob(float64(d))
		}
	} else {
		// Periodized Gaussian as a cosine series, terms decay as exp(-j²).
		P := float64(period)
		for m := range kernel {
			off := float64(m - n)
			w := 1.0
			for j := 1; ; j++ {
				fj := float64(j)
				a := math.Exp(-2 * math.Pi * math.Pi * (sigma * fj / P) * (sigma * fj / P))
				if a < 1e-18 {
					break
				}
				w += 2 * a * math.Cos(2*math.Pi*fj*off/P)
			}
			kernel[m] = w
		}
	}
	var sum float64
	for _, w := range kernel {
		sum += w
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// convolveAxis filters every line of src parallel to axis and writes the result to dst.
func convolveAxis(dst, src *Volume, axis int, kernel []float64, workers int) error {
	nx, ny, nz := src.Dims()
	var (
		n, stride           int // line length and element stride.
		nOuter, outerStride int
		nInner, innerStride int
	)
	switch axis {
	case 0:
		n, stride = nx, ny*nz
		nOuter, outerStride = ny, nz
		nInner, innerStride = nz, 1
	case 1:
		n, stride = ny, nz
		nOuter, outerStride = nx, ny*nz
		nInner, innerStride = nz, 1
	case 2:
		n, stride = nz, 1
		nOuter, outerStride = nx, ny*nz
		nInner, innerStride = ny, nz
	default:
		panic("bad axis")
	}
	radius := len(kernel) / 2
	in, out := src.data, dst.data
	var group errgroup.Group
	group.SetLimit(workers)
	for o := 0; o < nOuter; o++ {
		group.Go(func() error {
			line := make([]float64, n)
			for inner := 0; inner < nInner; inner++ {
				start := o*outerStride + inner*innerStride
				for p := range line {
					line[p] = in[start+p*stride]
				}
				for p := 0; p < n; p++ {
					var acc float64
					for q, w := range kernel {
						acc += w * line[reflect(p+q-radius, n)]
					}
					out[start+p*stride] = acc
				}
			}
			return nil
		})
	}
	return group.Wait()
}

// reflect folds index i into [0,n) mirroring about the edges, edge sample repeated.
func reflect(i, n int) int {
	if i >= 0 && i < n {
		return i
	}
	period := 2 * n
	m := i % period
	if m < 0 {
		m += period
	}
	if m >= n {
		m = period - 1 - m
	}
	return m
}
