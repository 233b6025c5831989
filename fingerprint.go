package imagededup

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sort"
	"strings"

	"github.com/corona10/goimagehash"
	"golang.org/x/image/draw"
)

// ErrUnknownAlgorithm is returned by ParseAlgorithm for names outside the
// supported set.
var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

// Algorithm selects the perceptual hash used to group images.
type Algorithm int

const (
	AlgoWavelet    Algorithm = iota // whash: Haar wavelet hash (default)
	AlgoAverage                     // ahash: average hash
	AlgoPerception                  // phash: DCT perceptual hash
	AlgoDifference                  // dhash: gradient hash
)

var algorithmNames = map[Algorithm]string{
	AlgoWavelet:    "whash",
	AlgoAverage:    "ahash",
	AlgoPerception: "phash",
	AlgoDifference: "dhash",
}

func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// AlgorithmNames lists the accepted algorithm names in declaration order.
func AlgorithmNames() []string {
	return []string{"whash", "ahash", "phash", "dhash"}
}

// ParseAlgorithm maps a name such as "phash" to its Algorithm.
// Matching ignores case and surrounding space.
func ParseAlgorithm(name string) (Algorithm, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for a, n := range algorithmNames {
		if n == want {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownAlgorithm, name, strings.Join(AlgorithmNames(), ", "))
}

// Fingerprint is the grouping key for perceptually identical images. Two
// fingerprints are equal only when produced by the same algorithm.
type Fingerprint struct {
	algo  Algorithm
	value uint64
}

func (f Fingerprint) String() string {
	return fmt.Sprintf("%s:%016x", f.algo, f.value)
}

// Hasher turns a decoded image into a Fingerprint.
type Hasher interface {
	Fingerprint(img image.Image) (Fingerprint, error)
}

// Fingerprint hashes img with the selected algorithm.
func (a Algorithm) Fingerprint(img image.Image) (Fingerprint, error) {
	var (
		h   *goimagehash.ImageHash
		err error
	)
	switch a {
	case AlgoWavelet:
		return Fingerprint{algo: a, value: waveletHash(img)}, nil
	case AlgoAverage:
		h, err = goimagehash.AverageHash(img)
	case AlgoPerception:
		h, err = goimagehash.PerceptionHash(img)
	case AlgoDifference:
		h, err = goimagehash.DifferenceHash(img)
	default:
		return Fingerprint{}, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(a))
	}
	if err != nil {
		return Fingerprint{}, fmt.Errorf("%s: %w", a, err)
	}
	return Fingerprint{algo: a, value: h.GetHash()}, nil
}

const (
	waveletScale = 64 // side of the downscaled grayscale image
	waveletSide  = 8  // side of the low-frequency block kept for the hash
)

// waveletHash computes a 64-bit Haar wavelet hash. The image is reduced to a
// waveletScale square in grayscale, its DC coefficient is removed, and the
// low-frequency band of size waveletSide is thresholded against its median.
func waveletHash(img image.Image) uint64 {
	gray := image.NewGray(image.Rect(0, 0, waveletScale, waveletScale))
	draw.CatmullRom.Scale(gray, gray.Bounds(), img, img.Bounds(), draw.Src, nil)

	m := make([][]float64, waveletScale)
	for y := range waveletScale {
		m[y] = make([]float64, waveletScale)
		for x := range waveletScale {
			m[y][x] = float64(gray.GrayAt(x, y).Y) / 255
		}
	}

	haarForward(m, 1)
	m[0][0] = 0
	haarInverse(m)
	haarForward(m, waveletSide)

	coefs := make([]float64, 0, waveletSide*waveletSide)
	for y := range waveletSide {
		coefs = append(coefs, m[y][:waveletSide]...)
	}
	median := medianOf(coefs)

	var hash uint64
	for i, c := range coefs {
		if c > median {
			hash |= 1 << uint(len(coefs)-1-i)
		}
	}
	return hash
}

// haarForward decomposes the square matrix m in place until the
// low-frequency band is stop wide.
func haarForward(m [][]float64, stop int) {
	for size := len(m); size > stop; size /= 2 {
		haarLevel(m, size, haarStep)
	}
}

// haarInverse fully reconstructs a matrix decomposed down to a single
// coefficient.
func haarInverse(m [][]float64) {
	for size := 2; size <= len(m); size *= 2 {
		haarLevel(m, size, haarUnstep)
	}
}

// haarLevel applies step to every row and column of the top-left size block.
func haarLevel(m [][]float64, size int, step func([]float64)) {
	for y := range size {
		step(m[y][:size])
	}
	col := make([]float64, size)
	for x := range size {
		for y := range size {
			col[y] = m[y][x]
		}
		step(col)
		for y := range size {
			m[y][x] = col[y]
		}
	}
}

func haarStep(v []float64) {
	half := len(v) / 2
	out := make([]float64, len(v))
	for i := range half {
		out[i] = (v[2*i] + v[2*i+1]) / math.Sqrt2
		out[half+i] = (v[2*i] - v[2*i+1]) / math.Sqrt2
	}
	copy(v, out)
}

func haarUnstep(v []float64) {
	half := len(v) / 2
	out := make([]float64, len(v))
	for i := range half {
		a, d := v[i], v[half+i]
		out[2*i] = (a + d) / math.Sqrt2
		out[2*i+1] = (a - d) / math.Sqrt2
	}
	copy(v, out)
}

func medianOf(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
