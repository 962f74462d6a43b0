package filters

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"
)

// Biquad is one second-order section in direct form II transposed.
// A[0] is always 1.
type Biquad struct {
	B [3]float64 `json:"b"`
	A [3]float64 `json:"a"`
}

// dcGain returns H(z=1)
func (q Biquad) dcGain() float64 {
	den := q.A[0] + q.A[1] + q.A[2]
	if den == 0 {
		return 0
	}
	return (q.B[0] + q.B[1] + q.B[2]) / den
}

// response evaluates the section at normalized angular frequency w (rad/sample)
func (q Biquad) response(w float64) complex128 {
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1
	num := complex(q.B[0], 0) + complex(q.B[1], 0)*z1 + complex(q.B[2], 0)*z2
	den := complex(q.A[0], 0) + complex(q.A[1], 0)*z1 + complex(q.A[2], 0)*z2
	return num / den
}

// steadyState returns the initial state that makes the section's response
// to a unit step start in steady state
func (q Biquad) steadyState() [2]float64 {
	y := q.dcGain()
	return [2]float64{y - q.B[0], q.B[2] - q.A[2]*y}
}

// BandPass is a Butterworth band-pass filter stored as cascaded biquads
type BandPass struct {
	sections   []Biquad
	order      int
	lowCutoff  float64
	highCutoff float64
	sampleRate int
}

// NewButterworthBandPass designs a band-pass filter of the given prototype
// order. The resulting filter has 2*order poles. Cutoffs are in Hz and must
// satisfy 0 < low < high < sampleRate/2.
func NewButterworthBandPass(order int, lowCutoff, highCutoff float64, sampleRate int) (*BandPass, error) {
	if order < 1 {
		return nil, fmt.Errorf("filter order must be at least 1, got %d", order)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	nyquist := float64(sampleRate) / 2
	if lowCutoff <= 0 || highCutoff <= lowCutoff || highCutoff >= nyquist {
		return nil, fmt.Errorf("invalid band [%.1f, %.1f] Hz for nyquist %.1f Hz",
			lowCutoff, highCutoff, nyquist)
	}

	fs2 := 2 * float64(sampleRate)

	// Pre-warp the band edges for the bilinear transform
	wl := fs2 * math.Tan(math.Pi*lowCutoff/float64(sampleRate))
	wh := fs2 * math.Tan(math.Pi*highCutoff/float64(sampleRate))
	bw := wh - wl
	w0 := math.Sqrt(wl * wh)

	poles := make([]complex128, 0, 2*order)
	for k := range order {
		theta := math.Pi*float64(2*k+1)/float64(2*order) + math.Pi/2
		p := cmplx.Rect(1, theta)

		// Low-pass to band-pass: each prototype pole splits in two
		pb := p * complex(bw/2, 0)
		d := cmplx.Sqrt(pb*pb - complex(w0*w0, 0))
		for _, analog := range []complex128{pb + d, pb - d} {
			poles = append(poles, (complex(fs2, 0)+analog)/(complex(fs2, 0)-analog))
		}
	}

	sections, err := pairSections(poles)
	if err != nil {
		return nil, err
	}

	// Unit gain at the geometric band centre, distributed across sections
	center := 2 * math.Atan(w0/fs2)
	for i := range sections {
		mag := cmplx.Abs(sections[i].response(center))
		if mag == 0 || math.IsNaN(mag) || math.IsInf(mag, 0) {
			return nil, fmt.Errorf("degenerate filter section %d", i)
		}
		for j := range sections[i].B {
			sections[i].B[j] /= mag
		}
	}

	return &BandPass{
		sections:   sections,
		order:      order,
		lowCutoff:  lowCutoff,
		highCutoff: highCutoff,
		sampleRate: sampleRate,
	}, nil
}

// pairSections groups digital poles into second-order sections. Every
// section gets one zero at z=1 and one at z=-1.
func pairSections(poles []complex128) ([]Biquad, error) {
	const tol = 1e-10

	var complexPoles []complex128
	var realPoles []float64
	for _, p := range poles {
		switch {
		case math.Abs(imag(p)) <= tol*math.Max(1, cmplx.Abs(p)):
			realPoles = append(realPoles, real(p))
		case imag(p) > 0:
			complexPoles = append(complexPoles, p)
		}
	}
	if len(realPoles)%2 != 0 {
		return nil, fmt.Errorf("cannot pair %d real poles", len(realPoles))
	}
	if 2*len(complexPoles)+len(realPoles) != len(poles) {
		return nil, fmt.Errorf("unbalanced conjugate poles")
	}

	sections := make([]Biquad, 0, len(poles)/2)
	for _, p := range complexPoles {
		sections = append(sections, Biquad{
			B: [3]float64{1, 0, -1},
			A: [3]float64{1, -2 * real(p), real(p)*real(p) + imag(p)*imag(p)},
		})
	}

	sort.Float64s(realPoles)
	for i := 0; i < len(realPoles); i += 2 {
		p1, p2 := realPoles[i], realPoles[i+1]
		sections = append(sections, Biquad{
			B: [3]float64{1, 0, -1},
			A: [3]float64{1, -(p1 + p2), p1 * p2},
		})
	}

	return sections, nil
}

// Sections returns a copy of the filter's second-order sections
func (f *BandPass) Sections() []Biquad {
	out := make([]Biquad, len(f.sections))
	copy(out, f.sections)
	return out
}

// Order returns the prototype order
func (f *BandPass) Order() int {
	return f.order
}

// Response returns the magnitude response at frequency hz
func (f *BandPass) Response(hz float64) float64 {
	w := 2 * math.Pi * hz / float64(f.sampleRate)
	h := complex(1, 0)
	for _, s := range f.sections {
		h *= s.response(w)
	}
	return cmplx.Abs(h)
}

// Apply runs the filter forward once starting from rest
func (f *BandPass) Apply(x []float64) []float64 {
	return f.run(x, nil)
}

// FiltFilt runs the filter forward and then backward so the output has no
// phase shift. The signal is extended by odd reflection at both ends and
// each pass starts from the steady state of its first sample.
func (f *BandPass) FiltFilt(x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return []float64{}
	}

	padlen := 3 * (2*len(f.sections) + 1)
	if padlen > n-1 {
		padlen = n - 1
	}

	ext := make([]float64, 0, n+2*padlen)
	for i := padlen; i >= 1; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}
	ext = append(ext, x...)
	for i := n - 2; i >= n-1-padlen; i-- {
		ext = append(ext, 2*x[n-1]-x[i])
	}

	zi := f.steadyState()

	y := f.run(ext, scaled(zi, ext[0]))
	reverse(y)
	y = f.run(y, scaled(zi, y[0]))
	reverse(y)

	out := make([]float64, n)
	copy(out, y[padlen:padlen+n])
	return out
}

func (f *BandPass) steadyState() [][2]float64 {
	zi := make([][2]float64, len(f.sections))
	scale := 1.0
	for i, s := range f.sections {
		ss := s.steadyState()
		zi[i] = [2]float64{ss[0] * scale, ss[1] * scale}
		scale *= s.dcGain()
	}
	return zi
}

func (f *BandPass) run(x []float64, zi [][2]float64) []float64 {
	y := make([]float64, len(x))
	copy(y, x)

	for i, s := range f.sections {
		var z0, z1 float64
		if zi != nil {
			z0, z1 = zi[i][0], zi[i][1]
		}
		for n, in := range y {
			out := s.B[0]*in + z0
			z0 = s.B[1]*in - s.A[1]*out + z1
			z1 = s.B[2]*in - s.A[2]*out
			y[n] = out
		}
	}

	return y
}

func scaled(zi [][2]float64, v float64) [][2]float64 {
	out := make([][2]float64, len(zi))
	for i, z := range zi {
		out[i] = [2]float64{z[0] * v, z[1] * v}
	}
	return out
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
