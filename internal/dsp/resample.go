package dsp

import "math"

// Cubic Hermite interpolation constants.
const (
	// hermite basis coefficients, formula y = ((a*x + b)*x + c)*x + d
	hermiteCoeff0_5 = 0.5
	hermiteCoeff1_5 = 1.5
	hermiteCoeff2_5 = 2.5
)

// CubicResampler converts a sample stream between rates using 4-point,
// 3rd-order Hermite interpolation. The upmixer processes at a fixed rate,
// so this is only used to adapt decoder output before synthesis; spectral
// quality requirements there are modest and cubic interpolation keeps the
// decode path dependency-light and allocation-cheap.
//
// One instance per channel; it carries a sliding 4-sample history window.
type CubicResampler struct {
	ratio   float64
	phase   float64
	history [4]float64
}

// NewCubicResampler creates a resampler producing outputRate samples for
// every inputRate samples consumed.
func NewCubicResampler(inputRate, outputRate float64) *CubicResampler {
	return &CubicResampler{ratio: outputRate / inputRate}
}

// Process resamples input and returns the converted samples.
func (c *CubicResampler) Process(input []float64) []float64 {
	if len(input) == 0 {
		return nil
	}

	output := make([]float64, 0, int(math.Ceil(float64(len(input))*c.ratio)))

	for _, sample := range input {
		// Shift history window
		c.history[3] = c.history[2]
		c.history[2] = c.history[1]
		c.history[1] = c.history[0]
		c.history[0] = sample

		for c.phase < 1.0 {
			output = append(output, c.interpolate(c.phase))
			c.phase += 1.0 / c.ratio
		}
		c.phase -= 1.0
	}

	return output
}

// interpolate evaluates the Hermite polynomial at fractional position x
// between the two middle history points.
func (c *CubicResampler) interpolate(x float64) float64 {
	y0 := c.history[3] // oldest
	y1 := c.history[2]
	y2 := c.history[1]
	y3 := c.history[0] // newest

	coefA := -hermiteCoeff0_5*y0 + hermiteCoeff1_5*y1 - hermiteCoeff1_5*y2 + hermiteCoeff0_5*y3
	coefB := y0 - hermiteCoeff2_5*y1 + 2*y2 - hermiteCoeff0_5*y3
	coefC := -hermiteCoeff0_5*y0 + hermiteCoeff0_5*y2
	coefD := y1

	return ((coefA*x+coefB)*x+coefC)*x + coefD
}

// Ratio returns the conversion ratio (output rate / input rate).
func (c *CubicResampler) Ratio() float64 {
	return c.ratio
}

// Reset clears the history window and phase accumulator.
func (c *CubicResampler) Reset() {
	c.phase = 0
	c.history = [4]float64{}
}
