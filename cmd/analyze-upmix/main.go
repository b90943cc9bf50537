// Command analyze-upmix prints the magnitude response of the synthesis
// filter bank. Useful when retuning cutoffs or Q factors: it shows the
// passband edges and stopband attenuation each surround channel actually
// gets at the 44.1kHz processing rate.
package main

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tphakala/go-audio-upmixer/internal/dsp"
	"github.com/tphakala/go-audio-upmixer/internal/simdops"
)

const (
	sampleRate = 44100.0

	// Impulse response length for the FFT. At 44.1kHz an 8192-point
	// response resolves ~5.4Hz per bin, enough for the 120Hz LFE corner.
	irLength = 8192
)

func main() {
	bank := dsp.NewFilterBank(sampleRate)

	fmt.Println("=== Upmix Filter Bank Response (44100 Hz) ===")
	fmt.Println()

	analyze("LFE low-pass", bank.LFE, []float64{20, 60, 120, 200, 500, 1000})
	analyze("Rear high-pass", bank.Rear, []float64{50, 100, 200, 400, 1000, 4000})
	analyze("Side band-pass", bank.Side, []float64{200, 750, 1500, 3000, 6000, 12000})
}

func analyze(name string, f *dsp.Biquad, probes []float64) {
	ir := f.ImpulseResponse(irLength)

	// DC gain is just the impulse response sum.
	dc := simdops.For[float64]().Sum(ir)

	fft := fourier.NewFFT(irLength)
	spectrum := fft.Coefficients(nil, ir)

	b0, b1, b2, a1, a2 := f.Coefficients()

	fmt.Printf("%s\n", name)
	fmt.Printf("  coefficients: b=[%.8f %.8f %.8f] a=[1 %.8f %.8f]\n", b0, b1, b2, a1, a2)
	fmt.Printf("  DC gain: %.6f (%.2f dB)\n", dc, toDB(math.Abs(dc)))
	fmt.Printf("  response:\n")
	for _, hz := range probes {
		mag := magnitudeAt(spectrum, hz)
		fmt.Printf("    %8.0f Hz  %10.6f  (%7.2f dB)\n", hz, mag, toDB(mag))
	}
	if lo, hi, ok := halfPowerEdges(spectrum); ok {
		fmt.Printf("  -3dB edges: %.1f Hz .. %.1f Hz\n", lo, hi)
	}
	fmt.Println()
}

// magnitudeAt reads the spectrum bin closest to hz.
func magnitudeAt(spectrum []complex128, hz float64) float64 {
	bin := int(math.Round(hz / sampleRate * irLength))
	if bin >= len(spectrum) {
		bin = len(spectrum) - 1
	}
	return cmplx.Abs(spectrum[bin])
}

// halfPowerEdges scans for the lowest and highest frequencies where the
// magnitude crosses 1/sqrt(2) of the peak.
func halfPowerEdges(spectrum []complex128) (lo, hi float64, ok bool) {
	peak := 0.0
	for _, c := range spectrum {
		if m := cmplx.Abs(c); m > peak {
			peak = m
		}
	}
	if peak == 0 {
		return 0, 0, false
	}
	threshold := peak / math.Sqrt2

	loBin, hiBin := -1, -1
	for i, c := range spectrum {
		if cmplx.Abs(c) >= threshold {
			if loBin < 0 {
				loBin = i
			}
			hiBin = i
		}
	}
	if loBin < 0 {
		return 0, 0, false
	}
	binHz := sampleRate / irLength
	return float64(loBin) * binHz, float64(hiBin) * binHz, true
}

func toDB(mag float64) float64 {
	if mag <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(mag)
}
