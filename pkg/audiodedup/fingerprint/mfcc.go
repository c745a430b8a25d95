package fingerprint

import "math"

// logFloor guards the log of empty mel bands.
const logFloor = 1e-10

func hzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

func melToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// MelFilterbank builds numBands triangular filters spanning [0, sampleRate/2],
// equally spaced on the mel scale, over numBins positive-frequency FFT bins.
func MelFilterbank(numBands, numBins, windowSize, sampleRate int) [][]float64 {
	maxMel := hzToMel(float64(sampleRate) / 2.0)

	// Band edge center frequencies in FFT-bin space, numBands+2 points.
	edges := make([]float64, numBands+2)
	for i := range edges {
		hz := melToHz(maxMel * float64(i) / float64(numBands+1))
		edges[i] = hz * float64(windowSize) / float64(sampleRate)
	}

	bank := make([][]float64, numBands)
	for b := 0; b < numBands; b++ {
		filter := make([]float64, numBins)
		left, center, right := edges[b], edges[b+1], edges[b+2]
		for k := 0; k < numBins; k++ {
			bin := float64(k)
			switch {
			case bin > left && bin < center:
				filter[k] = (bin - left) / (center - left)
			case bin == center:
				filter[k] = 1.0
			case bin > center && bin < right:
				filter[k] = (right - bin) / (right - center)
			}
		}
		bank[b] = filter
	}
	return bank
}

// melLogEnergies applies the filterbank to one magnitude spectrum and returns
// the log of the per-band power energies.
func melLogEnergies(magnitude []float64, bank [][]float64) []float64 {
	out := make([]float64, len(bank))
	for b, filter := range bank {
		var energy float64
		for k, w := range filter {
			if w != 0 {
				energy += w * magnitude[k] * magnitude[k]
			}
		}
		out[b] = math.Log(math.Max(energy, logFloor))
	}
	return out
}

// DCT2 computes the orthonormal DCT-II of x and returns the first
// numCoefficients outputs. This is the decorrelating step that turns log-mel
// energies into cepstral coefficients.
func DCT2(x []float64, numCoefficients int) []float64 {
	n := len(x)
	if numCoefficients > n {
		numCoefficients = n
	}

	out := make([]float64, numCoefficients)
	scale := math.Sqrt(2.0 / float64(n))
	for i := 0; i < numCoefficients; i++ {
		var sum float64
		for j := 0; j < n; j++ {
			sum += x[j] * math.Cos(math.Pi*float64(i)*(2.0*float64(j)+1.0)/(2.0*float64(n)))
		}
		out[i] = sum * scale
	}
	if numCoefficients > 0 {
		out[0] /= math.Sqrt2
	}
	return out
}
