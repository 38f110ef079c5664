package stt

import "math"

// Audio conditioning applied to captured samples before transcription.
// Quiet noise is gated out, high frequencies boosted, and the peak
// normalized so Whisper sees a consistent level.
const (
	normalizePeak    = 0.85
	preEmphasisCoeff = 0.95
	gateThreshold    = 0.005
)

// Int16ToFloat converts PCM samples to the [-1, 1] range.
func Int16ToFloat(samples []int16) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s) / 32768.0
	}
	return out
}

// FloatToInt16 converts [-1, 1] samples back to PCM, clipping overs.
func FloatToInt16(samples []float64) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		out[i] = int16(s * 32767)
	}
	return out
}

// RMS returns the root mean square level of the samples.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// NoiseGate zeroes samples below the threshold.
func NoiseGate(samples []float64, threshold float64) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		if math.Abs(s) >= threshold {
			out[i] = s
		}
	}
	return out
}

// PreEmphasis applies a first-order high-pass filter.
func PreEmphasis(samples []float64, coeff float64) []float64 {
	if len(samples) == 0 {
		return nil
	}
	out := make([]float64, len(samples))
	out[0] = samples[0]
	for i := 1; i < len(samples); i++ {
		out[i] = samples[i] - coeff*samples[i-1]
	}
	return out
}

// Normalize scales samples so the absolute peak hits the target.
// Silence is returned unchanged.
func Normalize(samples []float64, peak float64) []float64 {
	var max float64
	for _, s := range samples {
		if a := math.Abs(s); a > max {
			max = a
		}
	}
	if max == 0 {
		return samples
	}
	scale := peak / max
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s * scale
	}
	return out
}

// Condition runs the capture pipeline: gate, pre-emphasis, normalize.
func Condition(samples []float64) []float64 {
	samples = NoiseGate(samples, gateThreshold)
	samples = PreEmphasis(samples, preEmphasisCoeff)
	return Normalize(samples, normalizePeak)
}
