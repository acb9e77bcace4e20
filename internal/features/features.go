// Package features turns trajectories into fixed-length feature vectors.
//
// Schema for a trajectory of n positions:
//
//	lag == 0   n values: positions rebased to x0 = 0, divided by the standard
//	           deviation of unit increments
//	lag  > 0   n-lag values: displacements x(i+lag) - x(i), divided by their
//	           standard deviation
//
// followed by four summary values in this order: the time-averaged MSD
// exponent, the fraction of zero unit increments, the normalised maximum
// excursion and the low-frequency slope of the increment power spectrum. All trajectories of a dataset share n and lag, hence the length.
package features

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"
	"github.com/montanaflynn/stats"

	"github.com/san-kum/anombench/internal/diffusion"
)

// SummaryLen is the number of summary values appended to every vector.
const SummaryLen = 4

// maxMSDLag bounds the lags used to fit the TAMSD exponent.
const maxMSDLag = 10

type Vector []float64

// Len returns the feature vector length for trajectories of n positions.
func Len(n, lag int) int {
	if lag > 0 {
		return n - lag + SummaryLen
	}
	return n + SummaryLen
}

// Extract computes the feature vector of traj.
func Extract(traj diffusion.Trajectory, lag int) (Vector, error) {
	n := len(traj)
	switch {
	case n == 0:
		return nil, fmt.Errorf("%w: empty trajectory", diffusion.ErrInvalidTrajectory)
	case lag < 0:
		return nil, fmt.Errorf("%w: negative lag window %d", diffusion.ErrInvalidTrajectory, lag)
	case lag > 0 && n <= lag:
		return nil, fmt.Errorf("%w: %d positions do not cover lag window %d", diffusion.ErrInvalidTrajectory, n, lag)
	case !traj.IsValid():
		return nil, fmt.Errorf("%w: non-finite position", diffusion.ErrInvalidTrajectory)
	}

	inc := traj.Increments()
	sigma := scale(inc)

	out := make(Vector, 0, Len(n, lag))
	if lag == 0 {
		for _, x := range traj {
			out = append(out, (x-traj[0])/sigma)
		}
	} else {
		disp := Displacements(traj, lag)
		s := scale(disp)
		for _, d := range disp {
			out = append(out, d/s)
		}
	}

	out = append(out, msdExponent(traj), restFraction(inc), excursion(traj, sigma), spectralSlope(inc))
	return out, nil
}

// Displacements returns x(i+lag) - x(i) over a sliding window.
func Displacements(traj diffusion.Trajectory, lag int) []float64 {
	if lag <= 0 || len(traj) <= lag {
		return nil
	}
	out := make([]float64, len(traj)-lag)
	for i := range out {
		out[i] = traj[i+lag] - traj[i]
	}
	return out
}

// scale is the population standard deviation, or 1 when it is undefined or zero.
func scale(xs []float64) float64 {
	if len(xs) == 0 {
		return 1
	}
	sd, err := stats.StandardDeviationPopulation(xs)
	if err != nil || sd == 0 || math.IsNaN(sd) {
		return 1
	}
	return sd
}

// msdExponent fits log TAMSD(tau) against log tau by least squares.
func msdExponent(traj diffusion.Trajectory) float64 {
	n := len(traj)
	maxLag := n / 4
	if maxLag > maxMSDLag {
		maxLag = maxMSDLag
	}
	if maxLag < 1 {
		maxLag = 1
	}

	var xs, ys []float64
	for tau := 1; tau <= maxLag && tau < n; tau++ {
		disp := Displacements(traj, tau)
		sq := make([]float64, len(disp))
		for i, d := range disp {
			sq[i] = d * d
		}
		m, err := stats.Mean(sq)
		if err != nil || m <= 0 {
			continue
		}
		xs = append(xs, math.Log(float64(tau)))
		ys = append(ys, math.Log(m))
	}
	if len(xs) < 2 {
		return 0
	}
	return slope(xs, ys)
}

func slope(xs, ys []float64) float64 {
	mx, _ := stats.Mean(xs)
	my, _ := stats.Mean(ys)
	var num, den float64
	for i := range xs {
		num += (xs[i] - mx) * (ys[i] - my)
		den += (xs[i] - mx) * (xs[i] - mx)
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func restFraction(inc []float64) float64 {
	if len(inc) == 0 {
		return 0
	}
	zeros := 0
	for _, d := range inc {
		if d == 0 {
			zeros++
		}
	}
	return float64(zeros) / float64(len(inc))
}

func excursion(traj diffusion.Trajectory, sigma float64) float64 {
	abs := make([]float64, len(traj))
	for i, x := range traj {
		abs[i] = math.Abs(x - traj[0])
	}
	m, err := stats.Max(abs)
	if err != nil {
		return 0
	}
	return m / (sigma * math.Sqrt(float64(len(traj))))
}

// spectralSlope fits log power against log frequency over the periodogram of
// the centred increments, DC excluded. Increments of an exponent-alpha
// process have power ~ f^(1-alpha).
func spectralSlope(inc []float64) float64 {
	if len(inc) < 4 {
		return 0
	}
	mean, err := stats.Mean(inc)
	if err != nil {
		return 0
	}
	centred := make([]float64, len(inc))
	for i, d := range inc {
		centred[i] = d - mean
	}

	spec := fft.FFTReal(centred)
	var xs, ys []float64
	for k := 1; k <= len(spec)/2; k++ {
		p := real(spec[k])*real(spec[k]) + imag(spec[k])*imag(spec[k])
		if p <= 0 {
			continue
		}
		xs = append(xs, math.Log(float64(k)))
		ys = append(ys, math.Log(p))
	}
	if len(xs) < 2 {
		return 0
	}
	return slope(xs, ys)
}
