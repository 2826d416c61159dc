package calculator

import "math"

// RollingMax returns the maximum of values over an inclusive window ending at each index.
// Cells before the first full window are NaN. Indices marked in skip are left out of every
// window; a window with nothing left in it yields NaN.
//
// Runs in O(N) with a monotonic deque of indices.
func RollingMax(values []float64, window int, skip []bool) []float64 {
	return rolling(values, window, skip, func(a, b float64) bool { return a >= b })
}

// RollingMin is the minimum counterpart of RollingMax.
func RollingMin(values []float64, window int, skip []bool) []float64 {
	return rolling(values, window, skip, func(a, b float64) bool { return a <= b })
}

// Shift moves every value n positions later, filling the head with NaN.
func Shift(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		if i < n {
			out[i] = math.NaN()
			continue
		}
		out[i] = values[i-n]
	}
	return out
}

// rolling keeps deque values ordered so that the front always dominates the rest;
// dominates(a, b) reports whether a newer value a makes an older value b irrelevant.
func rolling(values []float64, window int, skip []bool, dominates func(a, b float64) bool) []float64 {
	out := make([]float64, len(values))
	dq := make([]int, 0, window)
	for i, v := range values {
		if len(dq) > 0 && dq[0] <= i-window {
			dq = dq[1:]
		}
		if !skipped(skip, i) {
			for len(dq) > 0 && dominates(v, values[dq[len(dq)-1]]) {
				dq = dq[:len(dq)-1]
			}
			dq = append(dq, i)
		}
		switch {
		case i < window-1, len(dq) == 0:
			out[i] = math.NaN()
		default:
			out[i] = values[dq[0]]
		}
	}
	return out
}

func skipped(skip []bool, i int) bool {
	return skip != nil && skip[i]
}
