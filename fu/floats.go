package fu

import "math"

func Mean(a []float64) float64 {
	var c float64
	for _, x := range a {
		c += x
	}
	return c / float64(len(a))
}

func Mse(a, b []float64) float64 {
	var c float64
	for i, x := range a {
		q := x - b[i]
		c += q * q
	}
	return c / float64(len(a))
}

func Flatnr(a [][]float64) []float64 {
	n := 0
	for _, x := range a {
		n += len(x)
	}
	r := make([]float64, n)
	i := 0
	for _, x := range a {
		copy(r[i:i+len(x)], x)
		i += len(x)
	}
	return r
}

func Argmin(a []float64) int {
	j := 0
	for i, x := range a {
		if x < a[j] {
			j = i
		}
	}
	return j
}

func Argmax(a []float64) int {
	j := 0
	for i, x := range a {
		if x > a[j] {
			j = i
		}
	}
	return j
}

// Linspace fills n+1 evenly spaced points over [lo,hi] inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	r := make([]float64, n+1)
	d := (hi - lo) / float64(n)
	for i := range r {
		r[i] = lo + float64(i)*d
	}
	r[n] = hi
	return r
}

func Absd(x float64) float64 {
	return math.Abs(x)
}
