package abtest

import "math"

// chiSquared runs a chi-squared independence test over a Kx2
// contingency table of [conversions, non-conversions] rows.
// It returns ok=false when the table is degenerate (fewer than two
// rows, an empty row or column).
func chiSquared(table [][2]float64) (statistic, pValue float64, ok bool) {
	if len(table) < 2 {
		return 0, 0, false
	}

	rowTotals := make([]float64, len(table))
	var colTotals [2]float64
	var total float64
	for i, row := range table {
		rowTotals[i] = row[0] + row[1]
		colTotals[0] += row[0]
		colTotals[1] += row[1]
		total += rowTotals[i]
	}
	if total == 0 || colTotals[0] == 0 || colTotals[1] == 0 {
		return 0, 0, false
	}
	for _, rt := range rowTotals {
		if rt == 0 {
			return 0, 0, false
		}
	}

	for i, row := range table {
		for j := 0; j < 2; j++ {
			expected := rowTotals[i] * colTotals[j] / total
			diff := row[j] - expected
			statistic += diff * diff / expected
		}
	}

	dof := float64(len(table) - 1)
	pValue = gammaQ(dof/2, statistic/2)
	return statistic, pValue, true
}

// gammaQ is the regularized upper incomplete gamma function Q(a, x),
// which gives the chi-squared survival function for a = dof/2, x = chi2/2.
func gammaQ(a, x float64) float64 {
	if x < 0 || a <= 0 {
		return math.NaN()
	}
	if x == 0 {
		return 1
	}
	if x < a+1 {
		return 1 - gammaPSeries(a, x)
	}
	return gammaQContinuedFraction(a, x)
}

// series expansion of P(a, x), converges quickly for x < a+1
func gammaPSeries(a, x float64) float64 {
	const maxIter = 200
	const eps = 3e-14

	ap := a
	sum := 1.0 / a
	del := sum
	for i := 0; i < maxIter; i++ {
		ap++
		del *= x / ap
		sum += del
		if math.Abs(del) < math.Abs(sum)*eps {
			break
		}
	}
	lg, _ := math.Lgamma(a)
	return sum * math.Exp(-x+a*math.Log(x)-lg)
}

// Lentz continued fraction for Q(a, x), converges quickly for x >= a+1
func gammaQContinuedFraction(a, x float64) float64 {
	const maxIter = 200
	const eps = 3e-14
	const tiny = 1e-300

	b := x + 1 - a
	c := 1 / tiny
	d := 1 / b
	h := d
	for i := 1; i <= maxIter; i++ {
		an := -float64(i) * (float64(i) - a)
		b += 2
		d = an*d + b
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = b + an/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		del := d * c
		h *= del
		if math.Abs(del-1) < eps {
			break
		}
	}
	lg, _ := math.Lgamma(a)
	return math.Exp(-x+a*math.Log(x)-lg) * h
}
