package indicator

// computeRSI implements Wilder's smoothed RSI over period. The first value
// is produced at index period using a simple mean of the first period price
// changes; subsequent values use Wilder's recursive average:
//
//	avg = (prev_avg*(period-1) + current) / period
//
// RSI = 100 - 100/(1+RS) with RS = avgGain/avgLoss; RSI is 100 when
// avgLoss == 0. Lookback is period.
func computeRSI(closes []float64, period int) []float64 {
	n := len(closes) - period
	if n <= 0 {
		return nil
	}

	gains := make([]float64, len(closes)-1)
	losses := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i-1] = change
		} else {
			losses[i-1] = -change
		}
	}

	avgGain, avgLoss := 0.0, 0.0
	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	out := make([]float64, n)
	out[0] = rsiFromAverages(avgGain, avgLoss)

	for j := 1; j < n; j++ {
		change := gains[period+j-1]
		loss := losses[period+j-1]
		avgGain = (avgGain*float64(period-1) + change) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[j] = rsiFromAverages(avgGain, avgLoss)
	}
	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
