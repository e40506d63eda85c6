package indicator

// EMA: экспоненциальная средняя с затравкой SMA(window) на индексе window-1,
// дальше EMA = price*k + EMA_prev*(1-k), k = 2/(window+1).
func EMA(values []float64, window int) (Series, error) {
	if err := checkWindow(window); err != nil {
		return nil, err
	}
	out := undefined(len(values))
	if len(values) < window {
		return out, nil
	}

	sum := 0.0
	for _, v := range values[:window] {
		sum += v
	}
	cur := sum / float64(window)
	out[window-1] = cur

	k := 2.0 / float64(window+1)
	for i := window; i < len(values); i++ {
		cur = values[i]*k + cur*(1-k)
		out[i] = cur
	}
	return out, nil
}
