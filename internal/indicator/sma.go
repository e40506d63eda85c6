package indicator

// SMA: простая скользящая средняя. Не определена для индексов < window-1.
func SMA(values []float64, window int) (Series, error) {
	if err := checkWindow(window); err != nil {
		return nil, err
	}
	out := undefined(len(values))
	if len(values) < window {
		return out, nil
	}

	// сумма пересчитывается по окну целиком, чтобы NaN не «залипал» в накопителе
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		for _, v := range values[i-window+1 : i+1] {
			sum += v
		}
		out[i] = sum / float64(window)
	}
	return out, nil
}

// RollingMean: среднее по окну, включая текущий бар. Используется для базы объёма.
func RollingMean(values []float64, window int) (Series, error) {
	return SMA(values, window)
}
