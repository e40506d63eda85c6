// Package indicator считает индикаторы по целой серии за один проход.
//
// Результат: Series, выровненная по индексу с входом; NaN означает
// «не определено» (прогрев окна или NaN во входе). Функции чистые и
// безопасны для параллельного вызова по разным символам.
package indicator

import (
	"fmt"
	"math"

	"signal_bot/internal/models"
)

// Series: значения индикатора по индексам исходной серии.
type Series []float64

// Defined: есть ли значение на индексе i.
func (s Series) Defined(i int) bool {
	return i >= 0 && i < len(s) && !math.IsNaN(s[i])
}

// At возвращает значение или NaN за пределами серии.
func (s Series) At(i int) float64 {
	if i < 0 || i >= len(s) {
		return math.NaN()
	}
	return s[i]
}

// Last: последнее значение, NaN для пустой серии.
func (s Series) Last() float64 { return s.At(len(s) - 1) }

func undefined(n int) Series {
	out := make(Series, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func checkWindow(window int) error {
	if window <= 0 {
		return fmt.Errorf("%w: window must be > 0, got %d", models.ErrInvalidConfig, window)
	}
	return nil
}
