package strategy

import "signal_bot/internal/models"

// Confirm возвращает общую сторону, только если все таймфреймы согласны.
// Любой NONE или расхождение: вето. Пустой набор: NONE.
func Confirm(sides ...models.Side) models.Side {
	if len(sides) == 0 {
		return models.SideNone
	}
	first := sides[0]
	if first == models.SideNone {
		return models.SideNone
	}
	for _, s := range sides[1:] {
		if s != first {
			return models.SideNone
		}
	}
	return first
}
