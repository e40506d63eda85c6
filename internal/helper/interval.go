package helper

import (
	"strings"
)

// NormTF приводит название таймфрейма к короткой форме: "4hour" -> "4h", "15min" -> "15m".
func NormTF(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	s = strings.TrimPrefix(s, "candle")
	switch s {
	case "60m", "1h", "1hour", "60min":
		return "1h"
	case "4h", "4hour", "240m", "240min":
		return "4h"
	case "15m", "15min":
		return "15m"
	case "5m", "5min":
		return "5m"
	case "1m", "1min":
		return "1m"
	case "30m", "30min":
		return "30m"
	case "1d", "1day", "d", "24h":
		return "1d"
	default:
		return s
	}
}

// NormTFs нормализует список с сохранением порядка и без дублей.
func NormTFs(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		tf := NormTF(r)
		if tf == "" {
			continue
		}
		if _, ok := seen[tf]; ok {
			continue
		}
		seen[tf] = struct{}{}
		out = append(out, tf)
	}
	return out
}
