package utils

import (
	"math"

	"barrage/domain"
)

func FiniteVec(v domain.Vec2) bool {
	return isFinite(v.X) && isFinite(v.Y)
}

func isFinite(f float32) bool {
	f64 := float64(f)
	return !math.IsNaN(f64) && !math.IsInf(f64, 0)
}
