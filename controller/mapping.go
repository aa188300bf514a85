package controller

// MapRange maps x linearly from [a, b] onto [c, d], truncating toward zero.
// Steering, forward throttle and reverse throttle all go through this one
// function so the three respond with the same curve.
func MapRange(x, a, b, c, d int) int {
	return int(float64(x-a)/float64(b-a)*float64(d-c) + float64(c))
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
