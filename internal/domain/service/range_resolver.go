package service

import "github.com/turtacn/suitability/internal/domain/models"

// ResolveRange returns the first bracket of ranges that contains value, scanning in the
// given order. When nothing matches, the last bracket is returned with matched=false so
// callers can flag the fallback. An empty table yields nil.
// ResolveRange 按给定顺序返回 ranges 中第一个包含 value 的区间。
// 没有匹配时返回最后一个区间并将 matched 置为 false；空表返回 nil。
func ResolveRange(value float64, ranges models.RangeTable) (bracket *models.RangeBracket, matched bool) {
	if len(ranges) == 0 {
		return nil, false
	}
	for i := range ranges {
		if ranges[i].Contains(value) {
			return &ranges[i], true
		}
	}
	return &ranges[len(ranges)-1], false
}
