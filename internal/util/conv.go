package util

import (
	"strconv"
	"strings"
)

// ParseID 解析正整数 ID，失败时返回 false
func ParseID(s string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
