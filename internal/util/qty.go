package util

import (
	"strconv"
	"strings"
)

// ParseQuantity reads a data-quantity attribute. Only positive integers count.
func ParseQuantity(input string) (int, bool) {
	value := strings.TrimSpace(input)
	if value == "" {
		return 0, false
	}
	qty, err := strconv.Atoi(value)
	if err != nil || qty <= 0 {
		return 0, false
	}
	return qty, true
}

func ParseScore(input string) (float64, bool) {
	value := strings.TrimSpace(input)
	if value == "" {
		return 0, false
	}
	score, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return score, true
}
