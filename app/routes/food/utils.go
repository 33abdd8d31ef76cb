package food

import (
	"math"
	"strconv"
	"strings"

	"github.com/remyvnkhiemtruong/traixuan/app/apperr"
)

const (
	msgMissingFields = "Vui lòng nhập tên món và giá bán"
	msgBadPrice      = "Giá bán không hợp lệ"
	msgNotFound      = "Không tìm thấy món ăn"
)

// ParsePrice reads a VND amount such as "25.000" or "25,000". Thousands
// separators and spaces are ignored; what remains must be a non-negative
// integer.
func ParsePrice(raw string) (int, error) {
	digits := strings.Map(func(r rune) rune {
		switch r {
		case ',', '.', ' ', '\t', ' ':
			return -1
		}
		return r
	}, raw)
	if digits == "" {
		return 0, apperr.Validation(msgBadPrice)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, apperr.Validation(msgBadPrice)
		}
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n > math.MaxInt32 {
		return 0, apperr.Validation(msgBadPrice)
	}
	return int(n), nil
}

// optional returns nil for a blank value.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
