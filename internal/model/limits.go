package model

import "unicode/utf8"

// 入力値の上限。スキーマの列定義と一致させること。
const (
	MaxCompanyNameLength = 255
	MaxEmailLength       = 320
	MaxPersonNameLength  = 100
	MaxPlateLength       = 32
	MaxLabelLength       = 255

	// MaxLimitDaily はNUMERIC(12,2)に収まる最大値。
	MaxLimitDaily = 9999999999.99
)

// TooLong はsがmax文字を超えるかを返す。VARCHARと同じく文字数で数える。
func TooLong(s string, max int) bool {
	return utf8.RuneCountInString(s) > max
}
