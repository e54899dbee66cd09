package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// 空白、下划线、斜杠、点 → 连字符
	slugSeparatorRe = regexp.MustCompile(`[\s_/.]+`)
	slugInvalidRe   = regexp.MustCompile(`[^a-z0-9-]`)
	slugDashesRe    = regexp.MustCompile(`-+`)
)

// Slugify 生成 URL 安全的 slug，例如 "PHP Tips" → "php-tips"，"Café Crème" → "cafe-creme"
func Slugify(s string) string {
	// 去掉变音符号
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugSeparatorRe.ReplaceAllString(s, "-")
	s = slugInvalidRe.ReplaceAllString(s, "")
	s = slugDashesRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
