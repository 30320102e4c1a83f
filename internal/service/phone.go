package service

import "strings"

// NormalizePhone приводит телефон к виду "+<цифры>".
// Допускаются пробелы, скобки, дефисы и точки; префикс 00 заменяется на +.
func NormalizePhone(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "00") {
		s = "+" + s[2:]
	}

	var b strings.Builder
	b.Grow(len(s) + 1)
	b.WriteByte('+')
	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return "", invalid("phone", "unexpected character %q", r)
		}
	}
	if digits < 10 || digits > 15 {
		return "", invalid("phone", "must contain 10 to 15 digits")
	}
	return b.String(), nil
}
