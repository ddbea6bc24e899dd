package amount

import (
	"strconv"
	"strings"
)

// FormatIndian renders v with two decimals and Indian digit grouping:
// the last three integer digits form one group and the digits before them
// are grouped in pairs, e.g. 12345678.9 becomes "1,23,45,678.90".
func FormatIndian(v float64) string {
	if v == 0 {
		v = 0 // normalize negative zero
	}

	s := strconv.FormatFloat(v, 'f', 2, 64)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	integer, fraction, ok := strings.Cut(s, ".")
	if !ok {
		// NaN and infinities have no decimal point
		return sign + s
	}

	if len(integer) <= 3 {
		return sign + integer + "." + fraction
	}

	head, lastThree := integer[:len(integer)-3], integer[len(integer)-3:]

	groups := make([]string, 0, len(head)/2+2)
	for len(head) > 2 {
		groups = append(groups, head[len(head)-2:])
		head = head[:len(head)-2]
	}
	groups = append(groups, head)

	var b strings.Builder
	b.WriteString(sign)
	for i := len(groups) - 1; i >= 0; i-- {
		b.WriteString(groups[i])
		b.WriteByte(',')
	}
	b.WriteString(lastThree)
	b.WriteByte('.')
	b.WriteString(fraction)
	return b.String()
}
