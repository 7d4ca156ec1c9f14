package relay

import "strings"

const upperhex = "0123456789ABCDEF"

// escapeComponent percent-encodes s as a single URI component. Only ASCII letters, digits
// and -_.!~*'() are left as is, so reserved characters such as +&=:@$ never reach
// the relay unescaped.
func escapeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if keepInComponent(c) {
			b.WriteByte(c)
			continue
		}

		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}

	return b.String()
}

func keepInComponent(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}

	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}

	return false
}
