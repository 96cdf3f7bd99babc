package utils

import "strings"

// LocalFormat rewrites a free-form Kenyan phone number into the local 07...
// form the payment gateway expects. It strips non-digits first, then:
// a 254-prefixed 12-digit number loses the country code for a leading 0,
// and a bare 9-digit subscriber number gains a leading 0. Anything else is
// returned as-is after digit stripping; the gateway performs final
// validation, so malformed input degrades to best effort instead of failing.
func LocalFormat(phone string) string {
	p := digitsOnly(phone)
	if strings.HasPrefix(p, "254") && len(p) == 12 {
		return "0" + p[3:]
	}
	if len(p) == 9 {
		return "0" + p
	}
	return p
}

// InternationalFormat rewrites a phone number into the 254... form used for
// display and dialing. Inverse of LocalFormat, same best-effort contract.
func InternationalFormat(phone string) string {
	p := digitsOnly(phone)
	switch {
	case strings.HasPrefix(p, "0"):
		return "254" + p[1:]
	case strings.HasPrefix(p, "7"), strings.HasPrefix(p, "1"):
		return "254" + p
	default:
		return p
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
