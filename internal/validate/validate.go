// Package validate holds the intake field validators.
package validate

// Blacklisted phone tails that Telegram spam bots are known to submit.
var blockedPhoneTails = map[string]struct{}{
	"1234567890": {},
	"9990000000": {},
}

// Phone reports whether s is a valid contact number: exactly 11 digits,
// starting with 8, and not one of the blocked tails.
func Phone(s string) bool {
	if len(s) != 11 || s[0] != '8' {
		return false
	}
	if !allDigits(s) {
		return false
	}
	_, blocked := blockedPhoneTails[s[1:]]
	return !blocked
}

// TaxID reports whether s looks like a Russian INN: exactly 10 digits for
// organizations or 12 for individual entrepreneurs.
func TaxID(s string) bool {
	if len(s) != 10 && len(s) != 12 {
		return false
	}
	return allDigits(s)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
