package utils

import "strings"

// NormalizePhone canonicalizes a human-entered phone string into the
// E.164-like key used for storage and lookup: digits plus a single leading
// "+". Bare 10-digit numbers are assumed to be US/Canada. The function never
// fails and is idempotent; a number that is not deliverable surfaces later as
// a dispatch error, not here.
func NormalizePhone(raw string) string {
	trimmed := strings.TrimSpace(raw)
	hasPlus := strings.HasPrefix(trimmed, "+")

	var digits strings.Builder
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] >= '0' && trimmed[i] <= '9' {
			digits.WriteByte(trimmed[i])
		}
	}
	d := digits.String()

	if hasPlus {
		return "+" + d
	}
	if len(d) == 10 {
		return "+1" + d
	}
	// 11 digits starting with 1 is a US number with the country code typed
	// out; anything else just gets the prefix as-is.
	return "+" + d
}

// FormatPhoneForDisplay renders a normalized phone number the way the apps
// show it, e.g. "+15551234567" -> "+1 (555) 123-4567". Falls back to the
// input when the number is not a recognizable US format.
func FormatPhoneForDisplay(phone string) string {
	if phone == "" {
		return ""
	}

	var digits strings.Builder
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			digits.WriteByte(phone[i])
		}
	}
	d := digits.String()

	if len(d) == 10 {
		return "(" + d[0:3] + ") " + d[3:6] + "-" + d[6:]
	}
	if len(d) == 11 && d[0] == '1' {
		return "+1 (" + d[1:4] + ") " + d[4:7] + "-" + d[7:]
	}
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return "+" + phone
}
