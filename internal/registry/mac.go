package registry

import "strings"

// CanonicalMAC normalizes a MAC address to colon-separated uppercase hex
// octets ("AA:BB:CC:DD:EE:FF"). Input may use any separator and any case.
// Returns an empty string if the input contains no hex digits.
func CanonicalMAC(mac string) string {
	cleaned := stripNonHex(mac)
	if cleaned == "" {
		return ""
	}

	var b strings.Builder
	for i := 0; i < len(cleaned); i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}
		end := i + 2
		if end > len(cleaned) {
			end = len(cleaned)
		}
		b.WriteString(cleaned[i:end])
	}
	return b.String()
}

func stripNonHex(mac string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(mac) {
		if (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
