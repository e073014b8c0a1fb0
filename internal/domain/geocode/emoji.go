package geocode

// FlagEmoji converts a two-letter ISO country code to its flag emoji by
// shifting each letter into the regional indicator range. Codes that are not
// two ASCII letters return an empty string.
func FlagEmoji(countryCode string) string {
	if len(countryCode) != 2 {
		return ""
	}

	const offset = 0x1F1E6 // regional indicator A

	out := make([]rune, 0, 2)
	for _, r := range countryCode {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, offset+r-'A')
		case r >= 'a' && r <= 'z':
			out = append(out, offset+r-'a')
		default:
			return ""
		}
	}
	return string(out)
}
