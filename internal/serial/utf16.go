package serial

import "unicode/utf16"

func utf16Encode(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

func utf16Decode(units []uint16) string {
	return string(utf16.Decode(units))
}

// trimUTF16 returns the prefix of units up to (not including) the
// first NUL code unit.
func trimUTF16(units []uint16) []uint16 {
	for i, u := range units {
		if u == 0 {
			return units[:i]
		}
	}
	return units
}

// asciiString returns the prefix of b up to the first NUL byte,
// replacing any byte >= 0x80 with the Unicode replacement character
// rather than faithfully decoding it as Latin-1/CP932.
func asciiString(b []byte) string {
	end := len(b)
	for i, c := range b {
		if c == 0 {
			end = i
			break
		}
	}
	b = b[:end]
	out := make([]rune, len(b))
	for i, c := range b {
		if c >= 0x80 {
			out[i] = '�'
		} else {
			out[i] = rune(c)
		}
	}
	return string(out)
}
