package textenc

import "unicode/utf8"

// Candidate order for high-bit payloads. When a payload validates as more
// than one charset the FIRST matching candidate wins; the ordering is a
// pragmatic heuristic carried over from the East-Asian terminal tools this
// daemon replaces, not a statistical ranking. EUC-JP before Shift_JIS
// matches the traditional Unix bias of those tools.
var highBitCandidates = []string{CharsetEUCJP, CharsetShiftJIS, CharsetUTF8}

const esc = 0x1b

// Detect runs the charset heuristic over raw and returns the ordered list
// of suspects. The list is never empty; callers wanting a single answer
// take the first element. Identical input always yields identical output.
//
// The rules, in order:
//   - pure 7-bit data containing ISO-2022 escape sequences → iso-2022-jp
//   - pure 7-bit data otherwise → us-ascii
//   - high-bit data → every candidate whose byte grammar accepts the whole
//     payload, in candidate order (euc-jp, shift_jis, utf-8)
//   - high-bit data matching nothing → utf-8, decoded with replacement
func Detect(raw []byte) []string {
	if len(raw) == 0 {
		return []string{CharsetASCII}
	}

	if is7bit(raw) {
		if hasJISEscape(raw) {
			return []string{CharsetISO2022JP}
		}
		return []string{CharsetASCII}
	}

	var suspects []string
	for _, c := range highBitCandidates {
		valid := false
		switch c {
		case CharsetEUCJP:
			valid = validEUCJP(raw)
		case CharsetShiftJIS:
			valid = validShiftJIS(raw)
		case CharsetUTF8:
			valid = utf8.Valid(raw)
		}
		if valid {
			suspects = append(suspects, c)
		}
	}

	if len(suspects) == 0 {
		// Nothing matched cleanly; decode as UTF-8 with replacement runes
		// rather than refusing the payload.
		return []string{CharsetUTF8}
	}
	return suspects
}

// is7bit reports whether every byte has the high bit clear.
func is7bit(raw []byte) bool {
	for _, b := range raw {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// hasJISEscape reports whether raw contains an ISO-2022-JP charset switch
// (ESC '$' to enter a double-byte set, ESC '(' to return to ASCII/Roman).
func hasJISEscape(raw []byte) bool {
	for i := 0; i+1 < len(raw); i++ {
		if raw[i] == esc && (raw[i+1] == '$' || raw[i+1] == '(') {
			return true
		}
	}
	return false
}

// validEUCJP reports whether raw parses completely under the EUC-JP byte
// grammar: ASCII singles, 0x8E + half-width kana, 0x8F + two-byte JIS X
// 0212, or two bytes in 0xA1..0xFE.
func validEUCJP(raw []byte) bool {
	i := 0
	for i < len(raw) {
		b := raw[i]
		switch {
		case b < 0x80:
			i++
		case b == 0x8e:
			if i+1 >= len(raw) || raw[i+1] < 0xa1 || raw[i+1] > 0xdf {
				return false
			}
			i += 2
		case b == 0x8f:
			if i+2 >= len(raw) ||
				raw[i+1] < 0xa1 || raw[i+1] > 0xfe ||
				raw[i+2] < 0xa1 || raw[i+2] > 0xfe {
				return false
			}
			i += 3
		case b >= 0xa1 && b <= 0xfe:
			if i+1 >= len(raw) || raw[i+1] < 0xa1 || raw[i+1] > 0xfe {
				return false
			}
			i += 2
		default:
			return false
		}
	}
	return true
}

// validShiftJIS reports whether raw parses completely under the Shift_JIS
// byte grammar: ASCII singles, half-width kana in 0xA1..0xDF, or a JIS X
// 0208 lead byte (0x81..0x9F, 0xE0..0xEF) followed by a trail byte in
// 0x40..0xFC excluding 0x7F. Vendor extension rows above 0xEF are not
// accepted; treating them as Shift_JIS would shadow the UTF-8 candidate
// for most emoji-bearing payloads.
func validShiftJIS(raw []byte) bool {
	i := 0
	for i < len(raw) {
		b := raw[i]
		switch {
		case b < 0x80:
			i++
		case b >= 0xa1 && b <= 0xdf:
			i++
		case (b >= 0x81 && b <= 0x9f) || (b >= 0xe0 && b <= 0xef):
			if i+1 >= len(raw) {
				return false
			}
			t := raw[i+1]
			if t < 0x40 || t > 0xfc || t == 0x7f {
				return false
			}
			i += 2
		default:
			return false
		}
	}
	return true
}
