// Package textenc implements ClipGate's character encoding pipeline:
// guessing the charset of an incoming payload and transcoding it into the
// configured output charset.
//
// WHY this exists at all: The senders this daemon serves are editors and
// remote shells on Japanese-language hosts, where a snippet may arrive as
// EUC-JP, Shift_JIS, ISO-2022-JP, or UTF-8 with nothing on the wire saying
// which. Pasting the wrong interpretation into the clipboard produces
// mojibake, so the daemon guesses before it writes.
//
// Decoding and encoding are delegated to golang.org/x/text; only the guess
// heuristic lives here (see detect.go).

package textenc

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Canonical charset names used throughout the daemon. Detect only ever
// returns these values.
const (
	CharsetASCII     = "us-ascii"
	CharsetUTF8      = "utf-8"
	CharsetEUCJP     = "euc-jp"
	CharsetShiftJIS  = "shift_jis"
	CharsetISO2022JP = "iso-2022-jp"
)

// Normalize maps common charset aliases onto the canonical names above.
// Unknown names pass through lowercased so htmlindex can still try them.
func Normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "ascii", "us-ascii", "ansi_x3.4-1968":
		return CharsetASCII
	case "utf8", "utf-8":
		return CharsetUTF8
	case "eucjp", "euc_jp", "euc-jp", "ujis":
		return CharsetEUCJP
	case "sjis", "shiftjis", "shift-jis", "shift_jis", "cp932", "ms932":
		return CharsetShiftJIS
	case "jis", "iso2022jp", "iso-2022-jp":
		return CharsetISO2022JP
	}
	return n
}

// encodingFor resolves a charset name to an x/text encoding.
// WHY htmlindex: It is the standard name registry shipped with x/text and
// already knows every charset this daemon cares about, so we avoid keeping
// a hand-written table in sync with the library.
func encodingFor(name string) (encoding.Encoding, error) {
	n := Normalize(name)
	if n == CharsetASCII {
		// ASCII bytes are valid UTF-8 as-is; identity avoids htmlindex
		// mapping the us-ascii label to a windows codepage.
		return encoding.Nop, nil
	}
	enc, err := htmlindex.Get(n)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q", name)
	}
	return enc, nil
}

// ValidateCharset reports whether name resolves to a usable output charset.
// Used at startup so a typo in --encoding fails fast instead of on the
// first connection.
func ValidateCharset(name string) error {
	_, err := encodingFor(name)
	return err
}

// Transcode decodes raw from charset `from` and re-encodes it into charset
// `to`. Characters the target charset cannot represent are replaced rather
// than dropped, so the output length stays predictable.
func Transcode(raw []byte, from, to string) ([]byte, error) {
	src, err := encodingFor(from)
	if err != nil {
		return nil, err
	}
	dst, err := encodingFor(to)
	if err != nil {
		return nil, err
	}

	decoded, err := src.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode as %s: %w", Normalize(from), err)
	}

	out, err := encoding.ReplaceUnsupported(dst.NewEncoder()).Bytes(decoded)
	if err != nil {
		return nil, fmt.Errorf("failed to encode as %s: %w", Normalize(to), err)
	}
	return out, nil
}

// DetectAndTranscode guesses the charset of raw and transcodes it into
// target. It returns the transcoded bytes and the charset that was used.
//
// The guess is deterministic: identical input bytes always produce the same
// guess and therefore the same output (see Detect for the policy).
func DetectAndTranscode(raw []byte, target string) ([]byte, string, error) {
	guess := Detect(raw)[0]
	out, err := Transcode(raw, guess, target)
	if err != nil {
		return nil, guess, err
	}
	return out, guess, nil
}

// Preview decodes raw with the given charset and returns up to max runes of
// the trimmed text, for notification bodies. The preview is taken from the
// original bytes, not the transcoded output, so it reflects what the sender
// actually wrote.
func Preview(raw []byte, charset string, max int) string {
	enc, err := encodingFor(charset)
	if err != nil {
		return ""
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return ""
	}

	text := strings.TrimSpace(string(decoded))
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max])
}
