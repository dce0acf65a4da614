package rules

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	unicodeCharPattern = `\\u\{([[:xdigit:]]{1,6})\}`
	escapePattern      = `\\[nrt\\0'"]|\\x[[:xdigit:]]{2}|` + unicodeCharPattern

	// StringPattern matches a double-quoted string literal. The capture group
	// named s holds the literal's body with escapes still in place.
	StringPattern = `(?s)"(?P<s>(?:` + escapePattern + `|[^"\\])*)"`
)

var (
	UnicodeRegexp        = regexp.MustCompile(unicodeCharPattern)
	EscapeRegexp         = regexp.MustCompile(escapePattern)
	StringRegexp         = regexp.MustCompile(StringPattern)
	anchoredStringRegexp = regexp.MustCompile(`^(?:` + StringPattern + `)`)
)

var (
	ErrStringSyntax     = errors.New("failed to parse string")
	ErrEmptyEscape      = errors.New("invalid empty escape")
	ErrUnknownEscape    = errors.New("unknown escape sequence")
	ErrTwoDigitExpected = errors.New("two-digit character code expected")
	ErrInvalidTwoDigit  = errors.New("invalid two-digit escape")
	ErrMalformedUnicode = errors.New("improperly formatted unicode character code")
	ErrInvalidUnicode   = errors.New("invalid unicode escape")
	ErrNoCodePoint      = errors.New("no character found for unicode value")
)

// StringMatch is a string literal found in source text.
type StringMatch struct {
	Raw  string // the literal including quotes
	Body string // the text between the quotes, escapes unprocessed
}

// MatchString matches a string literal starting exactly at byte offset pos of
// input. It returns the match and the offset just past the closing quote.
func MatchString(input string, pos int) (StringMatch, int, bool) {
	if pos < 0 || pos > len(input) {
		return StringMatch{}, pos, false
	}
	m := anchoredStringRegexp.FindStringSubmatch(input[pos:])
	if m == nil {
		return StringMatch{}, pos, false
	}
	body := m[anchoredStringRegexp.SubexpIndex("s")]
	return StringMatch{Raw: m[0], Body: body}, pos + len(m[0]), true
}

// ConvertString returns the value of a matched literal with all escapes
// replaced.
func ConvertString(m StringMatch) (string, error) {
	if m.Raw == "" {
		return "", ErrStringSyntax
	}
	return Unescape(m.Body)
}

// Unescape replaces the escape sequences of a string literal body.
func Unescape(body string) (string, error) {
	var b strings.Builder
	b.Grow(len(body))

	offset := 0
	for _, loc := range EscapeRegexp.FindAllStringIndex(body, -1) {
		b.WriteString(body[offset:loc[0]])
		s, err := escape(body[loc[0]:loc[1]])
		if err != nil {
			return "", err
		}
		b.WriteString(s)
		offset = loc[1]
	}
	b.WriteString(body[offset:])
	return b.String(), nil
}

func escape(code string) (string, error) {
	if len(code) < 2 {
		return "", ErrEmptyEscape
	}
	switch code[:2] {
	case `\n`:
		return "\n", nil
	case `\r`:
		return "\r", nil
	case `\t`:
		return "\t", nil
	case `\\`:
		return `\`, nil
	case `\0`:
		return "\x00", nil
	case `\'`:
		return "'", nil
	case `\"`:
		return `"`, nil
	case `\x`:
		return twoDigitEscape(code[2:])
	case `\u`:
		if m := UnicodeRegexp.FindStringSubmatch(code); m != nil {
			return unicodeEscape(m[1])
		}
		return "", ErrMalformedUnicode
	default:
		return "", ErrUnknownEscape
	}
}

// twoDigitEscape decodes \xHH; only ASCII is representable as a single byte.
func twoDigitEscape(code string) (string, error) {
	if len(code) != 2 {
		return "", ErrTwoDigitExpected
	}
	n, err := strconv.ParseUint(code, 16, 8)
	if err != nil || n >= utf8.RuneSelf {
		return "", ErrInvalidTwoDigit
	}
	return string(rune(n)), nil
}

func unicodeEscape(code string) (string, error) {
	n, err := strconv.ParseUint(code, 16, 32)
	if err != nil {
		return "", ErrInvalidUnicode
	}
	r := rune(n)
	if !utf8.ValidRune(r) {
		return "", ErrNoCodePoint
	}
	return string(r), nil
}
