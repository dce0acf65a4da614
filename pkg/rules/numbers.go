// Package rules provides literal parsers for hand-written lexers: integers,
// floating point numbers and escaped string literals. Underscores may be used
// as digit separators in numbers.
package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrInvalidInt   = errors.New("invalid integer literal")
	ErrInvalidFloat = errors.New("invalid float literal")
)

var (
	intRegexp   = regexp.MustCompile(`^([+-]?)(0b[01_]+|0o[0-7_]+|0x[[:xdigit:]_]+|[0-9][0-9_]*)$`)
	floatRegexp = regexp.MustCompile(`^[+-]?[0-9][0-9_]*(\.[0-9][0-9_]*)?([eE][+-]?[0-9_]*[0-9][0-9_]*)?$`)
)

// RemoveUnderscores drops every underscore from input.
func RemoveUnderscores(input string) string {
	return strings.ReplaceAll(input, "_", "")
}

// ParseInt parses a decimal, binary (0b0101), octal (0o754) or hexadecimal
// (0x1AF3) integer. A leading zero does not select octal.
func ParseInt(input string) (int64, error) {
	m := intRegexp.FindStringSubmatch(input)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInt, input)
	}
	sign, body := m[1], RemoveUnderscores(m[2])

	base := 10
	if len(body) > 2 {
		switch body[:2] {
		case "0b":
			base, body = 2, body[2:]
		case "0o":
			base, body = 8, body[2:]
		case "0x":
			base, body = 16, body[2:]
		}
	}
	if body == "" {
		return 0, fmt.Errorf("%w: %q has no digits", ErrInvalidInt, input)
	}

	n, err := strconv.ParseInt(sign+body, base, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidInt, input, err)
	}
	return n, nil
}

// ParseFloat parses a floating point number with an optional exponent, e.g.
// 4.3, 4.3e-2 or 43E2. Either a fractional part or an exponent is required.
func ParseFloat(input string) (float64, error) {
	m := floatRegexp.FindStringSubmatch(input)
	if m == nil || (m[1] == "" && m[2] == "") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFloat, input)
	}
	f, err := strconv.ParseFloat(RemoveUnderscores(input), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidFloat, input, err)
	}
	return f, nil
}
