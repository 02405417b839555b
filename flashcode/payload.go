package flashcode

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// PayloadSize is the number of data symbols in a full code.
	PayloadSize = 24

	// CodeLength is the length of a full code string.
	CodeLength = 29
	// LegacyCodeLength is the length of the two-group legacy code string.
	LegacyCodeLength = 15

	groupSize        = 6
	checksumPosition = 14
	legacySuffix     = "-000000-000000"
)

var (
	symbolClass   = "[" + regexp.QuoteMeta(alphabet) + "]"
	codePattern   = regexp.MustCompile(fmt.Sprintf("^%[1]s{6}-%[1]s{6}-%[1]s{1}-%[1]s{6}-%[1]s{6}$", symbolClass))
	legacyPattern = regexp.MustCompile(fmt.Sprintf("^%[1]s{6}-%[1]s{6}-%[1]s{1}$", symbolClass))
)

// DefaultCode is the code of the all-zero payload.
const DefaultCode = "000000-000000-0-000000-000000"

// Payload is the 24-byte data array a code encodes. Every slot holds a
// symbol value in [0, 63].
type Payload [PayloadSize]byte

// Valid reports whether every slot holds a symbol value.
func (p Payload) Valid() bool {
	for _, b := range p {
		if int(b) >= AlphabetSize {
			return false
		}
	}
	return true
}

// String returns the encoded code, or "" when the payload is not Valid.
func (p Payload) String() string {
	s, err := Encode(p)
	if err != nil {
		return ""
	}
	return s
}

// Decode parses a full or legacy code string into its payload. The embedded
// check digit is not verified; use DecodeStrict for that.
func Decode(code string) (Payload, error) {
	var p Payload

	if len(code) != CodeLength && len(code) != LegacyCodeLength {
		return p, fmt.Errorf("%w: invalid code length (%d)", ErrInvalidCode, len(code))
	}

	if !codePattern.MatchString(code) {
		if !legacyPattern.MatchString(code) {
			return p, fmt.Errorf("%w: %q", ErrInvalidCode, code)
		}
		code += legacySuffix
	}

	n := 0
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c == '-' || i == checksumPosition {
			continue
		}
		v, _ := ValueOf(c)
		p[n] = byte(v)
		n++
	}
	return p, nil
}

// DecodeStrict is Decode plus verification of the check digit. A wrong check
// digit fails with an error matching both ErrInvalidCode and
// ErrChecksumMismatch.
func DecodeStrict(code string) (Payload, error) {
	p, err := Decode(code)
	if err != nil {
		return p, err
	}
	got := code[checksumPosition]
	if want := ChecksumChar(p); got != want {
		return Payload{}, fmt.Errorf("%w: %w: got %q, want %q", ErrInvalidCode, ErrChecksumMismatch, got, want)
	}
	return p, nil
}

// Encode renders p as a full code string.
func Encode(p Payload) (string, error) {
	var b strings.Builder
	b.Grow(CodeLength)

	for i, v := range p {
		c, ok := CharOf(int(v))
		if !ok {
			return "", fmt.Errorf("%w: payload byte %d holds %d, outside the alphabet", ErrInvalidCode, i+1, v)
		}
		switch i {
		case groupSize, 3 * groupSize:
			b.WriteByte('-')
		case 2 * groupSize:
			b.WriteByte('-')
			b.WriteByte(ChecksumChar(p))
			b.WriteByte('-')
		}
		b.WriteByte(c)
	}
	return b.String(), nil
}
