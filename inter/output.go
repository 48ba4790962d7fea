package inter

import (
	"fmt"
	"math/big"
	"unicode/utf8"
)

// Mode selects how Write renders a register.
type Mode int

const (
	// Numeric writes the decimal value followed by a newline.
	Numeric Mode = iota
	// Unicode writes the register as a single character.
	Unicode
)

func (m Mode) String() string {
	switch m {
	case Numeric:
		return "numeric"
	case Unicode:
		return "unicode"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Format renders v for output.
func (m Mode) Format(v *big.Int) (string, error) {
	if m != Unicode {
		return v.String() + "\n", nil
	}
	if !v.IsInt64() || v.Int64() > utf8.MaxRune || !utf8.ValidRune(rune(v.Int64())) {
		return "", fmt.Errorf("%w: %s", ErrOutputEncoding, v)
	}
	return string(rune(v.Int64())), nil
}
