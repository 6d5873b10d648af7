package cipher

import (
	"errors"
	"fmt"
	"strings"
)

// Shift is the rotation applied by Encode and reversed by Decode.
const Shift = 13

// ErrInvalidFilename reports a name the cipher cannot round-trip.
var ErrInvalidFilename = errors.New("invalid filename")

// Encode rotates the stem of name forward by Shift.
func Encode(name string) (string, error) {
	return EncodeShift(name, Shift)
}

// Decode reverses Encode.
func Decode(name string) (string, error) {
	return DecodeShift(name, Shift)
}

// EncodeShift rotates the stem of name forward by shift letters.
func EncodeShift(name string, shift int) (string, error) {
	return apply(name, shift)
}

// DecodeShift rotates the stem of name backward by shift letters.
func DecodeShift(name string, shift int) (string, error) {
	return apply(name, -shift)
}

func apply(name string, shift int) (string, error) {
	stem, ext, err := split(name)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(stem); i++ {
		b.WriteByte(rotate(stem[i], shift))
	}
	b.WriteByte('.')
	b.WriteString(ext)
	return b.String(), nil
}

// split separates name at its final dot. Interior dots stay in the stem.
func split(name string) (string, string, error) {
	for i := 0; i < len(name); i++ {
		if name[i] >= 0x80 {
			return "", "", fmt.Errorf("%w: %q contains non-ASCII characters", ErrInvalidFilename, name)
		}
	}
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return "", "", fmt.Errorf("%w: %q has no extension", ErrInvalidFilename, name)
	}
	stem, ext := name[:idx], name[idx+1:]
	if stem == "" {
		return "", "", fmt.Errorf("%w: %q has an empty name", ErrInvalidFilename, name)
	}
	if ext == "" {
		return "", "", fmt.Errorf("%w: %q has an empty extension", ErrInvalidFilename, name)
	}
	if strings.ContainsAny(name, `/\`) {
		return "", "", fmt.Errorf("%w: %q is a path, not a base name", ErrInvalidFilename, name)
	}
	return stem, ext, nil
}

func rotate(c byte, shift int) byte {
	k := ((shift % 26) + 26) % 26
	switch {
	case c >= 'a' && c <= 'z':
		return 'a' + byte((int(c-'a')+k)%26)
	case c >= 'A' && c <= 'Z':
		return 'A' + byte((int(c-'A')+k)%26)
	default:
		return c
	}
}
