package services

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/rpass/internal/common"
)

const (
	MaxUserNameLen   = 32
	MaxPasswordLen   = 1024
	MaxRecordNameLen = 128
)

// ValidateUserName accepts ASCII letters, digits, '.', '@' and '_', with at
// least one letter, no "..", and no separator at either end.
func ValidateUserName(name string) error {
	if name == "" || len(name) > MaxUserNameLen {
		return common.ErrInvalidUsername
	}

	hasLetter := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			hasLetter = true
		case c >= '0' && c <= '9', c == '.', c == '@', c == '_':
		default:
			return common.ErrInvalidUsername
		}
	}
	if !hasLetter || strings.Contains(name, "..") {
		return common.ErrInvalidUsername
	}
	if strings.ContainsAny(name[:1], ".@_") || strings.ContainsAny(name[len(name)-1:], ".@_") {
		return common.ErrInvalidUsername
	}
	return nil
}

func ValidatePassword(password []byte) error {
	if len(password) == 0 || len(password) > MaxPasswordLen {
		return fmt.Errorf("%w: password must be 1..%d bytes", common.ErrInvalidArgument, MaxPasswordLen)
	}
	return nil
}

// ValidateRecordName accepts 1..128 bytes of valid UTF-8 made of printable
// characters.
func ValidateRecordName(name string) error {
	if name == "" || len(name) > MaxRecordNameLen || !utf8.ValidString(name) {
		return common.ErrInvalidRecordName
	}
	for _, r := range name {
		if !unicode.IsPrint(r) {
			return common.ErrInvalidRecordName
		}
	}
	return nil
}
