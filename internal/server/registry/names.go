package registry

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/KaityXD/choas-lib/internal/common"
)

const maxNameLen = 255

// ValidateName accepts only plain, single-segment file names. Everything
// that could escape the storage root or hide a file is refused: empty
// names, "." and "..", path separators of either platform, control
// characters, invalid UTF-8, a leading dot and names over 255 bytes.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", common.ErrInvalidName)
	case len(name) > maxNameLen:
		return fmt.Errorf("%w: too long", common.ErrInvalidName)
	case !utf8.ValidString(name):
		return fmt.Errorf("%w: not utf-8", common.ErrInvalidName)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: leading dot", common.ErrInvalidName)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: path separator", common.ErrInvalidName)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character", common.ErrInvalidName)
		}
	}
	return nil
}
