package errors

import (
	"strings"
	"unicode"
)

// MaxIDLength bounds event IDs accepted from external input.
const MaxIDLength = 256

// ValidateEventID validates an event ID received from a dataset, a flag or
// the HTTP API. IDs are opaque, so the rules only reject values that cannot
// be printed or stored safely:
//   - No empty IDs
//   - No control characters or null bytes
//   - Maximum length of MaxIDLength bytes
func ValidateEventID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "event id cannot be empty")
	}

	if len(id) > MaxIDLength {
		return New(ErrCodeInvalidInput, "event id too long (max %d characters)", MaxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "event id contains invalid control characters")
		}
	}

	return nil
}

// ValidateFrontiers validates every ID in a frontier list.
func ValidateFrontiers(ids []string) error {
	for _, id := range ids {
		if err := ValidateEventID(id); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRevision validates a git revision passed on the command line.
//
// Validation rules:
//   - Revision cannot be empty
//   - No leading dash (would be read as an option)
//   - No control characters, spaces or null bytes
//   - No range syntax (..); each revision names one commit
func ValidateRevision(rev string) error {
	if rev == "" {
		return New(ErrCodeInvalidInput, "revision cannot be empty")
	}

	if strings.HasPrefix(rev, "-") {
		return New(ErrCodeInvalidInput, "revision cannot start with '-': %q", rev)
	}

	for _, r := range rev {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "revision contains invalid characters: %q", rev)
		}
	}

	if strings.Contains(rev, "..") {
		return New(ErrCodeInvalidInput, "revision ranges are not supported: %q", rev)
	}

	return nil
}

// ValidateCollectionName validates a MongoDB database or collection name.
func ValidateCollectionName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "collection name cannot be empty")
	}

	const maxLength = 120
	if len(name) > maxLength {
		return New(ErrCodeInvalidInput, "collection name too long (max %d characters)", maxLength)
	}

	if strings.ContainsAny(name, "$\x00") || strings.HasPrefix(name, "system.") {
		return New(ErrCodeInvalidInput, "invalid collection name: %q", name)
	}

	return nil
}
