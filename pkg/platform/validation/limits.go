package validation

import (
	"fmt"
	"unicode/utf8"

	dErrors "confessional/pkg/domain-errors"
)

// HTTP body limits
const (
	// MaxBodySize caps JSON request bodies.
	MaxBodySize = 64 * 1024

	// MaxMultipartOverhead is the slack allowed on top of the evidence cap for
	// multipart boundaries and the credential fields.
	MaxMultipartOverhead = 64 * 1024
)

// Content length limits, measured in runes.
const (
	MinConfessionLength = 10
	MaxConfessionLength = 5000

	MinCommentLength = 1
	MaxCommentLength = 1000

	MinReportReasonLength = 10
	MaxReportReasonLength = 500
)

// Credential limits
const (
	// MaxEmailLength is the maximum length of an email address.
	MaxEmailLength = 255

	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 8

	// MaxPasswordLength matches the bcrypt input limit.
	MaxPasswordLength = 72
)

// Paging limits
const (
	DefaultReportPageSize = 100
	MaxReportPageSize     = 100

	DefaultFeedPageSize = 20
	MaxFeedPageSize     = 50

	MaxCommentsPerView = 50
)

// CheckRuneLength validates that value holds between min and max runes inclusive.
func CheckRuneLength(fieldName, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s must be at least %d characters", fieldName, min))
	}
	if n > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// CheckStringLength validates that a string does not exceed the maximum length in bytes.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// ClampPageSize applies the default when limit is unset and caps it at max.
func ClampPageSize(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
