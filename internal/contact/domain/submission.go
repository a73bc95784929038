// Package domain defines contact form submissions and the sanitizing rules applied before they are accepted.
package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxFieldLength caps every sanitized string field, in characters.
const DefaultMaxFieldLength = 5000

const (
	minNameLength    = 2
	minMessageLength = 10
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Input is the raw payload posted to the contact boundary.
type Input struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message"`
	Consent bool   `json:"consent"`
}

// Submission is a sanitized, validated contact request.
type Submission struct {
	ID        string
	Name      string
	Email     string
	Company   string
	Phone     string
	Message   string
	ClientKey string
	CreatedAt time.Time
}

// ValidationError reports the first field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Sanitize trims s, caps it at maxLen characters and strips '<' and '>'.
// maxLen <= 0 uses DefaultMaxFieldLength.
func Sanitize(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxFieldLength
	}
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxLen {
		s = string(r[:maxLen])
	}
	return strings.NewReplacer("<", "", ">", "").Replace(s)
}

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Validate sanitizes in and checks it, returning the cleaned submission without ID or timestamps.
// The email is lowercased.
func Validate(in Input, maxLen int) (Submission, error) {
	sub := Submission{
		Name:    Sanitize(in.Name, maxLen),
		Email:   strings.ToLower(Sanitize(in.Email, maxLen)),
		Company: Sanitize(in.Company, maxLen),
		Phone:   Sanitize(in.Phone, maxLen),
		Message: Sanitize(in.Message, maxLen),
	}
	switch {
	case sub.Name == "":
		return Submission{}, &ValidationError{Field: "name", Reason: "is required"}
	case len([]rune(sub.Name)) < minNameLength:
		return Submission{}, &ValidationError{Field: "name", Reason: fmt.Sprintf("must be at least %d characters", minNameLength)}
	case sub.Email == "":
		return Submission{}, &ValidationError{Field: "email", Reason: "is required"}
	case !ValidEmail(sub.Email):
		return Submission{}, &ValidationError{Field: "email", Reason: "is not a valid email address"}
	case sub.Message == "":
		return Submission{}, &ValidationError{Field: "message", Reason: "is required"}
	case len([]rune(sub.Message)) < minMessageLength:
		return Submission{}, &ValidationError{Field: "message", Reason: fmt.Sprintf("must be at least %d characters", minMessageLength)}
	case !in.Consent:
		return Submission{}, &ValidationError{Field: "consent", Reason: "must be given"}
	}
	return sub, nil
}

// NewID returns an opaque submission id built from the time and a random suffix.
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("contact_%d_%s", now.UnixMilli(), suffix)
}
