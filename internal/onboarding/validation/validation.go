// Package validation checks raw onboarding form input before it is turned into wizard events.
// Every check returns FieldErrors keyed by form field so the caller can re-prompt.
package validation

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"quickfy/backend/internal/onboarding/domain"
	"quickfy/backend/internal/workspace/slug"
)

var (
	emailPattern     = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	workspacePattern = regexp.MustCompile(`^[a-zA-Z0-9` + slug.Whitespace + `-]+$`)
	vatPattern       = regexp.MustCompile(`^[A-Z]{2}[0-9]{11}$`)
	postalPattern    = regexp.MustCompile(`^[0-9]{5}$`)
)

const (
	minNameLen      = 2
	maxNameLen      = 50
	minPasswordLen  = 8
	minWorkspaceLen = 2
	maxWorkspaceLen = 50
	minCompanyLen   = 2
)

// FieldErrors maps a form field to the first rule it failed.
type FieldErrors map[string]string

// Error joins the field errors in field order.
func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}

// Empty reports whether no field failed.
func (e FieldErrors) Empty() bool {
	return len(e) == 0
}

// OrNil returns nil when e is empty so callers can use it as an error value.
func (e FieldErrors) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

// SignupInput is the raw signup form.
type SignupInput struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	AcceptedTerms bool   `json:"acceptedTerms"`
}

// Normalize trims the name and lowercases the email. The password is left untouched.
func (in SignupInput) Normalize() SignupInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	return in
}

// BillingInput is the raw billing form.
type BillingInput struct {
	CompanyName string `json:"companyName"`
	VATNumber   string `json:"vatNumber"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode"`
	Country     string `json:"country"`
}

// Normalize trims every field.
func (in BillingInput) Normalize() BillingInput {
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.VATNumber = strings.TrimSpace(in.VATNumber)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.PostalCode = strings.TrimSpace(in.PostalCode)
	in.Country = strings.TrimSpace(in.Country)
	return in
}

// ToDomain converts validated input to the wizard payload.
func (in BillingInput) ToDomain() domain.BillingInfo {
	return domain.BillingInfo{
		CompanyName: in.CompanyName,
		VATNumber:   in.VATNumber,
		Address:     in.Address,
		City:        in.City,
		PostalCode:  in.PostalCode,
		Country:     in.Country,
	}
}

// Plan checks the selected plan.
func Plan(p domain.Plan) FieldErrors {
	errs := FieldErrors{}
	if p == "" {
		errs["plan"] = "plan is required"
	} else if !p.Valid() {
		errs["plan"] = "plan must be one of starter, plus, pro"
	}
	return errs
}

// Signup checks a normalized signup form.
func Signup(in SignupInput) FieldErrors {
	errs := FieldErrors{}
	if msg := name(in.Name); msg != "" {
		errs["name"] = msg
	}
	if msg := Email(in.Email); msg != "" {
		errs["email"] = msg
	}
	if msg := Password(in.Password); msg != "" {
		errs["password"] = msg
	}
	if !in.AcceptedTerms {
		errs["acceptedTerms"] = "terms must be accepted"
	}
	return errs
}

// WorkspaceName checks a trimmed workspace name.
func WorkspaceName(n string) FieldErrors {
	errs := FieldErrors{}
	l := utf8.RuneCountInString(n)
	switch {
	case l < minWorkspaceLen:
		errs["workspaceName"] = "workspace name must be at least 2 characters"
	case l > maxWorkspaceLen:
		errs["workspaceName"] = "workspace name must be at most 50 characters"
	case !workspacePattern.MatchString(n):
		errs["workspaceName"] = "workspace name may only contain letters, numbers, spaces and hyphens"
	case slug.Slugify(n) == "":
		errs["workspaceName"] = "workspace name must contain a letter or number"
	}
	return errs
}

// Billing checks a normalized billing form.
func Billing(in BillingInput) FieldErrors {
	errs := FieldErrors{}
	if utf8.RuneCountInString(in.CompanyName) < minCompanyLen {
		errs["companyName"] = "company name must be at least 2 characters"
	}
	if in.VATNumber != "" && !vatPattern.MatchString(in.VATNumber) {
		errs["vatNumber"] = "VAT number must be 2 uppercase letters followed by 11 digits"
	}
	if in.Address == "" {
		errs["address"] = "address is required"
	}
	if in.City == "" {
		errs["city"] = "city is required"
	}
	if !postalPattern.MatchString(in.PostalCode) {
		errs["postalCode"] = "postal code must be exactly 5 digits"
	}
	if in.Country == "" {
		errs["country"] = "country is required"
	}
	return errs
}

func name(n string) string {
	l := utf8.RuneCountInString(n)
	if l < minNameLen {
		return "name must be at least 2 characters"
	}
	if l > maxNameLen {
		return "name must be at most 50 characters"
	}
	return ""
}

// Email returns a reason when email is not well-formed, or "".
func Email(email string) string {
	if email == "" {
		return "email is required"
	}
	if !emailPattern.MatchString(email) {
		return "invalid email format"
	}
	return ""
}

// Password returns the first complexity rule password breaks, or "".
func Password(password string) string {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return "password must be at least 8 characters"
	}
	var hasUpper, hasLower, hasNumber, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasNumber = true
		default:
			hasSymbol = true
		}
	}
	if !hasUpper {
		return "password must contain at least one uppercase letter"
	}
	if !hasLower {
		return "password must contain at least one lowercase letter"
	}
	if !hasNumber {
		return "password must contain at least one number"
	}
	if !hasSymbol {
		return "password must contain at least one special character"
	}
	return ""
}
