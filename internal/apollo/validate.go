// ABOUTME: Shared validation and normalization helpers for Apollo query schemas.
// ABOUTME: Defines the validation error types, enum sets, ranges, and paging rules.

package apollo

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidQuery is wrapped by every validation failure.
var ErrInvalidQuery = errors.New("invalid query")

// Paging bounds accepted by the search endpoints.
const (
	MinPage    = 1
	MinPerPage = 1
	MaxPerPage = 100

	// MaxDomains is the upstream limit for q_organization_domains_list.
	MaxDomains = 1000
)

// Query is implemented by every operation's input type.
type Query interface {
	// Normalize rewrites fields into their canonical form in place.
	Normalize()
	// Validate reports every constraint violation of a normalized query.
	Validate() error
}

// ValidationError describes a single field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap makes errors.Is(err, ErrInvalidQuery) hold.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidQuery
}

// ValidationErrors collects all field failures of one query.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "invalid query: " + strings.Join(msgs, "; ")
}

// Unwrap makes errors.Is(err, ErrInvalidQuery) hold.
func (v ValidationErrors) Unwrap() error {
	return ErrInvalidQuery
}

// Fields returns the names of the failing fields in report order.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, len(v))
	for i, e := range v {
		fields[i] = e.Field
	}
	return fields
}

// validator accumulates field errors.
type validator struct {
	errs ValidationErrors
}

func (v *validator) fail(field, format string, args ...any) {
	v.errs = append(v.errs, &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)})
}

func (v *validator) err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return v.errs
}

func (v *validator) enum(field string, values []string, allowed []string) {
	for i, val := range values {
		if !slices.Contains(allowed, val) {
			v.fail(fmt.Sprintf("%s[%d]", field, i), "%q is not one of %s", val, strings.Join(allowed, ", "))
		}
	}
}

func (v *validator) ranges(field string, values []string) {
	for i, val := range values {
		if _, _, err := ParseRange(val); err != nil {
			v.fail(fmt.Sprintf("%s[%d]", field, i), "%v", err)
		}
	}
}

func (v *validator) paging(page, perPage *int) {
	if page != nil && *page < MinPage {
		v.fail("page", "must be >= %d, got %d", MinPage, *page)
	}
	if perPage != nil && (*perPage < MinPerPage || *perPage > MaxPerPage) {
		v.fail("per_page", "must be between %d and %d, got %d", MinPerPage, MaxPerPage, *perPage)
	}
}

func (v *validator) domains(field string, values []string) {
	for i, d := range values {
		if !isDomain(d) {
			v.fail(fmt.Sprintf("%s[%d]", field, i), "%q is not a bare domain name", d)
		}
	}
}

// Person seniority levels accepted by person_seniorities.
var Seniorities = []string{
	"owner", "founder", "c_suite", "partner", "vp", "head",
	"director", "manager", "senior", "entry", "intern",
}

// Email statuses accepted by contact_email_status.
var EmailStatuses = []string{
	"verified", "unverified", "likely to engage", "unavailable",
}

// ParseRange parses an employee-count style range "low,high".
// Both bounds must be non-negative integers with low <= high.
func ParseRange(s string) (low, high int, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("range %q must be two integers separated by a comma", s)
	}
	low, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("range %q has a non-integer lower bound", s)
	}
	high, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("range %q has a non-integer upper bound", s)
	}
	if low < 0 || high < 0 {
		return 0, 0, fmt.Errorf("range %q must not be negative", s)
	}
	if low > high {
		return 0, 0, fmt.Errorf("range %q has lower bound above upper bound", s)
	}
	return low, high, nil
}

// NormalizeDomain strips schemes, "www.", "@" and surrounding whitespace and
// lowercases the result, so "https://www.Apollo.io/" becomes "apollo.io".
func NormalizeDomain(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "@")
	d = strings.TrimPrefix(d, "www.")
	return strings.TrimRight(d, "/")
}

func isDomain(d string) bool {
	if d == "" || !strings.Contains(d, ".") || strings.HasPrefix(d, ".") || strings.HasSuffix(d, ".") {
		return false
	}
	return !strings.ContainsAny(d, " /@?#:")
}

// normalizeString trims s and returns nil when nothing is left.
func normalizeString(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// normalizeList trims every value, drops blanks, and returns nil for an empty result.
func normalizeList(values []string, fn func(string) string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = fn(v)
		if v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func trimmed(s string) string { return strings.TrimSpace(s) }

func lowered(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// rangeValue drops all whitespace so "250, 500" is accepted as "250,500".
func rangeValue(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func isHex(s string) bool {
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return s != ""
}

// Ptr returns a pointer to v. Handy when building queries in code.
func Ptr[T any](v T) *T {
	return &v
}
