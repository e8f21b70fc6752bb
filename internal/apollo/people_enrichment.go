// ABOUTME: People Enrichment schema: identifying fields for one person and the enriched record.
// ABOUTME: Requires enough identifying data to make the match meaningful.

package apollo

import (
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// PeopleEnrichmentQuery identifies one person to enrich.
// The more fields supplied, the more likely Apollo finds the right match.
type PeopleEnrichmentQuery struct {
	FirstName            *string `json:"first_name,omitempty"`
	LastName             *string `json:"last_name,omitempty"`
	Name                 *string `json:"name,omitempty"`
	Email                *string `json:"email,omitempty"`
	HashedEmail          *string `json:"hashed_email,omitempty"`
	OrganizationName     *string `json:"organization_name,omitempty"`
	Domain               *string `json:"domain,omitempty"`
	ID                   *string `json:"id,omitempty"`
	LinkedinURL          *string `json:"linkedin_url,omitempty"`
	RevealPersonalEmails *bool   `json:"reveal_personal_emails,omitempty"`
	RevealPhoneNumber    *bool   `json:"reveal_phone_number,omitempty"`
	WebhookURL           *string `json:"webhook_url,omitempty"`
}

func (q *PeopleEnrichmentQuery) Normalize() {
	q.FirstName = normalizeString(q.FirstName)
	q.LastName = normalizeString(q.LastName)
	q.Name = normalizeString(q.Name)
	q.Email = normalizeString(q.Email)
	if q.Email != nil {
		e := strings.ToLower(*q.Email)
		q.Email = &e
	}
	q.HashedEmail = normalizeString(q.HashedEmail)
	if q.HashedEmail != nil {
		h := strings.ToLower(*q.HashedEmail)
		q.HashedEmail = &h
	}
	q.OrganizationName = normalizeString(q.OrganizationName)
	q.Domain = normalizeString(q.Domain)
	if q.Domain != nil {
		d := NormalizeDomain(*q.Domain)
		q.Domain = &d
	}
	q.ID = normalizeString(q.ID)
	q.LinkedinURL = normalizeString(q.LinkedinURL)
	q.WebhookURL = normalizeString(q.WebhookURL)
}

// identified reports whether the query can single out one person.
func (q *PeopleEnrichmentQuery) identified() bool {
	switch {
	case q.ID != nil, q.Email != nil, q.HashedEmail != nil, q.LinkedinURL != nil:
		return true
	case q.Name != nil:
		return true
	case q.FirstName != nil && q.LastName != nil:
		return true
	case (q.FirstName != nil || q.LastName != nil) && (q.OrganizationName != nil || q.Domain != nil):
		return true
	}
	return false
}

func (q *PeopleEnrichmentQuery) Validate() error {
	var v validator
	if !q.identified() {
		v.fail("query", "needs id, email, hashed_email, linkedin_url, name, first_name and last_name, or a name part with organization_name or domain")
	}
	if q.Email != nil && !strings.Contains(*q.Email, "@") {
		v.fail("email", "%q is not an email address", *q.Email)
	}
	if h := q.HashedEmail; h != nil && (len(*h) != 32 && len(*h) != 64 || !isHex(*h)) {
		v.fail("hashed_email", "must be an MD5 or SHA-256 hex digest")
	}
	if q.Domain != nil && !isDomain(*q.Domain) {
		v.fail("domain", "%q is not a bare domain name", *q.Domain)
	}
	if q.RevealPhoneNumber != nil && *q.RevealPhoneNumber && q.WebhookURL == nil {
		v.fail("webhook_url", "is required when reveal_phone_number is true")
	}
	return v.err()
}

// EmploymentHistory is one past or current position of a person.
type EmploymentHistory struct {
	ID               *string `json:"id,omitempty"`
	OrganizationID   *string `json:"organization_id,omitempty"`
	OrganizationName *string `json:"organization_name,omitempty"`
	Title            *string `json:"title,omitempty"`
	StartDate        *string `json:"start_date,omitempty"`
	EndDate          *string `json:"end_date,omitempty"`
	Current          *bool   `json:"current,omitempty"`
}

// Person is a fully enriched person record.
type Person struct {
	ID                string              `json:"id"`
	FirstName         *string             `json:"first_name,omitempty"`
	LastName          *string             `json:"last_name,omitempty"`
	Name              *string             `json:"name,omitempty"`
	LinkedinURL       *string             `json:"linkedin_url,omitempty"`
	Title             *string             `json:"title,omitempty"`
	Headline          *string             `json:"headline,omitempty"`
	Email             *string             `json:"email,omitempty"`
	EmailStatus       *string             `json:"email_status,omitempty"`
	PhotoURL          *string             `json:"photo_url,omitempty"`
	TwitterURL        *string             `json:"twitter_url,omitempty"`
	GithubURL         *string             `json:"github_url,omitempty"`
	FacebookURL       *string             `json:"facebook_url,omitempty"`
	City              *string             `json:"city,omitempty"`
	State             *string             `json:"state,omitempty"`
	Country           *string             `json:"country,omitempty"`
	Seniority         *string             `json:"seniority,omitempty"`
	Departments       []string            `json:"departments"`
	Subdepartments    []string            `json:"subdepartments"`
	Functions         []string            `json:"functions"`
	OrganizationID    *string             `json:"organization_id,omitempty"`
	Organization      *Organization       `json:"organization,omitempty"`
	EmploymentHistory []EmploymentHistory `json:"employment_history"`
}

// PeopleEnrichmentResponse holds the matched person, if any.
type PeopleEnrichmentResponse struct {
	Person *Person `json:"person,omitempty"`
}

// Check verifies the identifiers of the matched person and its organization.
func (r *PeopleEnrichmentResponse) Check() error {
	if r.Person == nil {
		return nil
	}
	if r.Person.ID == "" {
		return ErrMissingIdentifier
	}
	if r.Person.Organization != nil {
		return r.Person.Organization.Check()
	}
	return nil
}

// PeopleEnrichmentInputSchema documents PeopleEnrichmentQuery.
func PeopleEnrichmentInputSchema() *jsonschema.Schema {
	revealDefault := false
	return objectSchema("Identifying data for exactly one person. Supply as much as you know; at least an id, email, hashed email, "+
		"LinkedIn URL, full name, or a name together with the employer.", nil, map[string]*jsonschema.Schema{
		"first_name":        stringField("The first name of the person. Example: `tim`"),
		"last_name":         stringField("The last name of the person. Example: `zheng`"),
		"name":              stringField("The full name of the person, typically first and last name separated by a space. Example: `tim zheng`"),
		"email":             stringField("The email address of the person. Example: `example@email.com`"),
		"hashed_email":      stringField("The MD5 or SHA-256 hashed email of the person."),
		"organization_name": stringField("The name of the person's employer, current or previous. Example: `apollo`"),
		"domain":            stringField("The domain of the person's employer, without `www.` or `@`. Example: `apollo.io`"),
		"id":                stringField("The Apollo ID of the person, as returned by people search. Example: `587cf802f65125cad923a266`"),
		"linkedin_url":      stringField("The URL of the person's LinkedIn profile. Example: `http://www.linkedin.com/in/tim-zheng-677ba010`"),
		"reveal_personal_emails": boolField("Set to true to enrich with personal emails. May consume credits and is not "+
			"available for people in GDPR-compliant regions.", &revealDefault),
		"reveal_phone_number": boolField("Set to true to enrich with phone numbers. Requires webhook_url; Apollo delivers "+
			"phone numbers asynchronously to that webhook.", &revealDefault),
		"webhook_url": stringField("The webhook that receives phone numbers when reveal_phone_number is true."),
	})
}
