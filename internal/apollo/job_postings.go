// ABOUTME: Organization Job Postings schema: an organization ID in, its open postings out.
// ABOUTME: The ID is embedded in the request path; there is no request body.

package apollo

import "github.com/google/jsonschema-go/jsonschema"

// OrganizationJobPostingsQuery names the organization whose postings are listed.
type OrganizationJobPostingsQuery struct {
	OrganizationID string `json:"organization_id"`
}

func (q *OrganizationJobPostingsQuery) Normalize() {
	q.OrganizationID = trimmed(q.OrganizationID)
}

func (q *OrganizationJobPostingsQuery) Validate() error {
	var v validator
	switch {
	case q.OrganizationID == "":
		v.fail("organization_id", "is required")
	case !isAlphanumeric(q.OrganizationID):
		v.fail("organization_id", "%q must be an alphanumeric Apollo ID", q.OrganizationID)
	}
	return v.err()
}

// JobPosting is one open position at an organization.
type JobPosting struct {
	ID         string  `json:"id"`
	Title      *string `json:"title,omitempty"`
	URL        *string `json:"url,omitempty"`
	City       *string `json:"city,omitempty"`
	State      *string `json:"state,omitempty"`
	Country    *string `json:"country,omitempty"`
	LastSeenAt *string `json:"last_seen_at,omitempty"`
	PostedAt   *string `json:"posted_at,omitempty"`
}

// OrganizationJobPostingsResponse lists postings in upstream order.
type OrganizationJobPostingsResponse struct {
	OrganizationJobPostings []JobPosting `json:"organization_job_postings"`
}

// Check verifies posting identifiers and fills in an empty result list.
func (r *OrganizationJobPostingsResponse) Check() error {
	if r.OrganizationJobPostings == nil {
		r.OrganizationJobPostings = []JobPosting{}
	}
	for _, p := range r.OrganizationJobPostings {
		if p.ID == "" {
			return ErrMissingIdentifier
		}
	}
	return nil
}

// OrganizationJobPostingsInputSchema documents OrganizationJobPostingsQuery.
func OrganizationJobPostingsInputSchema() *jsonschema.Schema {
	return objectSchema("The organization whose job postings are listed.", []string{"organization_id"}, map[string]*jsonschema.Schema{
		"organization_id": stringField("The Apollo ID of the organization, as returned by organization search. " +
			"Example: `5e66b6381e05b4008c8331b8`"),
	})
}
