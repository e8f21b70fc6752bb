// ABOUTME: Organization Enrichment schema: a company domain in, one organization record out.
// ABOUTME: The query is sent as URL parameters rather than a JSON body.

package apollo

import (
	"net/url"

	"github.com/google/jsonschema-go/jsonschema"
)

// OrganizationEnrichmentQuery identifies one company by its domain.
type OrganizationEnrichmentQuery struct {
	Domain string `json:"domain"`
}

func (q *OrganizationEnrichmentQuery) Normalize() {
	q.Domain = NormalizeDomain(q.Domain)
}

func (q *OrganizationEnrichmentQuery) Validate() error {
	var v validator
	switch {
	case q.Domain == "":
		v.fail("domain", "is required")
	case !isDomain(q.Domain):
		v.fail("domain", "%q is not a bare domain name", q.Domain)
	}
	return v.err()
}

// Values encodes the query as URL parameters.
func (q *OrganizationEnrichmentQuery) Values() url.Values {
	vals := url.Values{}
	if q.Domain != "" {
		vals.Set("domain", q.Domain)
	}
	return vals
}

// OrganizationEnrichmentResponse holds the matched organization, if any.
type OrganizationEnrichmentResponse struct {
	Organization *Organization `json:"organization,omitempty"`
}

// Check verifies the organization's identifier when one was returned.
func (r *OrganizationEnrichmentResponse) Check() error {
	if r.Organization == nil {
		return nil
	}
	return r.Organization.Check()
}

// OrganizationEnrichmentInputSchema documents OrganizationEnrichmentQuery.
func OrganizationEnrichmentInputSchema() *jsonschema.Schema {
	return objectSchema("The company to enrich.", []string{"domain"}, map[string]*jsonschema.Schema{
		"domain": stringField("The domain of the company, without `www.`, `@`, or a scheme. Examples: `apollo.io`; `microsoft.com`"),
	})
}
