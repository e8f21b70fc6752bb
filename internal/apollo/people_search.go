// ABOUTME: People API Search schema: query filters and privacy-limited person results.
// ABOUTME: Results carry availability flags instead of emails or phone numbers.

package apollo

import "github.com/google/jsonschema-go/jsonschema"

// PeopleSearchQuery filters people in the Apollo database.
// Values inside one list are OR'ed; distinct fields are AND'ed.
type PeopleSearchQuery struct {
	PersonTitles                   []string `json:"person_titles,omitempty"`
	IncludeSimilarTitles           *bool    `json:"include_similar_titles,omitempty"`
	PersonLocations                []string `json:"person_locations,omitempty"`
	PersonSeniorities              []string `json:"person_seniorities,omitempty"`
	OrganizationLocations          []string `json:"organization_locations,omitempty"`
	QOrganizationDomainsList       []string `json:"q_organization_domains_list,omitempty"`
	ContactEmailStatus             []string `json:"contact_email_status,omitempty"`
	OrganizationIDs                []string `json:"organization_ids,omitempty"`
	OrganizationNumEmployeesRanges []string `json:"organization_num_employees_ranges,omitempty"`
	QKeywords                      *string  `json:"q_keywords,omitempty"`
	Page                           *int     `json:"page,omitempty"`
	PerPage                        *int     `json:"per_page,omitempty"`
}

// SimilarTitles reports whether titles similar to PersonTitles should match.
// Unset means true, which is also what the upstream assumes, so the default is
// honored without putting the field on the wire.
func (q *PeopleSearchQuery) SimilarTitles() bool {
	if q.IncludeSimilarTitles == nil {
		return true
	}
	return *q.IncludeSimilarTitles
}

// Normalize trims list values and drops empty ones. Closed enums keep their case:
// the tool schema matches them exactly, so Validate does too.
func (q *PeopleSearchQuery) Normalize() {
	q.PersonTitles = normalizeList(q.PersonTitles, trimmed)
	q.PersonLocations = normalizeList(q.PersonLocations, trimmed)
	q.PersonSeniorities = normalizeList(q.PersonSeniorities, trimmed)
	q.OrganizationLocations = normalizeList(q.OrganizationLocations, trimmed)
	q.QOrganizationDomainsList = normalizeList(q.QOrganizationDomainsList, NormalizeDomain)
	q.ContactEmailStatus = normalizeList(q.ContactEmailStatus, trimmed)
	q.OrganizationIDs = normalizeList(q.OrganizationIDs, trimmed)
	q.OrganizationNumEmployeesRanges = normalizeList(q.OrganizationNumEmployeesRanges, rangeValue)
	q.QKeywords = normalizeString(q.QKeywords)
}

func (q *PeopleSearchQuery) Validate() error {
	var v validator
	v.enum("person_seniorities", q.PersonSeniorities, Seniorities)
	v.enum("contact_email_status", q.ContactEmailStatus, EmailStatuses)
	v.ranges("organization_num_employees_ranges", q.OrganizationNumEmployeesRanges)
	v.domains("q_organization_domains_list", q.QOrganizationDomainsList)
	if len(q.QOrganizationDomainsList) > MaxDomains {
		v.fail("q_organization_domains_list", "accepts at most %d domains, got %d", MaxDomains, len(q.QOrganizationDomainsList))
	}
	v.paging(q.Page, q.PerPage)
	return v.err()
}

// ApiSearchOrganization is the employer summary attached to a search result.
type ApiSearchOrganization struct {
	Name             string `json:"name"`
	HasIndustry      *bool  `json:"has_industry,omitempty"`
	HasPhone         *bool  `json:"has_phone,omitempty"`
	HasCity          *bool  `json:"has_city,omitempty"`
	HasState         *bool  `json:"has_state,omitempty"`
	HasCountry       *bool  `json:"has_country,omitempty"`
	HasZipCode       *bool  `json:"has_zip_code,omitempty"`
	HasRevenue       *bool  `json:"has_revenue,omitempty"`
	HasEmployeeCount *bool  `json:"has_employee_count,omitempty"`
}

// ApiSearchPerson is a person search hit. Contact details are never included;
// use people enrichment to obtain them.
type ApiSearchPerson struct {
	ID                 string                 `json:"id"`
	FirstName          string                 `json:"first_name"`
	LastNameObfuscated *string                `json:"last_name_obfuscated,omitempty"`
	Title              *string                `json:"title,omitempty"`
	LastRefreshedAt    *string                `json:"last_refreshed_at,omitempty"`
	HasEmail           *bool                  `json:"has_email,omitempty"`
	HasCity            *bool                  `json:"has_city,omitempty"`
	HasState           *bool                  `json:"has_state,omitempty"`
	HasCountry         *bool                  `json:"has_country,omitempty"`
	HasDirectPhone     *string                `json:"has_direct_phone,omitempty"`
	Organization       *ApiSearchOrganization `json:"organization,omitempty"`
}

// PeopleSearchResponse is one page of people search results.
type PeopleSearchResponse struct {
	TotalEntries *int              `json:"total_entries"`
	People       []ApiSearchPerson `json:"people"`
}

// Check requires the result count, verifies the identifiers of every hit and
// fills in an empty result list.
func (r *PeopleSearchResponse) Check() error {
	if r.TotalEntries == nil {
		return ErrMissingIdentifier
	}
	if r.People == nil {
		r.People = []ApiSearchPerson{}
	}
	for i := range r.People {
		p := &r.People[i]
		if p.ID == "" || p.FirstName == "" {
			return ErrMissingIdentifier
		}
		if p.Organization != nil && p.Organization.Name == "" {
			return ErrMissingIdentifier
		}
	}
	return nil
}

// PeopleSearchInputSchema documents PeopleSearchQuery.
func PeopleSearchInputSchema() *jsonschema.Schema {
	similarDefault := true
	return objectSchema("People API Search filters. Values within one list are OR'ed, different fields are AND'ed.", nil, map[string]*jsonschema.Schema{
		"person_titles": stringList("Job titles held by the people you want to find. A person only needs to match 1 of the titles. " +
			"Similar titles also match unless include_similar_titles is false, e.g. `marketing manager` may return `content marketing manager`. " +
			"Examples: `sales development representative`; `marketing manager`; `research analyst`"),
		"include_similar_titles": boolField("Whether people with job titles similar to person_titles are returned. "+
			"Set to false to return only strict title matches.", &similarDefault),
		"person_locations": stringList("The location where people live: cities, US states, and countries. " +
			"Use organization_locations for the employer's headquarters. Examples: `california`; `ireland`; `chicago`"),
		"person_seniorities": enumList("The seniority that people hold within their current employer, based on the current title only. "+
			"A person only needs to match 1 of the seniorities.", Seniorities),
		"organization_locations": stringList("The headquarters location of a person's current employer: cities, US states, and countries. " +
			"Only the HQ counts, not other offices. Examples: `texas`; `tokyo`; `spain`"),
		"q_organization_domains_list": stringList("Domains of the person's current or previous employer, without `www.` or `@`. " +
			"Up to 1,000 domains. Examples: `apollo.io`; `microsoft.com`"),
		"contact_email_status": enumList("Email statuses of the people you want to find. Multiple statuses expand the search.", EmailStatuses),
		"organization_ids": stringList("Apollo IDs of the employers to include, as returned by organization search. " +
			"Example: `5e66b6381e05b4008c8331b8`"),
		"organization_num_employees_ranges": rangeList("Headcount ranges of the person's current employer. Each range is the lower and upper " +
			"bound separated only by a comma. Examples: `1,10`; `250,500`; `10000,20000`"),
		"q_keywords": stringField("A string of words over which to filter the results."),
		"page":       pageField(),
		"per_page":   perPageField(),
	})
}
