// ABOUTME: Organization Search schema: company filters and a paginated organization list.
// ABOUTME: Includes the nested revenue_range fragment and employee headcount ranges.

package apollo

import "github.com/google/jsonschema-go/jsonschema"

// RevenueRange bounds a company's annual revenue. Either side may be open.
type RevenueRange struct {
	Min *int64 `json:"min,omitempty"`
	Max *int64 `json:"max,omitempty"`
}

// OrganizationSearchQuery filters companies in the Apollo database.
// Values inside one list are OR'ed; distinct fields are AND'ed.
type OrganizationSearchQuery struct {
	OrganizationNumEmployeesRanges    []string      `json:"organization_num_employees_ranges,omitempty"`
	OrganizationLocations             []string      `json:"organization_locations,omitempty"`
	OrganizationNotLocations          []string      `json:"organization_not_locations,omitempty"`
	RevenueRange                      *RevenueRange `json:"revenue_range,omitempty"`
	CurrentlyUsingAnyOfTechnologyUIDs []string      `json:"currently_using_any_of_technology_uids,omitempty"`
	QOrganizationKeywordTags          []string      `json:"q_organization_keyword_tags,omitempty"`
	QOrganizationName                 *string       `json:"q_organization_name,omitempty"`
	OrganizationIDs                   []string      `json:"organization_ids,omitempty"`
	Page                              *int          `json:"page,omitempty"`
	PerPage                           *int          `json:"per_page,omitempty"`
}

func (q *OrganizationSearchQuery) Normalize() {
	q.OrganizationNumEmployeesRanges = normalizeList(q.OrganizationNumEmployeesRanges, rangeValue)
	q.OrganizationLocations = normalizeList(q.OrganizationLocations, trimmed)
	q.OrganizationNotLocations = normalizeList(q.OrganizationNotLocations, trimmed)
	if q.RevenueRange != nil && q.RevenueRange.Min == nil && q.RevenueRange.Max == nil {
		q.RevenueRange = nil
	}
	q.CurrentlyUsingAnyOfTechnologyUIDs = normalizeList(q.CurrentlyUsingAnyOfTechnologyUIDs, lowered)
	q.QOrganizationKeywordTags = normalizeList(q.QOrganizationKeywordTags, trimmed)
	q.QOrganizationName = normalizeString(q.QOrganizationName)
	q.OrganizationIDs = normalizeList(q.OrganizationIDs, trimmed)
}

func (q *OrganizationSearchQuery) Validate() error {
	var v validator
	v.ranges("organization_num_employees_ranges", q.OrganizationNumEmployeesRanges)
	if r := q.RevenueRange; r != nil {
		if r.Min != nil && *r.Min < 0 {
			v.fail("revenue_range.min", "must not be negative")
		}
		if r.Max != nil && *r.Max < 0 {
			v.fail("revenue_range.max", "must not be negative")
		}
		if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
			v.fail("revenue_range", "min %d is above max %d", *r.Min, *r.Max)
		}
	}
	v.paging(q.Page, q.PerPage)
	return v.err()
}

// Pagination is the manifest of a paginated list response. TotalEntries is
// required; Check rejects a manifest without it.
type Pagination struct {
	Page         *int `json:"page,omitempty"`
	PerPage      *int `json:"per_page,omitempty"`
	TotalEntries *int `json:"total_entries"`
	TotalPages   *int `json:"total_pages,omitempty"`
}

// OrganizationSearchResponse is one page of organization search results.
type OrganizationSearchResponse struct {
	Pagination    *Pagination    `json:"pagination"`
	Organizations []Organization `json:"organizations"`
	Accounts      []Organization `json:"accounts"`
}

// Check requires the pagination manifest, verifies every returned record and
// fills in an empty result list.
func (r *OrganizationSearchResponse) Check() error {
	if r.Pagination == nil || r.Pagination.TotalEntries == nil {
		return ErrMissingIdentifier
	}
	if r.Organizations == nil {
		r.Organizations = []Organization{}
	}
	for i := range r.Organizations {
		if err := r.Organizations[i].Check(); err != nil {
			return err
		}
	}
	for i := range r.Accounts {
		if err := r.Accounts[i].Check(); err != nil {
			return err
		}
	}
	return nil
}

// OrganizationSearchInputSchema documents OrganizationSearchQuery.
func OrganizationSearchInputSchema() *jsonschema.Schema {
	return objectSchema("Organization Search filters. Values within one list are OR'ed, different fields are AND'ed.", nil, map[string]*jsonschema.Schema{
		"organization_num_employees_ranges": rangeList("Headcount ranges of the company. Each range is the lower and upper bound " +
			"separated only by a comma. Examples: `1,10`; `250,500`; `10000,20000`"),
		"organization_locations": stringList("Headquarters locations of the company: cities, US states, and countries. " +
			"Other office locations are ignored. Examples: `texas`; `tokyo`; `spain`"),
		"organization_not_locations": stringList("Headquarters locations to exclude from the results. Examples: `minnesota`; `ireland`"),
		"revenue_range": objectSchema("Annual revenue bounds in whole currency units, without symbols or separators. "+
			"Either bound may be omitted.", nil, map[string]*jsonschema.Schema{
			"min": intField("Lower revenue bound. Example: `300000`", floatPtr(0), nil),
			"max": intField("Upper revenue bound. Example: `50000000`", floatPtr(0), nil),
		}),
		"currently_using_any_of_technology_uids": stringList("Technologies the company currently uses; matches any of them. " +
			"Use underscores for spaces. Examples: `salesforce`; `google_analytics`; `wordpress_org`"),
		"q_organization_keyword_tags": stringList("Keywords associated with the company. Examples: `mining`; `sales strategy`; `consulting`"),
		"q_organization_name":         stringField("Filter by company name; partial names match. Example: `apollo`"),
		"organization_ids": stringList("Apollo IDs of specific companies to include. Example: `5e66b6381e05b4008c8331b8`"),
		"page":             pageField(),
		"per_page":         perPageField(),
	})
}
