// ABOUTME: One method per Apollo operation with its fixed method, path and encoding
// ABOUTME: Each returns the typed response or nil when the call did not succeed

package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/2389/apollo-gateway/internal/apollo"
)

// PeopleEnrichment looks up one person (POST /people/match, JSON body).
func (c *Client) PeopleEnrichment(ctx context.Context, q *apollo.PeopleEnrichmentQuery) *apollo.PeopleEnrichmentResponse {
	if q == nil {
		q = &apollo.PeopleEnrichmentQuery{}
	}
	var resp apollo.PeopleEnrichmentResponse
	if !c.do(ctx, call{op: OpPeopleEnrichment, method: http.MethodPost, path: "/people/match", body: q}, &resp) {
		return nil
	}
	return &resp
}

// OrganizationEnrichment looks up one company by domain (GET
// /organizations/enrich, query string).
func (c *Client) OrganizationEnrichment(ctx context.Context, q *apollo.OrganizationEnrichmentQuery) *apollo.OrganizationEnrichmentResponse {
	if q == nil {
		q = &apollo.OrganizationEnrichmentQuery{}
	}
	var resp apollo.OrganizationEnrichmentResponse
	if !c.do(ctx, call{op: OpOrganizationEnrichment, method: http.MethodGet, path: "/organizations/enrich", query: q.Values()}, &resp) {
		return nil
	}
	return &resp
}

// PeopleSearch runs a filtered people search (POST /mixed_people/api_search).
func (c *Client) PeopleSearch(ctx context.Context, q *apollo.PeopleSearchQuery) *apollo.PeopleSearchResponse {
	if q == nil {
		q = &apollo.PeopleSearchQuery{}
	}
	var resp apollo.PeopleSearchResponse
	if !c.do(ctx, call{op: OpPeopleSearch, method: http.MethodPost, path: "/mixed_people/api_search", body: q}, &resp) {
		return nil
	}
	return &resp
}

// OrganizationSearch runs a filtered company search (POST /mixed_companies/search).
func (c *Client) OrganizationSearch(ctx context.Context, q *apollo.OrganizationSearchQuery) *apollo.OrganizationSearchResponse {
	if q == nil {
		q = &apollo.OrganizationSearchQuery{}
	}
	var resp apollo.OrganizationSearchResponse
	if !c.do(ctx, call{op: OpOrganizationSearch, method: http.MethodPost, path: "/mixed_companies/search", body: q}, &resp) {
		return nil
	}
	return &resp
}

// OrganizationJobPostings lists a company's open roles (GET
// /organizations/{id}/job_postings, no body).
func (c *Client) OrganizationJobPostings(ctx context.Context, q *apollo.OrganizationJobPostingsQuery) *apollo.OrganizationJobPostingsResponse {
	if q == nil {
		q = &apollo.OrganizationJobPostingsQuery{}
	}
	path := "/organizations/" + url.PathEscape(q.OrganizationID) + "/job_postings"
	var resp apollo.OrganizationJobPostingsResponse
	if !c.do(ctx, call{op: OpOrganizationJobPostings, method: http.MethodGet, path: path}, &resp) {
		return nil
	}
	return &resp
}
