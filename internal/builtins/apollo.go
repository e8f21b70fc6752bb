// ABOUTME: Apollo pack exposes the five Apollo operations as tools.
// ABOUTME: Enrichment tools require "enrichment", search tools require "search".

package builtins

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/2389/apollo-gateway/internal/apollo"
	"github.com/2389/apollo-gateway/internal/packs"
)

// ApolloPackID identifies the Apollo pack in the registry.
const ApolloPackID = "builtin:apollo"

// Capabilities required by the Apollo tools.
const (
	CapEnrichment = "enrichment"
	CapSearch     = "search"
)

// Gateway is the upstream the Apollo pack calls. *client.Client implements it.
type Gateway interface {
	PeopleEnrichment(ctx context.Context, q *apollo.PeopleEnrichmentQuery) *apollo.PeopleEnrichmentResponse
	OrganizationEnrichment(ctx context.Context, q *apollo.OrganizationEnrichmentQuery) *apollo.OrganizationEnrichmentResponse
	PeopleSearch(ctx context.Context, q *apollo.PeopleSearchQuery) *apollo.PeopleSearchResponse
	OrganizationSearch(ctx context.Context, q *apollo.OrganizationSearchQuery) *apollo.OrganizationSearchResponse
	OrganizationJobPostings(ctx context.Context, q *apollo.OrganizationJobPostingsQuery) *apollo.OrganizationJobPostingsResponse
}

// ApolloPack creates the Apollo pack backed by g.
func ApolloPack(g Gateway) *packs.BuiltinPack {
	return &packs.BuiltinPack{
		ID: ApolloPackID,
		Tools: []*packs.BuiltinTool{
			{
				Definition: &packs.ToolDefinition{
					Name: "people_enrichment",
					Description: "Use the People Enrichment endpoint to enrich data for 1 person.\n" +
						"https://docs.apollo.io/reference/people-enrichment",
					InputSchema:          wrapQuery(apollo.PeopleEnrichmentInputSchema()),
					RequiredCapabilities: []string{CapEnrichment},
				},
				Handler: queryHandler[apollo.PeopleEnrichmentQuery](true, g.PeopleEnrichment),
			},
			{
				Definition: &packs.ToolDefinition{
					Name: "organization_enrichment",
					Description: "Use the Organization Enrichment endpoint to enrich data for 1 company.\n" +
						"https://docs.apollo.io/reference/organization-enrichment",
					InputSchema:          wrapQuery(apollo.OrganizationEnrichmentInputSchema()),
					RequiredCapabilities: []string{CapEnrichment},
				},
				Handler: queryHandler[apollo.OrganizationEnrichmentQuery](true, g.OrganizationEnrichment),
			},
			{
				Definition: &packs.ToolDefinition{
					Name: "people_search",
					Description: "Use the People API Search endpoint to find net new people in the Apollo database.\n" +
						"Does not return email or phone; use People Enrichment to get contact details.\n" +
						"https://docs.apollo.io/reference/people-api-search",
					InputSchema:          wrapQuery(apollo.PeopleSearchInputSchema()),
					RequiredCapabilities: []string{CapSearch},
				},
				Handler: queryHandler[apollo.PeopleSearchQuery](true, g.PeopleSearch),
			},
			{
				Definition: &packs.ToolDefinition{
					Name: "organization_search",
					Description: "Use the Organization Search endpoint to find organizations.\n" +
						"https://docs.apollo.io/reference/organization-search",
					InputSchema:          wrapQuery(apollo.OrganizationSearchInputSchema()),
					RequiredCapabilities: []string{CapSearch},
				},
				Handler: queryHandler[apollo.OrganizationSearchQuery](true, g.OrganizationSearch),
			},
			{
				Definition: &packs.ToolDefinition{
					Name: "organization_job_postings",
					Description: "Use the Organization Job Postings endpoint to find job postings for a specific organization.\n" +
						"https://docs.apollo.io/reference/organization-jobs-postings",
					InputSchema:          apollo.OrganizationJobPostingsInputSchema(),
					RequiredCapabilities: []string{CapSearch},
				},
				Handler: queryHandler[apollo.OrganizationJobPostingsQuery](false, g.OrganizationJobPostings),
			},
		},
	}
}

// wrapQuery nests a query schema under a required "query" argument.
func wrapQuery(query *jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:                 "object",
		Properties:           map[string]*jsonschema.Schema{"query": query},
		Required:             []string{"query"},
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}
}

// queryHandler decodes the arguments into Q (under "query" when wrapped),
// normalizes and validates it, then calls the upstream. A nil upstream
// response becomes an absent result.
func queryHandler[Q any, PQ interface {
	*Q
	apollo.Query
}, R any](wrapped bool, call func(context.Context, PQ) *R) packs.ToolHandler {
	return func(ctx context.Context, input json.RawMessage) (*packs.Result, error) {
		q := PQ(new(Q))
		if wrapped {
			var in struct {
				Query PQ `json:"query"`
			}
			if err := packs.DecodeArguments(input, &in); err != nil {
				return nil, err
			}
			if in.Query != nil {
				q = in.Query
			}
		} else if err := packs.DecodeArguments(input, q); err != nil {
			return nil, err
		}

		q.Normalize()
		if err := q.Validate(); err != nil {
			return nil, err
		}

		resp := call(ctx, q)
		if resp == nil {
			return packs.AbsentResult(), nil
		}

		payload, err := packs.Flatten(resp)
		if err != nil {
			return nil, err
		}
		return &packs.Result{Payload: payload}, nil
	}
}
