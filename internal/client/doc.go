// Package client is the Apollo gateway client.
//
// # Overview
//
// A Client owns the transport configuration (base URL, static headers with
// the API key) and exposes one method per operation:
//
//   - PeopleEnrichment: POST /people/match, JSON body
//   - OrganizationEnrichment: GET /organizations/enrich, query string
//   - PeopleSearch: POST /mixed_people/api_search, JSON body
//   - OrganizationSearch: POST /mixed_companies/search, JSON body
//   - OrganizationJobPostings: GET /organizations/{id}/job_postings, path parameter
//
// Queries are expected to be normalized and validated by the caller
// (see package apollo). The client only serializes, sends and decodes.
//
// # Absence
//
// Every method returns the typed response or nil. Nil means the call did not
// succeed: a status other than 200, a transport error, an unreadable or
// malformed body, or a body missing its primary identifiers. The cause never
// reaches the caller as an error. It is logged at WARN with a request_id and,
// when Config.Failures is set, recorded as a store.Failure with a reason:
//
//   - unauthorized: 401 or 403
//   - not_found: 404
//   - rate_limited: 429
//   - client_error: any other 4xx
//   - server_error: 5xx and any other status
//   - transport: connection, timeout or read errors
//   - decode: the 200 body could not be parsed
//
// # Transport
//
// The default HTTP client comes from go-cleanhttp with keep-alives disabled,
// so each call uses its own connection. There are no retries and no cache.
// Cancellation is driven by the caller's context.
//
// # Usage
//
//	c, err := client.New(client.Config{APIKey: key, Failures: st})
//	resp := c.OrganizationEnrichment(ctx, &apollo.OrganizationEnrichmentQuery{Domain: "apollo.io"})
//	if resp == nil {
//	    // absent; see logs or the failure store
//	}
package client
