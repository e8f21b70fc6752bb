// Package apollo declares the request and response schemas of the Apollo.io API
// operations exposed by the gateway.
//
// # Overview
//
// Every operation has a named pair of types plus a JSON Schema describing its
// input:
//
//	PeopleEnrichmentQuery        / PeopleEnrichmentResponse        / PeopleEnrichmentInputSchema
//	OrganizationEnrichmentQuery  / OrganizationEnrichmentResponse  / OrganizationEnrichmentInputSchema
//	PeopleSearchQuery            / PeopleSearchResponse            / PeopleSearchInputSchema
//	OrganizationSearchQuery      / OrganizationSearchResponse      / OrganizationSearchInputSchema
//	OrganizationJobPostingsQuery / OrganizationJobPostingsResponse / OrganizationJobPostingsInputSchema
//
// # Optionality
//
// Query fields are pointers or slices tagged omitempty, so a field the caller
// never set is absent from the serialized request. Normalize turns blank strings
// and empty lists into "unset" as well.
//
// Response fields mirror the upstream payload. Optional scalars are pointers and
// stay nil when the upstream omitted them; primary identifiers are plain values
// and a body without them fails Check. Response lists are not tagged omitempty:
// a list the upstream sent empty stays an empty list, an omitted one stays nil.
// List responses always carry their manifest (total count plus the ordered
// result list); a body without the count fails Check rather than reporting zero.
//
// # Validation
//
// Queries implement the Query interface. Normalize coerces values into their
// canonical form (trimmed strings, bare lowercase domains) and Validate checks
// them against the declared constraints: closed enumerations (matched
// case-sensitively, like the tool schemas), "low,high"
// numeric ranges, paging bounds, and per-operation rules. Validation failures
// are reported as ValidationErrors wrapping ErrInvalidQuery.
//
// This package performs no I/O.
package apollo
