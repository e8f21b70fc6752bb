// Package builtins provides the gateway's built-in tool packs.
//
// # Apollo Pack (builtin:apollo)
//
// Enrichment tools require the "enrichment" capability because every call
// spends Apollo credits:
//
//   - people_enrichment: enrich data for 1 person
//   - organization_enrichment: enrich data for 1 company by domain
//
// Search tools require the "search" capability:
//
//   - people_search: find net new people (no email or phone returned)
//   - organization_search: find organizations
//   - organization_job_postings: list job postings for an organization
//
// # Arguments
//
// The four query tools take their filters under a single "query" key:
//
//	{"query": {"person_titles": ["Marketing Manager"], "person_seniorities": ["vp"]}}
//
// organization_job_postings takes the ID directly:
//
//	{"organization_id": "5e66b6381e05b4008c8331b8"}
//
// Unknown keys are rejected at both levels.
//
// # Registration
//
//	c, _ := client.New(client.Config{APIKey: key})
//	registry.RegisterBuiltinPack(builtins.ApolloPack(c))
//
// # Results
//
// Each handler returns the flattened response, or packs.AbsentResult when
// the upstream call did not succeed. Validation errors are returned before
// any request is sent.
package builtins
