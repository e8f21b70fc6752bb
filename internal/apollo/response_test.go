// ABOUTME: Tests for response decoding: absent fields stay nil and identifiers are checked.
// ABOUTME: Uses JSON fixtures shaped like real Apollo payloads.

package apollo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeopleSearchResponseDecode(t *testing.T) {
	fixture := `{"total_entries": 1, "people": [{"id":"abc","first_name":"Tim","title":"VP Marketing","unknown_field":42}]}`

	var resp PeopleSearchResponse
	require.NoError(t, json.Unmarshal([]byte(fixture), &resp))
	require.NoError(t, resp.Check())

	require.NotNil(t, resp.TotalEntries)
	assert.Equal(t, 1, *resp.TotalEntries)
	require.Len(t, resp.People, 1)
	p := resp.People[0]
	assert.Equal(t, "abc", p.ID)
	assert.Equal(t, "Tim", p.FirstName)
	require.NotNil(t, p.Title)
	assert.Equal(t, "VP Marketing", *p.Title)
	assert.Nil(t, p.HasEmail)
	assert.Nil(t, p.LastNameObfuscated)
	assert.Nil(t, p.Organization)
}

func TestPeopleSearchResponsePreservesOrder(t *testing.T) {
	fixture := `{"total_entries": 3, "people": [
		{"id":"c","first_name":"Cara"},
		{"id":"a","first_name":"Abe"},
		{"id":"b","first_name":"Bo","organization":{"name":"Apollo","has_phone":false}}
	]}`

	var resp PeopleSearchResponse
	require.NoError(t, json.Unmarshal([]byte(fixture), &resp))
	require.NoError(t, resp.Check())

	ids := []string{resp.People[0].ID, resp.People[1].ID, resp.People[2].ID}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
	require.NotNil(t, resp.People[2].Organization.HasPhone)
	assert.False(t, *resp.People[2].Organization.HasPhone, "false availability flags are kept, not dropped")
}

func TestPeopleSearchResponseMissingList(t *testing.T) {
	var resp PeopleSearchResponse
	require.NoError(t, json.Unmarshal([]byte(`{"total_entries": 0}`), &resp))
	require.NoError(t, resp.Check())
	assert.NotNil(t, resp.People)
	assert.Empty(t, resp.People)
}

func TestSearchResponseZeroCountIsKept(t *testing.T) {
	var people PeopleSearchResponse
	require.NoError(t, json.Unmarshal([]byte(`{"total_entries":0,"people":[]}`), &people))
	require.NoError(t, people.Check())
	assert.Equal(t, Ptr(0), people.TotalEntries)

	var orgs OrganizationSearchResponse
	require.NoError(t, json.Unmarshal([]byte(`{"pagination":{"total_entries":0}}`), &orgs))
	require.NoError(t, orgs.Check())
	require.NotNil(t, orgs.Pagination)
	assert.Equal(t, Ptr(0), orgs.Pagination.TotalEntries)
	assert.Nil(t, orgs.Pagination.TotalPages)
	assert.NotNil(t, orgs.Organizations)
	assert.Nil(t, orgs.Accounts)
}

func TestResponseKeepsPresentEmptyLists(t *testing.T) {
	var resp PeopleEnrichmentResponse
	require.NoError(t, json.Unmarshal([]byte(`{"person":{"id":"p1","departments":[],"employment_history":[],
		"organization":{"id":"o1","industries":[]}}}`), &resp))
	require.NoError(t, resp.Check())

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	var back map[string]any
	require.NoError(t, json.Unmarshal(raw, &back))
	person := back["person"].(map[string]any)
	assert.Equal(t, []any{}, person["departments"])
	assert.Equal(t, []any{}, person["employment_history"])
	assert.Equal(t, []any{}, person["organization"].(map[string]any)["industries"])
}

func TestResponseCheckMissingIdentifiers(t *testing.T) {
	tests := []struct {
		name    string
		fixture string
		target  interface{ Check() error }
	}{
		{"search person without id", `{"total_entries":1,"people":[{"first_name":"Tim"}]}`, &PeopleSearchResponse{}},
		{"search org without name", `{"total_entries":1,"people":[{"id":"a","first_name":"Tim","organization":{"has_city":true}}]}`, &PeopleSearchResponse{}},
		{"enriched person without id", `{"person":{"first_name":"Tim"}}`, &PeopleEnrichmentResponse{}},
		{"enriched organization without id", `{"organization":{"name":"Apollo"}}`, &OrganizationEnrichmentResponse{}},
		{"search organization without id", `{"pagination":{"total_entries":1},"organizations":[{"name":"Apollo"}]}`, &OrganizationSearchResponse{}},
		{"job posting without id", `{"organization_job_postings":[{"title":"Engineer"}]}`, &OrganizationJobPostingsResponse{}},
		{"people search without count", `{"people":[{"id":"abc","first_name":"Tim"}]}`, &PeopleSearchResponse{}},
		{"people search with null count", `{"total_entries":null,"people":[]}`, &PeopleSearchResponse{}},
		{"organization search without pagination", `{"organizations":[]}`, &OrganizationSearchResponse{}},
		{"organization search without count", `{"pagination":{"page":1,"per_page":10},"organizations":[]}`, &OrganizationSearchResponse{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, json.Unmarshal([]byte(tt.fixture), tt.target))
			assert.ErrorIs(t, tt.target.Check(), ErrMissingIdentifier)
		})
	}
}

func TestEnrichmentResponsesAllowNoMatch(t *testing.T) {
	var person PeopleEnrichmentResponse
	require.NoError(t, json.Unmarshal([]byte(`{}`), &person))
	assert.NoError(t, person.Check())
	assert.Nil(t, person.Person)

	var org OrganizationEnrichmentResponse
	require.NoError(t, json.Unmarshal([]byte(`{}`), &org))
	assert.NoError(t, org.Check())
	assert.Nil(t, org.Organization)
}

func TestOrganizationEnrichmentResponseDecode(t *testing.T) {
	fixture := `{"organization":{"id":"5e66b6381e05b4008c8331b8","name":"Apollo.io","founded_year":2015,
		"primary_phone":{"number":"+1 415-555-0100"},"industries":["information technology & services"],"annual_revenue":100000000}}`

	var resp OrganizationEnrichmentResponse
	require.NoError(t, json.Unmarshal([]byte(fixture), &resp))
	require.NoError(t, resp.Check())

	org := resp.Organization
	require.NotNil(t, org)
	assert.Equal(t, "5e66b6381e05b4008c8331b8", org.ID)
	assert.Equal(t, 2015, *org.FoundedYear)
	assert.Equal(t, "+1 415-555-0100", *org.PrimaryPhone.Number)
	assert.Nil(t, org.PrimaryPhone.Source)
	assert.Nil(t, org.EstimatedNumEmployees)
	assert.Nil(t, org.Keywords)
}
