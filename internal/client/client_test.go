// ABOUTME: Tests for the Apollo client against an httptest upstream
// ABOUTME: Covers request encoding per operation, headers, absence, and failure records

package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/apollo-gateway/internal/apollo"
	"github.com/2389/apollo-gateway/internal/store"
)

type captured struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

type fakeUpstream struct {
	mu       sync.Mutex
	requests []captured
	status   int
	body     string
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, captured{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	})
	status, resp := f.status, f.body
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(resp))
}

func (f *fakeUpstream) last(t *testing.T) captured {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func setupClient(t *testing.T, status int, body string) (*Client, *fakeUpstream, *store.MemoryStore) {
	t.Helper()
	up := &fakeUpstream{status: status, body: body}
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	failures := store.NewMemoryStore()
	c, err := New(Config{
		APIKey:   "test-key",
		BaseURL:  srv.URL + "/api/v1/",
		Failures: failures,
	})
	require.NoError(t, err)
	return c, up, failures
}

func TestNew(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = New(Config{APIKey: "k", BaseURL: "not a url"})
	assert.Error(t, err)

	c, err := New(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.NotNil(t, c.http)
}

func TestPeopleSearchRequest(t *testing.T) {
	c, up, failures := setupClient(t, http.StatusOK, `{"total_entries":1,"people":[{"id":"p1","first_name":"Tim"}]}`)

	q := &apollo.PeopleSearchQuery{
		PersonTitles:             []string{"Marketing Manager"},
		PersonSeniorities:        []string{"vp"},
		QOrganizationDomainsList: []string{"apollo.io"},
	}
	q.Normalize()
	require.NoError(t, q.Validate())

	resp := c.PeopleSearch(context.Background(), q)
	require.NotNil(t, resp)
	require.NotNil(t, resp.TotalEntries)
	assert.Equal(t, 1, *resp.TotalEntries)
	assert.Equal(t, "p1", resp.People[0].ID)

	req := up.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/v1/mixed_people/api_search", req.Path)
	assert.Empty(t, req.Query)
	assert.JSONEq(t, `{"person_titles":["Marketing Manager"],"person_seniorities":["vp"],"q_organization_domains_list":["apollo.io"]}`, string(req.Body))
	assert.Zero(t, failures.Len())
}

func TestStaticHeaders(t *testing.T) {
	c, up, _ := setupClient(t, http.StatusOK, `{"total_entries":0,"people":[]}`)

	require.NotNil(t, c.PeopleSearch(context.Background(), &apollo.PeopleSearchQuery{}))

	h := up.last(t).Header
	assert.Equal(t, "application/json", h.Get("Accept"))
	assert.Equal(t, "no-cache", h.Get("Cache-Control"))
	assert.Equal(t, "application/json", h.Get("Content-Type"))
	assert.Equal(t, "test-key", h.Get("X-Api-Key"))
}

func TestOrganizationEnrichmentRequest(t *testing.T) {
	c, up, _ := setupClient(t, http.StatusOK, `{"organization":{"id":"5e66b6381e05b4008c8331b8","name":"Apollo.io"}}`)

	resp := c.OrganizationEnrichment(context.Background(), &apollo.OrganizationEnrichmentQuery{Domain: "apollo.io"})
	require.NotNil(t, resp)
	require.NotNil(t, resp.Organization)
	assert.Equal(t, "5e66b6381e05b4008c8331b8", resp.Organization.ID)

	req := up.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/v1/organizations/enrich", req.Path)
	assert.Equal(t, "domain=apollo.io", req.Query)
	assert.Empty(t, req.Body)
}

func TestOrganizationEnrichmentNon200IsAbsent(t *testing.T) {
	c, _, failures := setupClient(t, http.StatusUnprocessableEntity, `{"error":"invalid domain"}`)

	resp := c.OrganizationEnrichment(context.Background(), &apollo.OrganizationEnrichmentQuery{Domain: "apollo.io"})
	assert.Nil(t, resp)

	recorded, err := failures.ListFailures(context.Background(), store.FailureFilter{})
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	f := recorded[0]
	assert.Equal(t, OpOrganizationEnrichment, f.Operation)
	assert.Equal(t, http.MethodGet, f.Method)
	assert.Equal(t, store.ReasonClientError, f.Reason)
	assert.Equal(t, http.StatusUnprocessableEntity, f.StatusCode)
	assert.Equal(t, `{"error":"invalid domain"}`, f.Body)
	assert.NotEmpty(t, f.RequestID)
}

func TestJobPostingsRequest(t *testing.T) {
	c, up, _ := setupClient(t, http.StatusOK, `{"organization_job_postings":[{"id":"j1","title":"Engineer"},{"id":"j2"}]}`)

	resp := c.OrganizationJobPostings(context.Background(), &apollo.OrganizationJobPostingsQuery{OrganizationID: "5e66b6381e05b4008c8331b8"})
	require.NotNil(t, resp)
	require.Len(t, resp.OrganizationJobPostings, 2)
	assert.Equal(t, "j1", resp.OrganizationJobPostings[0].ID)

	req := up.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/v1/organizations/5e66b6381e05b4008c8331b8/job_postings", req.Path)
	assert.Empty(t, req.Body)
}

func TestJobPostingsMalformedBody(t *testing.T) {
	c, _, failures := setupClient(t, http.StatusOK, `{"organization_job_postings": [`)

	resp := c.OrganizationJobPostings(context.Background(), &apollo.OrganizationJobPostingsQuery{OrganizationID: "5e66b6381e05b4008c8331b8"})
	assert.Nil(t, resp)

	recorded, err := failures.ListFailures(context.Background(), store.FailureFilter{})
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, store.ReasonDecode, recorded[0].Reason)
	assert.Equal(t, http.StatusOK, recorded[0].StatusCode)
	assert.NotEmpty(t, recorded[0].Error)
}

func TestDecodeFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"not json", "<html>oops</html>"},
		{"missing identifier", `{"total_entries":1,"people":[{"first_name":"Tim"}]}`},
		{"wrong type", `{"total_entries":"many","people":[]}`},
		{"missing count", `{"people":[{"id":"p1","first_name":"Tim"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, failures := setupClient(t, http.StatusOK, tt.body)
			assert.Nil(t, c.PeopleSearch(context.Background(), &apollo.PeopleSearchQuery{}))

			recorded, err := failures.ListFailures(context.Background(), store.FailureFilter{})
			require.NoError(t, err)
			require.Len(t, recorded, 1)
			assert.Equal(t, store.ReasonDecode, recorded[0].Reason)
		})
	}
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		status int
		reason store.FailureReason
	}{
		{http.StatusUnauthorized, store.ReasonUnauthorized},
		{http.StatusForbidden, store.ReasonUnauthorized},
		{http.StatusNotFound, store.ReasonNotFound},
		{http.StatusTooManyRequests, store.ReasonRateLimited},
		{http.StatusBadRequest, store.ReasonClientError},
		{http.StatusInternalServerError, store.ReasonServerError},
		{http.StatusBadGateway, store.ReasonServerError},
		{http.StatusCreated, store.ReasonServerError},
		{http.StatusNoContent, store.ReasonServerError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c, _, failures := setupClient(t, tt.status, `{"organizations":[]}`)
			assert.Nil(t, c.OrganizationSearch(context.Background(), &apollo.OrganizationSearchQuery{}))

			recorded, err := failures.ListFailures(context.Background(), store.FailureFilter{})
			require.NoError(t, err)
			require.Len(t, recorded, 1)
			assert.Equal(t, tt.reason, recorded[0].Reason)
			assert.Equal(t, tt.status, recorded[0].StatusCode)
		})
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	failures := store.NewMemoryStore()
	c, err := New(Config{APIKey: "k", BaseURL: baseURL, Failures: failures})
	require.NoError(t, err)

	assert.Nil(t, c.PeopleEnrichment(context.Background(), &apollo.PeopleEnrichmentQuery{Email: apollo.Ptr("tim@apollo.io")}))

	recorded, err := failures.ListFailures(context.Background(), store.FailureFilter{})
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, store.ReasonTransport, recorded[0].Reason)
	assert.Zero(t, recorded[0].StatusCode)
	assert.NotEmpty(t, recorded[0].Error)
}

func TestCanceledContextIsAbsent(t *testing.T) {
	c, _, failures := setupClient(t, http.StatusOK, `{"total_entries":0,"people":[]}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Nil(t, c.PeopleSearch(ctx, &apollo.PeopleSearchQuery{}))
	assert.Equal(t, 1, failures.Len(), "failure recorded even though the caller's context is canceled")
}

func TestPeopleEnrichmentRequest(t *testing.T) {
	c, up, _ := setupClient(t, http.StatusOK, `{"person":{"id":"p1","first_name":"Tim","organization":{"id":"o1","name":"Apollo"}}}`)

	q := &apollo.PeopleEnrichmentQuery{FirstName: apollo.Ptr("Tim"), LastName: apollo.Ptr("Zheng"), Domain: apollo.Ptr("apollo.io")}
	resp := c.PeopleEnrichment(context.Background(), q)
	require.NotNil(t, resp)
	require.NotNil(t, resp.Person)
	assert.Equal(t, "p1", resp.Person.ID)

	req := up.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/v1/people/match", req.Path)
	assert.JSONEq(t, `{"first_name":"Tim","last_name":"Zheng","domain":"apollo.io"}`, string(req.Body))
}

func TestOrganizationSearchRequest(t *testing.T) {
	c, up, _ := setupClient(t, http.StatusOK, `{"pagination":{"page":1,"per_page":10,"total_entries":2,"total_pages":1},
		"organizations":[{"id":"o2","name":"B"},{"id":"o1","name":"A"}]}`)

	q := &apollo.OrganizationSearchQuery{
		OrganizationLocations: []string{"ireland"},
		RevenueRange:          &apollo.RevenueRange{Min: apollo.Ptr[int64](300000)},
	}
	resp := c.OrganizationSearch(context.Background(), q)
	require.NotNil(t, resp)
	require.Len(t, resp.Organizations, 2)
	assert.Equal(t, "o2", resp.Organizations[0].ID)
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, apollo.Ptr(2), resp.Pagination.TotalEntries)

	var sent map[string]any
	req := up.last(t)
	require.NoError(t, json.Unmarshal(req.Body, &sent))
	assert.Equal(t, "/api/v1/mixed_companies/search", req.Path)
	assert.Equal(t, map[string]any{"min": float64(300000)}, sent["revenue_range"])
}

func TestRepeatedCallsAreIndependent(t *testing.T) {
	c, up, _ := setupClient(t, http.StatusOK, `{"organization":{"id":"o1"}}`)
	q := &apollo.OrganizationEnrichmentQuery{Domain: "apollo.io"}

	first := c.OrganizationEnrichment(context.Background(), q)
	second := c.OrganizationEnrichment(context.Background(), q)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)

	up.mu.Lock()
	defer up.mu.Unlock()
	require.Len(t, up.requests, 2)
	assert.Equal(t, up.requests[0].Query, up.requests[1].Query)
}

func TestNilQueryIsEmptyObject(t *testing.T) {
	c, up, _ := setupClient(t, http.StatusOK, `{"total_entries":0}`)

	resp := c.PeopleSearch(context.Background(), nil)
	require.NotNil(t, resp)
	assert.Empty(t, resp.People)
	assert.JSONEq(t, `{}`, string(up.last(t).Body))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 2))

	// "é" is two bytes; cutting at 2 would split it.
	got := truncate("aébc", 2)
	assert.Equal(t, "a…", got)
	assert.True(t, utf8.ValidString(got))
}
