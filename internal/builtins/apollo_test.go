// ABOUTME: Tests for the Apollo pack wired through the router to a fake upstream.
// ABOUTME: Covers the three outcomes (payload, absence, errors) and argument shapes.

package builtins

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/2389/apollo-gateway/internal/apollo"
	"github.com/2389/apollo-gateway/internal/client"
	"github.com/2389/apollo-gateway/internal/packs"
	"github.com/2389/apollo-gateway/internal/store"
)

type upstreamCall struct {
	method string
	path   string
	query  string
	body   string
}

type testUpstream struct {
	mu     sync.Mutex
	calls  []upstreamCall
	status int
	body   string
}

func (u *testUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	u.mu.Lock()
	u.calls = append(u.calls, upstreamCall{r.Method, r.URL.Path, r.URL.RawQuery, string(b)})
	status, body := u.status, u.body
	u.mu.Unlock()
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (u *testUpstream) callCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.calls)
}

// newTestRouter wires a real client to a fake upstream behind a frozen registry.
func newTestRouter(t *testing.T, status int, body string) (*packs.Router, *testUpstream, *store.MemoryStore) {
	t.Helper()
	up := &testUpstream{status: status, body: body}
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	failures := store.NewMemoryStore()
	c, err := client.New(client.Config{APIKey: "test-key", BaseURL: srv.URL, Failures: failures})
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}

	registry := packs.NewRegistry(slog.Default())
	if err := registry.RegisterBuiltinPack(ApolloPack(c)); err != nil {
		t.Fatalf("register pack: %v", err)
	}
	registry.Freeze()
	return packs.NewRouter(packs.RouterConfig{Registry: registry}), up, failures
}

func TestApolloPackTools(t *testing.T) {
	pack := ApolloPack(nil)
	want := map[string]string{
		"people_enrichment":         CapEnrichment,
		"organization_enrichment":   CapEnrichment,
		"people_search":             CapSearch,
		"organization_search":       CapSearch,
		"organization_job_postings": CapSearch,
	}
	if len(pack.Tools) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(pack.Tools))
	}
	for _, tool := range pack.Tools {
		cap, ok := want[tool.Definition.Name]
		if !ok {
			t.Errorf("unexpected tool %s", tool.Definition.Name)
			continue
		}
		if len(tool.Definition.RequiredCapabilities) != 1 || tool.Definition.RequiredCapabilities[0] != cap {
			t.Errorf("%s: capabilities %v, want [%s]", tool.Definition.Name, tool.Definition.RequiredCapabilities, cap)
		}
		if tool.Definition.Description == "" {
			t.Errorf("%s: missing description", tool.Definition.Name)
		}
		if _, err := tool.Definition.InputSchema.Resolve(nil); err != nil {
			t.Errorf("%s: schema does not resolve: %v", tool.Definition.Name, err)
		}
	}
}

func TestPeopleSearchScenario(t *testing.T) {
	router, up, _ := newTestRouter(t, http.StatusOK,
		`{"total_entries":2,"people":[{"id":"p2","first_name":"Zoe","has_email":true},{"id":"p1","first_name":"Al"}]}`)

	args := `{"query":{"person_titles":["Marketing Manager"],"person_seniorities":["vp"],"q_organization_domains_list":["apollo.io"]}}`
	result, err := router.Invoke(context.Background(), "people_search", json.RawMessage(args))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Absent {
		t.Fatal("expected a payload")
	}

	if up.callCount() != 1 {
		t.Fatalf("expected 1 upstream call, got %d", up.callCount())
	}
	call := up.calls[0]
	if call.method != http.MethodPost || call.path != "/mixed_people/api_search" {
		t.Errorf("unexpected request %s %s", call.method, call.path)
	}
	var sent map[string]any
	if err := json.Unmarshal([]byte(call.body), &sent); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if len(sent) != 3 {
		t.Errorf("expected exactly 3 fields on the wire, got %v", sent)
	}

	people, ok := result.Payload["people"].([]any)
	if !ok || len(people) != 2 {
		t.Fatalf("people = %#v", result.Payload["people"])
	}
	first := people[0].(map[string]any)
	if first["id"] != "p2" || first["has_email"] != true {
		t.Errorf("first person = %#v", first)
	}
	if _, present := first["title"]; present {
		t.Error("absent fields must not appear in the payload")
	}
	if result.Payload["total_entries"] != json.Number("2") {
		t.Errorf("total_entries = %#v", result.Payload["total_entries"])
	}
}

func TestOrganizationEnrichmentNon200IsAbsent(t *testing.T) {
	router, up, failures := newTestRouter(t, http.StatusInternalServerError, `{"error":"upstream down"}`)

	result, err := router.Invoke(context.Background(), "organization_enrichment", json.RawMessage(`{"query":{"domain":"apollo.io"}}`))
	if err != nil {
		t.Fatalf("absence must not be an error: %v", err)
	}
	if !result.Absent || result.Payload != nil {
		t.Errorf("expected absent result, got %+v", result)
	}
	if up.calls[0].method != http.MethodGet || up.calls[0].query != "domain=apollo.io" {
		t.Errorf("unexpected request %+v", up.calls[0])
	}
	if failures.Len() != 1 {
		t.Errorf("expected one recorded failure, got %d", failures.Len())
	}
}

func TestJobPostingsMalformedBodyIsAbsent(t *testing.T) {
	router, up, failures := newTestRouter(t, http.StatusOK, `{"organization_job_postings": [{"id": `)

	result, err := router.Invoke(context.Background(), "organization_job_postings",
		json.RawMessage(`{"organization_id":"5e66b6381e05b4008c8331b8"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Absent {
		t.Error("expected absent result")
	}
	if up.calls[0].path != "/organizations/5e66b6381e05b4008c8331b8/job_postings" || up.calls[0].body != "" {
		t.Errorf("unexpected request %+v", up.calls[0])
	}

	recorded, _ := failures.ListFailures(context.Background(), store.FailureFilter{})
	if len(recorded) != 1 || recorded[0].Reason != store.ReasonDecode {
		t.Errorf("expected one decode failure, got %+v", recorded)
	}
}

func TestSearchWithoutCountIsAbsent(t *testing.T) {
	tests := []struct {
		name string
		tool string
		body string
	}{
		{"people without total_entries", "people_search", `{"people":[{"id":"abc","first_name":"Tim"}]}`},
		{"organizations without pagination", "organization_search", `{"organizations":[]}`},
		{"pagination without total_entries", "organization_search", `{"pagination":{"page":1},"organizations":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _, failures := newTestRouter(t, http.StatusOK, tt.body)
			result, err := router.Invoke(context.Background(), tt.tool, json.RawMessage(`{"query":{}}`))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !result.Absent || result.Payload != nil {
				t.Errorf("a missing count must not be reported as zero, got %+v", result)
			}
			recorded, _ := failures.ListFailures(context.Background(), store.FailureFilter{})
			if len(recorded) != 1 || recorded[0].Reason != store.ReasonDecode {
				t.Errorf("expected one decode failure, got %+v", recorded)
			}
		})
	}
}

func TestUnknownOperationIsDispatchError(t *testing.T) {
	router, up, _ := newTestRouter(t, http.StatusOK, `{}`)

	result, err := router.Invoke(context.Background(), "people_delete", json.RawMessage(`{"query":{}}`))
	if !errors.Is(err, packs.ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound, got %v", err)
	}
	if errors.Is(err, apollo.ErrInvalidQuery) {
		t.Error("dispatch error must be distinct from validation error")
	}
	if result != nil {
		t.Error("expected no result")
	}
	if up.callCount() != 0 {
		t.Error("no upstream call expected")
	}
}

func TestValidationFailsBeforeNetwork(t *testing.T) {
	tests := []struct {
		name string
		tool string
		args string
	}{
		{"unknown seniority", "people_search", `{"query":{"person_seniorities":["emperor"]}}`},
		{"upper-case seniority", "people_search", `{"query":{"person_seniorities":["VP"]}}`},
		{"unknown query field", "people_search", `{"query":{"person_title":["cto"]}}`},
		{"unknown top-level field", "people_search", `{"query":{},"extra":1}`},
		{"missing query", "organization_search", `{}`},
		{"inverted range", "organization_search", `{"query":{"organization_num_employees_ranges":["100,10"]}}`},
		{"bad domain", "organization_enrichment", `{"query":{"domain":"apollo"}}`},
		{"no identifier", "people_enrichment", `{"query":{"organization_name":"Apollo"}}`},
		{"phone without webhook", "people_enrichment", `{"query":{"id":"p1","reveal_phone_number":true}}`},
		{"path traversal id", "organization_job_postings", `{"organization_id":"../people"}`},
		{"empty id", "organization_job_postings", `{"organization_id":"  "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, up, _ := newTestRouter(t, http.StatusOK, `{}`)
			_, err := router.Invoke(context.Background(), tt.tool, json.RawMessage(tt.args))
			if !errors.Is(err, apollo.ErrInvalidQuery) {
				t.Fatalf("expected ErrInvalidQuery, got %v", err)
			}
			if up.callCount() != 0 {
				t.Error("validation failure must not reach the network")
			}
		})
	}
}

func TestOrganizationSearchPayload(t *testing.T) {
	router, up, _ := newTestRouter(t, http.StatusOK, `{
		"pagination":{"page":1,"per_page":2,"total_entries":40,"total_pages":20},
		"organizations":[{"id":"o1","name":"Apollo","annual_revenue":100000000},{"id":"o2"}]}`)

	args := `{"query":{"organization_locations":["ireland"],"revenue_range":{"min":300000},"per_page":2}}`
	result, err := router.Invoke(context.Background(), "organization_search", json.RawMessage(args))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sent map[string]any
	_ = json.Unmarshal([]byte(up.calls[0].body), &sent)
	if rr, ok := sent["revenue_range"].(map[string]any); !ok || rr["min"] != float64(300000) {
		t.Errorf("revenue_range on the wire = %#v", sent["revenue_range"])
	}

	pagination := result.Payload["pagination"].(map[string]any)
	if pagination["total_pages"] != json.Number("20") {
		t.Errorf("pagination = %#v", pagination)
	}
	orgs := result.Payload["organizations"].([]any)
	if orgs[0].(map[string]any)["annual_revenue"] != json.Number("100000000") {
		t.Errorf("annual_revenue = %#v", orgs[0])
	}
	if _, present := result.Payload["accounts"]; present {
		t.Error("absent accounts must be omitted")
	}
}

func TestPayloadRoundTripsIntoResponse(t *testing.T) {
	router, _, _ := newTestRouter(t, http.StatusOK,
		`{"person":{"id":"p1","first_name":"Tim","employment_history":[{"organization_name":"Apollo","current":true}]}}`)

	result, err := router.Invoke(context.Background(), "people_enrichment",
		json.RawMessage(`{"query":{"first_name":"Tim","last_name":"Zheng","domain":"apollo.io"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := json.Marshal(result.Payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	var back apollo.PeopleEnrichmentResponse
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("payload does not decode as a response: %v", err)
	}
	if back.Person == nil || back.Person.ID != "p1" || len(back.Person.EmploymentHistory) != 1 {
		t.Errorf("round trip lost data: %+v", back.Person)
	}
}

func TestPayloadKeepsEmptyLists(t *testing.T) {
	router, _, _ := newTestRouter(t, http.StatusOK,
		`{"person":{"id":"p1","departments":[],"employment_history":[],"organization":{"id":"o1","industries":[]}}}`)

	result, err := router.Invoke(context.Background(), "people_enrichment",
		json.RawMessage(`{"query":{"id":"p1"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	person, ok := result.Payload["person"].(map[string]any)
	if !ok {
		t.Fatalf("person = %#v", result.Payload["person"])
	}
	for _, key := range []string{"departments", "employment_history"} {
		list, present := person[key].([]any)
		if !present || len(list) != 0 {
			t.Errorf("%s: present empty list must survive, got %#v", key, person[key])
		}
	}
	org := person["organization"].(map[string]any)
	if list, present := org["industries"].([]any); !present || len(list) != 0 {
		t.Errorf("industries: present empty list must survive, got %#v", org["industries"])
	}
	for _, key := range []string{"subdepartments", "functions", "first_name"} {
		if _, present := person[key]; present {
			t.Errorf("%s: absent field must be omitted", key)
		}
	}
}
