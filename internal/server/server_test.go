package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pagegrade/pagegrade/internal/audit"
	"github.com/pagegrade/pagegrade/internal/diffing"
	"github.com/pagegrade/pagegrade/internal/fetcher"
	"github.com/pagegrade/pagegrade/internal/logging"
	"github.com/pagegrade/pagegrade/internal/model"
	"github.com/pagegrade/pagegrade/internal/report"
	"github.com/pagegrade/pagegrade/internal/scoring"
	"github.com/pagegrade/pagegrade/internal/server"
	"github.com/pagegrade/pagegrade/internal/store"
)

const apiTestPage = `<html lang="en"><head>
<title>A plain page used by the API tests</title>
<meta name="viewport" content="width=device-width">
</head><body><h1>API test page</h1><p>Some body text.</p></body></html>`

type testStack struct {
	api     *httptest.Server
	site    *httptest.Server
	store   store.Store
	service *audit.Service
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(apiTestPage))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(site.Close)

	st, err := store.NewSQLiteStore(t.TempDir(), logging.Nop{})
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	cfg := fetcher.DefaultConfig()
	cfg.PageTimeout = 5 * time.Second
	cfg.PathProbeTimeout = 2 * time.Second
	f := fetcher.New(cfg, logging.Nop{}, site.Client())

	engine := scoring.NewEngine(scoring.DefaultParams(), nil)
	pipeline := audit.NewPipeline(engine, logging.Nop{})
	hub := server.NewHub(logging.Nop{})
	t.Cleanup(hub.Close)
	svc := audit.NewService(f, pipeline, st, hub, logging.Nop{})

	srv := server.NewServer(server.Config{ListenAddr: ":0"}, svc, st, hub, logging.Nop{})
	api := httptest.NewServer(srv)
	t.Cleanup(api.Close)

	return &testStack{api: api, site: site, store: st, service: svc}
}

func (ts *testStack) createAudit(t *testing.T, wait bool) *model.AuditResult {
	t.Helper()
	body, _ := json.Marshal(server.CreateAuditRequest{
		URL:         ts.site.URL + "/",
		WebsiteType: "website",
		Wait:        wait,
	})
	resp, err := http.Post(ts.api.URL+"/api/audits", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/audits: %v", err)
	}
	defer resp.Body.Close()

	want := http.StatusOK
	if !wait {
		want = http.StatusAccepted
	}
	if resp.StatusCode != want {
		t.Fatalf("status = %d, want %d", resp.StatusCode, want)
	}

	var result model.AuditResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode audit: %v", err)
	}
	return &result
}

func TestAPI_CreateAuditSync(t *testing.T) {
	stack := newTestStack(t)

	res := stack.createAudit(t, true)
	if res.Status != audit.StatusCompleted {
		t.Errorf("status = %q, want completed", res.Status)
	}
	if res.Breakdown == nil {
		t.Error("synchronous audit should return a breakdown")
	}
	if res.FinalScore < 5 || res.FinalScore > 90 {
		t.Errorf("score %d out of bounds", res.FinalScore)
	}
}

func TestAPI_CreateAuditAsync(t *testing.T) {
	stack := newTestStack(t)

	res := stack.createAudit(t, false)
	if res.Status != audit.StatusRunning {
		t.Errorf("async audit should return the running record, got %q", res.Status)
	}

	stack.service.Wait()

	resp, err := http.Get(stack.api.URL + "/api/audits/" + res.ID)
	if err != nil {
		t.Fatalf("GET audit: %v", err)
	}
	defer resp.Body.Close()

	var final model.AuditResult
	if err := json.NewDecoder(resp.Body).Decode(&final); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if final.Status != audit.StatusCompleted {
		t.Errorf("status after completion = %q", final.Status)
	}
}

func TestAPI_CreateAuditInvalidURL(t *testing.T) {
	stack := newTestStack(t)

	body := []byte(`{"url": "not a url", "website_type": "website", "wait": true}`)
	resp, err := http.Post(stack.api.URL+"/api/audits", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	var errResp server.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errResp.Error == "" {
		t.Error("error payload should carry a message")
	}
}

func TestAPI_CreateAuditMalformedJSON(t *testing.T) {
	stack := newTestStack(t)

	resp, err := http.Post(stack.api.URL+"/api/audits", "application/json",
		bytes.NewReader([]byte(`{nope`)))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAPI_ListAudits(t *testing.T) {
	stack := newTestStack(t)
	first := stack.createAudit(t, true)
	second := stack.createAudit(t, true)

	resp, err := http.Get(stack.api.URL + "/api/audits?limit=1")
	if err != nil {
		t.Fatalf("GET list: %v", err)
	}
	defer resp.Body.Close()

	var list server.ListAuditsResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Total != 2 {
		t.Errorf("total = %d, want 2", list.Total)
	}
	if len(list.Audits) != 1 {
		t.Fatalf("limit=1 should return one audit, got %d", len(list.Audits))
	}
	if list.Audits[0].ID != first.ID && list.Audits[0].ID != second.ID {
		t.Errorf("listed audit %q is neither created audit", list.Audits[0].ID)
	}
}

func TestAPI_GetAuditNotFound(t *testing.T) {
	stack := newTestStack(t)

	resp, err := http.Get(stack.api.URL + "/api/audits/does-not-exist")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestAPI_DeleteAudit(t *testing.T) {
	stack := newTestStack(t)
	res := stack.createAudit(t, true)

	req, _ := http.NewRequest(http.MethodDelete, stack.api.URL+"/api/audits/"+res.ID, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}

	check, err := http.Get(stack.api.URL + "/api/audits/" + res.ID)
	if err != nil {
		t.Fatalf("GET after delete: %v", err)
	}
	check.Body.Close()
	if check.StatusCode != http.StatusNotFound {
		t.Errorf("deleted audit should 404, got %d", check.StatusCode)
	}
}

func TestAPI_DeleteAllAudits(t *testing.T) {
	stack := newTestStack(t)
	stack.createAudit(t, true)
	stack.createAudit(t, true)

	req, _ := http.NewRequest(http.MethodDelete, stack.api.URL+"/api/audits", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE all: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}

	var health server.HealthResponse
	hresp, err := http.Get(stack.api.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	defer hresp.Body.Close()
	if err := json.NewDecoder(hresp.Body).Decode(&health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Audits != 0 {
		t.Errorf("audit count after delete-all = %d, want 0", health.Audits)
	}
}

func TestAPI_GetReport(t *testing.T) {
	stack := newTestStack(t)
	res := stack.createAudit(t, true)

	resp, err := http.Get(fmt.Sprintf("%s/api/audits/%s/report", stack.api.URL, res.ID))
	if err != nil {
		t.Fatalf("GET report: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var rep report.Report
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if rep.AuditID != res.ID {
		t.Errorf("report audit id = %q, want %q", rep.AuditID, res.ID)
	}
	if rep.ExecutiveSummary == "" || rep.Timeline == "" {
		t.Errorf("report narrative missing: %+v", rep)
	}
	if len(rep.PriorityActions) == 0 {
		t.Error("report should list priority actions")
	}
}

func TestAPI_CompareAudits(t *testing.T) {
	stack := newTestStack(t)
	base := stack.createAudit(t, true)
	head := stack.createAudit(t, true)

	resp, err := http.Get(fmt.Sprintf("%s/api/audits/%s/compare/%s",
		stack.api.URL, base.ID, head.ID))
	if err != nil {
		t.Fatalf("GET compare: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var cmp diffing.Comparison
	if err := json.NewDecoder(resp.Body).Decode(&cmp); err != nil {
		t.Fatalf("decode comparison: %v", err)
	}
	if cmp.BaseID != base.ID || cmp.HeadID != head.ID {
		t.Errorf("comparison ids = %q/%q", cmp.BaseID, cmp.HeadID)
	}
	// Same page audited twice: no score movement, no issue churn.
	if cmp.ScoreDelta != 0 {
		t.Errorf("score delta = %d, want 0", cmp.ScoreDelta)
	}
	if len(cmp.NewIssues) != 0 || len(cmp.ResolvedIssues) != 0 {
		t.Errorf("issue churn on identical audits: %+v", cmp)
	}
}

func TestAPI_CompareMissingAudit(t *testing.T) {
	stack := newTestStack(t)
	base := stack.createAudit(t, true)

	resp, err := http.Get(fmt.Sprintf("%s/api/audits/%s/compare/missing", stack.api.URL, base.ID))
	if err != nil {
		t.Fatalf("GET compare: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestAPI_Health(t *testing.T) {
	stack := newTestStack(t)

	resp, err := http.Get(stack.api.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var health server.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("status = %q, want ok", health.Status)
	}
}

func TestAPI_CORSHeaders(t *testing.T) {
	stack := newTestStack(t)

	req, _ := http.NewRequest(http.MethodOptions, stack.api.URL+"/api/audits", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin = %q, want *", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); got == "" {
		t.Error("preflight should advertise allowed methods")
	}
}
