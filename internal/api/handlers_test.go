package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wavepick/internal/model"
	"wavepick/internal/wave"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(wave.NoSeed{})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	handler(rr, req)
	return rr
}

func tinyInstance() model.InstanceIn {
	return model.InstanceIn{
		Name:       "tiny",
		NItems:     1,
		Orders:     [][]model.ItemCount{{{Item: 0, Qty: 5}}},
		Aisles:     [][]model.ItemCount{{{Item: 0, Qty: 10}}},
		WaveSizeLB: 1,
		WaveSizeUB: 10,
	}
}

func TestHealthReady(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != 200 {
		t.Fatalf("health: got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	s.ReadyHandler(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != 200 {
		t.Fatalf("ready: got %d", rr.Code)
	}
}

func TestInstanceCreateGetList(t *testing.T) {
	s := newTestServer(t)

	rr := postJSON(t, s.InstancesHandler, "/v1/instances", tinyInstance())
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: got %d: %s", rr.Code, rr.Body.String())
	}
	var inst model.Instance
	if err := json.Unmarshal(rr.Body.Bytes(), &inst); err != nil || inst.ID == "" {
		t.Fatalf("create body: %v %s", err, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	s.InstanceByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/instances/"+inst.ID, nil))
	if rr.Code != 200 {
		t.Fatalf("get: got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	s.InstancesHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/instances?limit=5", nil))
	if rr.Code != 200 {
		t.Fatalf("list: got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	s.InstanceByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/instances/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get missing: got %d", rr.Code)
	}
}

func TestInstanceValidation(t *testing.T) {
	s := newTestServer(t)

	bad := tinyInstance()
	bad.Orders = [][]model.ItemCount{{{Item: 9, Qty: 1}}}
	if rr := postJSON(t, s.InstancesHandler, "/v1/instances", bad); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("out-of-range item: got %d", rr.Code)
	}

	bad = tinyInstance()
	bad.WaveSizeLB = 11
	if rr := postJSON(t, s.InstancesHandler, "/v1/instances", bad); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("inverted bounds: got %d", rr.Code)
	}
}

func TestSolveRunsJobToCompletion(t *testing.T) {
	s := newTestServer(t)

	rr := postJSON(t, s.InstancesHandler, "/v1/instances", tinyInstance())
	var inst model.Instance
	_ = json.Unmarshal(rr.Body.Bytes(), &inst)

	rr = postJSON(t, s.SolveHandler, "/v1/solve", model.SolveRequest{
		InstanceID:   inst.ID,
		TimeBudgetMs: 200,
		Seed:         1,
	})
	if rr.Code != http.StatusAccepted {
		t.Fatalf("solve: got %d: %s", rr.Code, rr.Body.String())
	}
	var job model.Job
	if err := json.Unmarshal(rr.Body.Bytes(), &job); err != nil || job.ID == "" {
		t.Fatalf("solve body: %v %s", err, rr.Body.String())
	}

	deadline := time.Now().Add(10 * time.Second)
	for {
		rr = httptest.NewRecorder()
		s.JobByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/jobs/"+job.ID, nil))
		if rr.Code != 200 {
			t.Fatalf("job get: got %d", rr.Code)
		}
		_ = json.Unmarshal(rr.Body.Bytes(), &job)
		if job.Status == model.JobDone {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job stuck in status %q", job.Status)
		}
		time.Sleep(50 * time.Millisecond)
	}

	if job.Wave == nil || !job.Wave.Feasible || job.Wave.Objective != 5.0 {
		t.Fatalf("result: %+v", job.Wave)
	}

	// solver stats were recorded for the job
	rr = httptest.NewRecorder()
	s.SolverStatsHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/admin/solver-stats?jobId="+job.ID, nil))
	if rr.Code != 200 {
		t.Fatalf("stats: got %d", rr.Code)
	}
	var stats struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &stats); err != nil || len(stats.Items) == 0 {
		t.Fatalf("stats body: %v %s", err, rr.Body.String())
	}
}

func TestSolveUnknownInstance(t *testing.T) {
	s := newTestServer(t)
	rr := postJSON(t, s.SolveHandler, "/v1/solve", model.SolveRequest{InstanceID: "nope"})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("solve unknown: got %d", rr.Code)
	}
}

func TestJobsList(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.JobsIndexHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/jobs?limit=5", nil))
	if rr.Code != 200 {
		t.Fatalf("jobs list: got %d", rr.Code)
	}
}

func TestRateLimitEventuallyRejects(t *testing.T) {
	s := newTestServer(t)
	limited := s.RateLimit(s.HealthHandler)
	got429 := false
	for i := 0; i < 200; i++ {
		rr := httptest.NewRecorder()
		limited(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rr.Code == http.StatusTooManyRequests {
			got429 = true
			break
		}
	}
	if !got429 {
		t.Fatal("rate limiter never rejected a burst of 200 requests")
	}
}
