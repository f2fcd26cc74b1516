package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/patchplan/pkg/errors"
	"github.com/matzehuels/patchplan/pkg/observability"
	"github.com/matzehuels/patchplan/pkg/observability/prom"
	"github.com/matzehuels/patchplan/pkg/pipeline"
)

func newTestServer(t *testing.T, metrics http.Handler) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	srv := httptest.NewServer(New(Config{
		Runner:  pipeline.NewRunner(nil, nil, nil, logger),
		Logger:  logger,
		Metrics: metrics,
	}))
	t.Cleanup(srv.Close)
	return srv
}

const planBody = `{
  "scenario": {
    "selection": {"min_x": 0, "min_y": 0, "max_x": 10, "max_y": 10},
    "settings": {
      "unit": "electric-mining-drill",
      "transporter": "transport-belt",
      "relay": "medium-electric-pole"
    },
    "deposits": [{"type": "iron-ore", "area": {"min_x": 0, "min_y": 0, "max_x": 10, "max_y": 10}}],
    "obstacles": [{"name": "tree", "class": "vegetation", "area": {"min_x": 2, "min_y": 1, "max_x": 3, "max_y": 2}}]
  },
  "formats": ["text"]
}`

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) ErrorBody {
	t.Helper()
	var body map[string]ErrorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" || body.Build.Version == "" {
		t.Errorf("health = %+v", body)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("response should carry a request id")
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	srv := newTestServer(t, nil)
	const id = "2f1c7a4e-8d1b-4b7e-9a55-0d8f1b2c3d4e"

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}

	req.Header.Set(RequestIDHeader, "not-a-uuid")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got == "not-a-uuid" || got == "" {
		t.Errorf("invalid client id should be replaced, got %q", got)
	}
}

func TestCatalog(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/v1/catalog")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body struct {
		Units []struct {
			Name string `json:"name"`
		} `json:"units"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Units) == 0 {
		t.Error("catalog should list units")
	}
}

func TestPlan(t *testing.T) {
	srv := newTestServer(t, nil)
	resp := post(t, srv.URL+"/v1/plan", planBody)
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}

	var body struct {
		RunID  string `json:"run_id"`
		Stages []struct {
			Stage  string `json:"stage"`
			Placed int    `json:"placed"`
		} `json:"stages"`
		Removed []struct {
			Name string `json:"name"`
		} `json:"removed"`
		Artifacts map[string]string `json:"artifacts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.RunID == "" {
		t.Error("missing run id")
	}
	if len(body.Stages) != 4 || body.Stages[0].Stage != pipeline.StageUnits || body.Stages[0].Placed != 6 {
		t.Errorf("stages = %+v", body.Stages)
	}
	if len(body.Removed) != 1 || body.Removed[0].Name != "tree" {
		t.Errorf("removed = %+v, want the tree", body.Removed)
	}
	if !strings.Contains(body.Artifacts["text"], "U") {
		t.Errorf("text artifact = %q", body.Artifacts["text"])
	}
}

func TestPlanEmptySelection(t *testing.T) {
	srv := newTestServer(t, nil)
	resp := post(t, srv.URL+"/v1/plan", `{"scenario": {}}`)
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}

	var body struct {
		Stages []struct {
			Placed  int `json:"placed"`
			Skipped int `json:"skipped"`
		} `json:"stages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Stages) != 4 {
		t.Fatalf("got %d stages, want 4", len(body.Stages))
	}
	for i, s := range body.Stages {
		if s.Placed != 0 || s.Skipped != 0 {
			t.Errorf("stage %d placed/skipped = %d/%d, want 0/0", i, s.Placed, s.Skipped)
		}
	}
}

func TestPlanErrors(t *testing.T) {
	srv := newTestServer(t, nil)
	tests := []struct {
		name   string
		body   string
		status int
		code   errors.Code
	}{
		{"malformed", `{"scenario":`, 400, errors.ErrCodeInvalidInput},
		{"unknown field", `{"scenaria": {}}`, 400, errors.ErrCodeInvalidInput},
		{"bad format", `{"scenario": {}, "formats": ["png"]}`, 400, errors.ErrCodeInvalidInput},
		{"huge selection", `{"scenario": {"selection": {"max_x": 1000, "max_y": 1000}}}`, 400, errors.ErrCodeInvalidSelection},
		{"unknown unit", `{"scenario": {"selection": {"max_x": 4, "max_y": 4}, "settings": {"unit": "laser-drill"}}}`, 400, errors.ErrCodeUnknownPrototype},
		{"bad obstacle", `{"scenario": {"obstacles": [{"class": "unicorn", "area": {"max_x": 1, "max_y": 1}}]}}`, 400, errors.ErrCodeInvalidScenario},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+"/v1/plan", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if got := decodeError(t, resp); got.Code != tt.code {
				t.Errorf("code = %s (%s), want %s", got.Code, got.Message, tt.code)
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/v2/nothing")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if got := decodeError(t, resp); got.Code != errors.ErrCodeNotFound {
		t.Errorf("code = %s", got.Code)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := prom.New(reg)
	m.Install()
	defer observability.Reset()

	srv := newTestServer(t, prom.Handler(reg))
	post(t, srv.URL+"/v1/plan", planBody)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`patchplan_http_requests_total{method="POST",route="/v1/plan",status="200"} 1`,
		`patchplan_runs_total{result="ok"} 1`,
		`patchplan_stage_placed_total{stage="units"} 6`,
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("metrics missing %q", want)
		}
	}

	// Without a handler the route does not exist.
	plain := newTestServer(t, nil)
	resp2, err := http.Get(plain.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("metrics without handler: status = %d, want 404", resp2.StatusCode)
	}
}
