package progress

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"

	"github.com/hotwords123/judge-v3/types"
)

// testServer is shared across this file's tests: ginprometheus registers
// its collectors on construction, so building a fresh *Server per test
// would panic on the second registration within one test binary.
var (
	testServerOnce sync.Once
	testServer     *Server
)

func sharedTestServer() *Server {
	testServerOnce.Do(func() {
		testServer = NewServer(":0", true, zap.NewNop())
	})
	return testServer
}

func testCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestHandleSnapshotNotFound(t *testing.T) {
	s := sharedTestServer()

	req := httptest.NewRequest(http.MethodGet, "/progress/missing-"+t.Name(), nil)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestHandleSnapshotReturnsPublishedResult(t *testing.T) {
	s := sharedTestServer()
	s.Publish("sub-snapshot", &types.JudgeResult{Subtasks: []types.SubtaskResult{{Score: 0.75}}}, false, 0, false)

	req := httptest.NewRequest(http.MethodGet, "/progress/sub-snapshot", nil)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var result types.JudgeResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if result.Subtasks[0].Score != 0.75 {
		t.Fatalf("Score = %v, want 0.75", result.Subtasks[0].Score)
	}
}

func TestPublishDoneIncrementsThroughputMetric(t *testing.T) {
	s := sharedTestServer()
	before := testCounterValue(t, s.metrics.submissionsJudged)
	beforeDiag := testCounterValue(t, s.metrics.diagnosticsTriggers)

	s.Publish("sub-metrics", &types.JudgeResult{}, true, 0, true)

	if after := testCounterValue(t, s.metrics.submissionsJudged); after != before+1 {
		t.Fatalf("submissionsJudged = %v, want %v", after, before+1)
	}
	if after := testCounterValue(t, s.metrics.diagnosticsTriggers); after != beforeDiag+1 {
		t.Fatalf("diagnosticsTriggers = %v, want %v", after, beforeDiag+1)
	}
}

func TestPublishNotDoneLeavesMetricsUnchanged(t *testing.T) {
	s := sharedTestServer()
	before := testCounterValue(t, s.metrics.submissionsJudged)

	s.Publish("sub-partial", &types.JudgeResult{}, false, 0, false)

	if after := testCounterValue(t, s.metrics.submissionsJudged); after != before {
		t.Fatalf("submissionsJudged = %v, want unchanged %v", after, before)
	}
}
