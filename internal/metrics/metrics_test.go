package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/shopflow/internal/model"
)

func TestRecorderCountsOutcomes(t *testing.T) {
	t.Parallel()

	recorder := NewRecorder()
	recorder.StepStarted(0, 3, "Order create")
	recorder.StepFinished(0, 3, model.StepResult{Name: "Order create", Status: model.StatusFailed, Duration: time.Second})
	recorder.StepFinished(1, 3, model.StepResult{Name: "Order get", Status: model.StatusSkipped})
	recorder.StepFinished(2, 3, model.StepResult{Name: "Order list", Status: model.StatusOK, Duration: 20 * time.Millisecond})

	require.Equal(t, 1.0, testutil.ToFloat64(recorder.steps.WithLabelValues("Order create", "fail")))
	require.Equal(t, 1.0, testutil.ToFloat64(recorder.steps.WithLabelValues("Order get", "skip")))
	require.Equal(t, 1.0, testutil.ToFloat64(recorder.steps.WithLabelValues("Order list", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(recorder.failed))
	require.Equal(t, 3, testutil.CollectAndCount(recorder.duration))
}

func TestRecorderCountsDeclines(t *testing.T) {
	t.Parallel()

	recorder := NewRecorder()
	recorder.Decline("order_create", 1)
	recorder.Decline("order_create", 2)
	recorder.Decline("payment_capture", 1)

	expected := `
# HELP shopflow_business_declines_total HTTP 402 business declines seen by retried operations.
# TYPE shopflow_business_declines_total counter
shopflow_business_declines_total{operation="order_create"} 2
shopflow_business_declines_total{operation="payment_capture"} 1
`
	require.NoError(t, testutil.CollectAndCompare(recorder.declines, strings.NewReader(expected), MetricDeclinesTotal))
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	recorder := NewRecorder()
	recorder.StepFinished(0, 1, model.StepResult{Name: "Auth public key", Status: model.StatusOK})

	path := filepath.Join(t.TempDir(), "shopflow.prom")
	require.NoError(t, recorder.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `shopflow_steps_total{status="ok",step="Auth public key"} 1`)
	require.Contains(t, string(data), "shopflow_failed_steps 0")
}

func TestWriteTextfileBadPath(t *testing.T) {
	t.Parallel()

	recorder := NewRecorder()
	err := recorder.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "out.prom"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "writing metrics textfile")
}
