package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/oukeidos/tamilfix/internal/apperrors"
	"github.com/oukeidos/tamilfix/internal/correction"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ObserveRequest(correction.OpSpellCheck, correction.OutcomeDictionary, 2*time.Millisecond)
	r.ObserveRequest(correction.OpSpellCheck, correction.OutcomeDictionary, time.Millisecond)
	r.ObserveRequest(correction.OpLiveGrammar, correction.OutcomeError, time.Second)
	r.ObserveUpstreamError(correction.OpLiveGrammar, apperrors.KindTimeout)
	r.ObserveUpstreamError(correction.OpLiveGrammar, "")
	r.ObserveInput(correction.OpSpellCheck, 5)

	if got := testutil.ToFloat64(r.requests.WithLabelValues("spell_check", "fallback_dictionary")); got != 2 {
		t.Errorf("dictionary requests = %v", got)
	}
	if got := testutil.ToFloat64(r.upstreamErrors.WithLabelValues("live_grammar", "timeout")); got != 1 {
		t.Errorf("timeout errors = %v", got)
	}
	if got := testutil.ToFloat64(r.upstreamErrors.WithLabelValues("live_grammar", "unknown")); got != 1 {
		t.Errorf("unknown errors = %v", got)
	}

	expected := `
# HELP tamilfix_corrections_total Correction requests by operation and outcome.
# TYPE tamilfix_corrections_total counter
tamilfix_corrections_total{operation="live_grammar",outcome="error"} 1
tamilfix_corrections_total{operation="spell_check",outcome="fallback_dictionary"} 2
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "tamilfix_corrections_total"); err != nil {
		t.Fatal(err)
	}
	if n := testutil.CollectAndCount(r.inputSize); n != 1 {
		t.Errorf("input size series = %d", n)
	}
}

func TestNewRecorder_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewRecorder(reg)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	NewRecorder(reg)
}
