package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserverCounts(t *testing.T) {
	before := testutil.ToFloat64(Observer.TreesTrained)
	TrainingDone(25, 30*time.Millisecond)
	assert.Equal(t, before+25, testutil.ToFloat64(Observer.TreesTrained))

	ok := testutil.ToFloat64(Observer.Classifications.WithLabelValues(OutcomeOK))
	Classified(OutcomeOK)
	Classified(OutcomeOK)
	assert.Equal(t, ok+2, testutil.ToFloat64(Observer.Classifications.WithLabelValues(OutcomeOK)))

	SetExamples(12)
	assert.Equal(t, 12.0, testutil.ToFloat64(Observer.Examples))
}

func TestHandlerExposesCollectors(t *testing.T) {
	SetExamples(3)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "randforest_examples 3")
	assert.Contains(t, rec.Body.String(), "randforest_train_duration_seconds")
}
