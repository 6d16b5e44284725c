package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	m := &dto.Metric{}
	if err := cv.WithLabelValues(labels...).Write(m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func getCounterTotal(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func getHistogramCount(hv *prometheus.HistogramVec, labels ...string) uint64 {
	m := &dto.Metric{}
	observer := hv.WithLabelValues(labels...)
	if c, ok := observer.(prometheus.Metric); ok {
		if err := c.Write(m); err != nil {
			return 0
		}
		return m.GetHistogram().GetSampleCount()
	}
	return 0
}

func TestRecordRouteResolution(t *testing.T) {
	RecordRouteResolution("not_found")
	RecordRouteResolution("not_found")

	val := getCounterValue(RouteResolutionsTotal, "not_found")
	if val < 2 {
		t.Errorf("RouteResolutionsTotal = %f, want >= 2", val)
	}
}

func TestRecordActivationClientInvoke(t *testing.T) {
	RecordActivationClientInvoke("success", 200*time.Millisecond)

	count := getHistogramCount(ActivationClientDurationSeconds, "success")
	if count < 1 {
		t.Errorf("ActivationClientDurationSeconds sample count = %d, want >= 1", count)
	}
}

func TestRecordFanoutRuleOutcome(t *testing.T) {
	RecordFanoutRuleOutcome("ERROR")
	RecordFanoutRuleOutcome("ERROR")
	RecordFanoutRuleOutcome("INFO")

	errVal := getCounterValue(FanoutRuleOutcomesTotal, "ERROR")
	infoVal := getCounterValue(FanoutRuleOutcomesTotal, "INFO")
	if errVal < 2 {
		t.Errorf("FanoutRuleOutcomesTotal[ERROR] = %f, want >= 2", errVal)
	}
	if infoVal < 1 {
		t.Errorf("FanoutRuleOutcomesTotal[INFO] = %f, want >= 1", infoVal)
	}
}

func TestRecordActivationStoreWriteFailure(t *testing.T) {
	before := getCounterTotal(ActivationStoreWriteFailuresTotal)
	RecordActivationStoreWriteFailure()
	after := getCounterTotal(ActivationStoreWriteFailuresTotal)
	if after != before+1 {
		t.Errorf("ActivationStoreWriteFailuresTotal = %f, want %f", after, before+1)
	}
}

func TestRecordHousekeepingCompacted(t *testing.T) {
	before := getCounterTotal(HousekeepingCompactedTotal)
	RecordHousekeepingCompacted(5)
	after := getCounterTotal(HousekeepingCompactedTotal)
	if after != before+5 {
		t.Errorf("HousekeepingCompactedTotal = %f, want %f", after, before+5)
	}
}
