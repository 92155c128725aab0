package observe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// newMiddlewareHarness wires an in-memory metric reader and span exporter
// around a Middleware-wrapped handler.
func newMiddlewareHarness(t *testing.T, h http.HandlerFunc) (http.Handler, *sdkmetric.ManualReader, *tracetest.InMemoryExporter) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	origTP := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(origTP) })

	return Middleware(m)(h), reader, exp
}

func TestMiddleware_SetsCorrelationID(t *testing.T) {
	var seenCID string
	handler, _, _ := newMiddlewareHarness(t, func(w http.ResponseWriter, r *http.Request) {
		seenCID = CorrelationID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/corrections", nil))

	if seenCID == "" {
		t.Fatal("handler context carries no correlation ID")
	}
	if len(seenCID) != 32 {
		t.Errorf("correlation ID length = %d, want a 32-hex trace ID", len(seenCID))
	}
	if got := rec.Header().Get("X-Correlation-ID"); got != seenCID {
		t.Errorf("X-Correlation-ID = %q, want the handler's trace ID %q", got, seenCID)
	}
}

func TestMiddleware_StartsServerSpan(t *testing.T) {
	handler, _, exp := newMiddlewareHarness(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/v1/stats", nil))

	spans := exp.GetSpans()
	if len(spans) == 0 {
		t.Fatal("no span recorded for the request")
	}
	if spans[0].Name != "HTTP GET /v1/stats" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "HTTP GET /v1/stats")
	}
}

func TestMiddleware_RecordsRequestDuration(t *testing.T) {
	handler, reader, _ := newMiddlewareHarness(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/v1/corrections", nil))

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	met := findMetric(rm, "livecaps.http.request.duration")
	if met == nil {
		t.Fatal("livecaps.http.request.duration was not recorded")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("metric data type = %T, want a float64 histogram", met.Data)
	}
	if len(hist.DataPoints) == 0 {
		t.Fatal("histogram has no data points")
	}

	dp := hist.DataPoints[0]
	if dp.Count != 1 {
		t.Errorf("sample count = %d, want 1", dp.Count)
	}
	var gotMethod, gotPath string
	for _, kv := range dp.Attributes.ToSlice() {
		switch string(kv.Key) {
		case "method":
			gotMethod = kv.Value.AsString()
		case "path":
			gotPath = kv.Value.AsString()
		}
	}
	if gotMethod != "POST" {
		t.Errorf("method attribute = %q, want POST", gotMethod)
	}
	if gotPath != "/v1/corrections" {
		t.Errorf("path attribute = %q, want /v1/corrections", gotPath)
	}
}

func TestMiddleware_RecordsStatusOnSpan(t *testing.T) {
	handler, _, exp := newMiddlewareHarness(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/sessions/unknown/terms", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("response status = %d, want 404", rec.Code)
	}

	spans := exp.GetSpans()
	if len(spans) == 0 {
		t.Fatal("no span recorded for the request")
	}
	found := false
	for _, a := range spans[0].Attributes {
		if string(a.Key) == "http.response.status_code" && a.Value.AsInt64() == 404 {
			found = true
		}
	}
	if !found {
		t.Error("span carries no http.response.status_code=404 attribute")
	}
}

func TestMiddleware_ContinuesCallerTrace(t *testing.T) {
	const wantTraceID = "4bf92f3577b34da6a3ce929d0e0e4736"

	var seenCID string
	handler, _, _ := newMiddlewareHarness(t, func(w http.ResponseWriter, r *http.Request) {
		seenCID = CorrelationID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("POST", "/v1/corrections", nil)
	req.Header.Set("traceparent", "00-"+wantTraceID+"-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seenCID != wantTraceID {
		t.Errorf("correlation ID = %q, want the caller's trace ID %q", seenCID, wantTraceID)
	}
	if got := rec.Header().Get("X-Correlation-ID"); got != wantTraceID {
		t.Errorf("X-Correlation-ID = %q, want %q", got, wantTraceID)
	}
}
