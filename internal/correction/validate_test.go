package correction_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/islamborghini/livecaps/internal/correction"
	"github.com/islamborghini/livecaps/pkg/types"
)

func TestParseRequest(t *testing.T) {
	t.Parallel()

	body := `{
		"transcript": "We use cooper netties",
		"wordConfidences": [
			{"word": "We", "confidence": 0.99},
			{"word": "use", "confidence": 0.97},
			{"word": "cooper", "confidence": 0.35},
			{"word": "netties", "confidence": 0.28}
		],
		"sessionId": "sess-1",
		"confidenceThreshold": 0.7
	}`

	req, err := correction.ParseRequest([]byte(body))
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}
	if req.Transcript != "We use cooper netties" {
		t.Errorf("Transcript = %q", req.Transcript)
	}
	if len(req.WordConfidences) != 4 {
		t.Errorf("len(WordConfidences) = %d, want 4", len(req.WordConfidences))
	}
	if req.SessionID != "sess-1" {
		t.Errorf("SessionID = %q, want sess-1", req.SessionID)
	}
}

func TestParseRequest_MalformedJSON(t *testing.T) {
	t.Parallel()

	_, err := correction.ParseRequest([]byte(`{"transcript": `))
	if err == nil {
		t.Fatal("ParseRequest() accepted malformed JSON")
	}
	var verr *correction.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("error type = %T, want *ValidationError", err)
	}
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     types.CorrectionRequest
		wantSub []string
	}{
		{
			name: "missing session",
			req: types.CorrectionRequest{
				Transcript: "hello",
			},
			wantSub: []string{"sessionId"},
		},
		{
			name: "threshold out of range",
			req: types.CorrectionRequest{
				SessionID:           "s",
				ConfidenceThreshold: 1.5,
			},
			wantSub: []string{"confidenceThreshold"},
		},
		{
			name: "word confidence out of range",
			req: types.CorrectionRequest{
				SessionID: "s",
				WordConfidences: []types.WordConfidence{
					{Word: "hi", Confidence: -0.1},
				},
			},
			wantSub: []string{"confidence"},
		},
		{
			name: "word timing inverted",
			req: types.CorrectionRequest{
				SessionID: "s",
				WordConfidences: []types.WordConfidence{
					{Word: "hi", Confidence: 0.5, Start: 2.0, End: 1.0},
				},
			},
			wantSub: []string{"end", "start"},
		},
		{
			name: "all violations reported together",
			req: types.CorrectionRequest{
				ConfidenceThreshold: -1,
				WordConfidences: []types.WordConfidence{
					{Word: "", Confidence: 0.5},
				},
			},
			wantSub: []string{"sessionId", "confidenceThreshold", "wordConfidences[0]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := correction.ValidateRequest(&tt.req)
			if err == nil {
				t.Fatal("ValidateRequest() = nil, want error")
			}
			for _, sub := range tt.wantSub {
				if !strings.Contains(err.Error(), sub) {
					t.Errorf("error %q missing %q", err, sub)
				}
			}
		})
	}
}

func TestValidateRequest_Valid(t *testing.T) {
	t.Parallel()

	req := types.CorrectionRequest{
		Transcript:          "hello world",
		SessionID:           "sess-1",
		ConfidenceThreshold: 0.7,
		WordConfidences: []types.WordConfidence{
			{Word: "hello", Confidence: 0.9, Start: 0, End: 0.4},
			{Word: "world", Confidence: 0.8, Start: 0.4, End: 0.9},
		},
	}
	if err := correction.ValidateRequest(&req); err != nil {
		t.Errorf("ValidateRequest() = %v, want nil", err)
	}
}
