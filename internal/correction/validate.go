package correction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/islamborghini/livecaps/pkg/types"
)

// ParseRequest decodes and validates a raw request payload at the boundary.
// An undecodable body returns a nil request and a [*ValidationError]. A body
// that decodes but violates a field invariant returns the decoded request
// together with the validation error, so the caller can still honour the
// never-fail contract and echo the transcript back with a warning (see
// [PassThrough]).
func ParseRequest(data []byte) (*types.CorrectionRequest, error) {
	var req types.CorrectionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, &ValidationError{Err: fmt.Errorf("decode body: %w", err)}
	}
	if err := ValidateRequest(&req); err != nil {
		return &req, err
	}
	return &req, nil
}

// PassThrough builds the degraded result for a request that decoded but
// failed validation: the transcript is echoed back unmodified and the
// validation failure is attached as a warning.
func PassThrough(req *types.CorrectionRequest, err error) *types.CorrectionResult {
	return &types.CorrectionResult{
		OriginalTranscript:  req.Transcript,
		CorrectedTranscript: req.Transcript,
		Corrections:         []types.CorrectionDetail{},
		SessionID:           req.SessionID,
		Warnings:            []string{err.Error()},
	}
}

// ValidateRequest checks the field-level invariants of req. All violations
// are collected so the caller sees every problem at once.
func ValidateRequest(req *types.CorrectionRequest) error {
	var errs []error

	if strings.TrimSpace(req.SessionID) == "" {
		errs = append(errs, errors.New("sessionId must not be empty"))
	}
	if req.ConfidenceThreshold < 0 || req.ConfidenceThreshold > 1 {
		errs = append(errs, fmt.Errorf("confidenceThreshold %v outside [0, 1]", req.ConfidenceThreshold))
	}
	for i, wc := range req.WordConfidences {
		if wc.Word == "" {
			errs = append(errs, fmt.Errorf("wordConfidences[%d]: word must not be empty", i))
			continue
		}
		if wc.Confidence < 0 || wc.Confidence > 1 {
			errs = append(errs, fmt.Errorf("wordConfidences[%d] (%q): confidence %v outside [0, 1]", i, wc.Word, wc.Confidence))
		}
		if wc.End < wc.Start {
			errs = append(errs, fmt.Errorf("wordConfidences[%d] (%q): end %v before start %v", i, wc.Word, wc.End, wc.Start))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Err: errors.Join(errs...)}
	}
	return nil
}
