package api

import (
	"encoding/json"

	dErrors "cockpit/pkg/domain-errors"
)

// Meta carries request metadata the backend attaches to every envelope.
type Meta struct {
	RequestID  string          `json:"request_id,omitempty"`
	Timestamp  string          `json:"timestamp,omitempty"`
	StatusCode int             `json:"status_code,omitempty"`
	Pagination *WirePagination `json:"pagination,omitempty"`
}

// WirePagination is the backend's pagination shape.
type WirePagination struct {
	Page      int  `json:"page"`
	PageSize  int  `json:"page_size"`
	Total     int  `json:"total"`
	TotalPage int  `json:"total_page"`
	HasNext   bool `json:"has_next"`
	HasPrev   bool `json:"has_prev"`
}

// Pagination is the normalized shape handed to callers.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Normalize converts the wire pagination format.
func (w *WirePagination) Normalize() Pagination {
	return Pagination{
		Page:       w.Page,
		Limit:      w.PageSize,
		Total:      w.Total,
		TotalPages: w.TotalPage,
		HasNext:    w.HasNext,
		HasPrev:    w.HasPrev,
	}
}

type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// envelope is the wire-level wrapper around every backend payload. Success
// is a *bool so a missing field is distinguishable from false.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
	Error   *wireError      `json:"error,omitempty"`
	Meta    *Meta           `json:"meta,omitempty"`
}

// decodeEnvelope validates a 2xx response body against the envelope
// contract. A missing success field, success=false, or missing data field on
// a successful status is a backend/client version mismatch and fails loudly
// as a contract violation rather than being passed through or defaulted.
func decodeEnvelope(body []byte) (json.RawMessage, *Meta, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeContractViolation, "response is not a valid envelope")
	}
	if env.Success == nil {
		return nil, nil, dErrors.New(dErrors.CodeContractViolation, "envelope missing success field")
	}
	if !*env.Success {
		msg := "envelope reports success=false on a successful status"
		if env.Error != nil && env.Error.Message != "" {
			msg = env.Error.Message
		}
		return nil, nil, dErrors.New(dErrors.CodeContractViolation, msg)
	}
	if env.Data == nil {
		return nil, nil, dErrors.New(dErrors.CodeContractViolation, "envelope missing data field")
	}
	return env.Data, env.Meta, nil
}

// errorMessage extracts the backend's error description from a failed
// response body, best effort. Classification never depends on it.
func errorMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	if env.Error != nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return env.Message
}

// errorCode extracts the backend's machine error code from a failed
// response body, best effort.
func errorCode(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	if env.Error != nil {
		return env.Error.Code
	}
	return ""
}
