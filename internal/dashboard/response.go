package dashboard

import "time"

// SuccessResponse is the JSON envelope for successful API calls.
type SuccessResponse struct {
	Success bool  `json:"success"`
	Data    any   `json:"data"`
	Meta    *Meta `json:"meta,omitempty"`
}

// ErrorResponse is the JSON envelope for failed API calls.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Meta struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
	LoadID    string    `json:"load_id,omitempty"`
}

// Error codes.
const (
	CodeDataUnavailable  = "DATA_UNAVAILABLE"
	CodeUnknownSelection = "UNKNOWN_SELECTION"
	CodeUnknownChart     = "UNKNOWN_CHART"
	CodeAnalysisFailed   = "ANALYSIS_FAILED"
	CodeRenderFailed     = "RENDER_FAILED"
	CodeBadRequest       = "BAD_REQUEST"
)

func createErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error: APIError{
			Code:    code,
			Message: message,
		},
	}
}

func createSuccessResponse(data any, requestID, loadID string) SuccessResponse {
	return SuccessResponse{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Timestamp: time.Now(),
			RequestID: requestID,
			LoadID:    loadID,
		},
	}
}
