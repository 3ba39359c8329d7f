package dto

import "time"

// ErrorResponse is the JSON body returned for every failed request.
//
// Fields:
//   - Code: short machine-readable identifier (e.g., "upstream_error").
//   - Message: human-readable summary; the frontend shows it verbatim.
//   - ErrorDetails: underlying error text, when there is one.
//   - Timestamp: when the error response was built (UTC).
//
// ErrorResponse also implements error so handlers can pass it through c.Error.
type ErrorResponse struct {
	Code         string    `json:"error,omitempty" example:"upstream_error"`
	Message      string    `json:"message" example:"failed to fetch prices"`
	ErrorDetails string    `json:"details,omitempty" example:"agmarknet: upstream status 503"`
	Timestamp    time.Time `json:"timestamp"`
}

// Error implements the error interface.
func (e ErrorResponse) Error() string {
	if e.ErrorDetails == "" {
		return e.Message
	}
	return e.Message + ": " + e.ErrorDetails
}

// WithCode returns a copy of e carrying the given machine-readable code.
func (e ErrorResponse) WithCode(code string) ErrorResponse {
	e.Code = code
	return e
}

// NewErrorResponse builds an ErrorResponse with the current UTC timestamp.
// When err is non-nil its text is copied into ErrorDetails.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}
