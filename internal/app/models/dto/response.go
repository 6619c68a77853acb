package dto

// Response is the standard envelope for API responses. Every body carries a
// success flag; failures add a message and optionally per-field errors.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// NewSuccessResponse creates a success envelope around data
func NewSuccessResponse(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewMessageResponse creates a success envelope with only a message
func NewMessageResponse(message string) Response {
	return Response{
		Success: true,
		Message: message,
	}
}

// NewErrorResponse creates a failure envelope with a message
func NewErrorResponse(message string) Response {
	return Response{
		Success: false,
		Message: message,
	}
}

// NewValidationErrorResponse creates a failure envelope listing every violated field
func NewValidationErrorResponse(message string, errors []string) Response {
	return Response{
		Success: false,
		Message: message,
		Errors:  errors,
	}
}

// ListResponse is the envelope for collection endpoints; it carries the
// item count alongside the data.
type ListResponse struct {
	Success bool        `json:"success"`
	Count   int         `json:"count"`
	Data    interface{} `json:"data"`
}

// NewListResponse creates a list envelope
func NewListResponse(count int, data interface{}) ListResponse {
	return ListResponse{
		Success: true,
		Count:   count,
		Data:    data,
	}
}
