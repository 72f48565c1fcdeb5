package model

// APIResponse is the envelope of every JSON body the API writes. Exactly one
// of Data and Error is set; Meta accompanies paginated listings such as
// GET /api/audit.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *Meta     `json:"meta,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Meta describes one page of a listing. Page is 1-based and TotalPages is 0
// when Total is 0.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func NewMeta(page int, limit int, total int) Meta {
	meta := Meta{Page: page, Limit: limit, Total: total}
	if total > 0 && limit > 0 {
		meta.TotalPages = (total + limit - 1) / limit
	}
	return meta
}

func Succeeded(data any, meta *Meta) APIResponse {
	return APIResponse{Success: true, Data: data, Meta: meta}
}

func Failed(code string, message string, details string) APIResponse {
	return APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message, Details: details},
	}
}
