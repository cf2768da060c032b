// Package dto defines the request and response shapes of the terminal API.
package dto

// SuccessResponse is the generic mutation acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// IDResponse returns the identifier of a created resource.
type IDResponse struct {
	ID string `json:"id"`
}
