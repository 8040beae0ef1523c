// Package dto provides Data Transfer Objects for HTTP requests and responses.
package dto

// UpdateScheduleRequest represents the request body for changing the
// refresh schedule at runtime.
type UpdateScheduleRequest struct {
	Expression string `json:"expression" validate:"required,cron"`
}
