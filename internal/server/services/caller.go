// Package services contains the server-side business logic of the course
// image web service.
package services

// Caller identifies the authenticated user a call is made on behalf of.
type Caller struct {
	UserID int64
}
