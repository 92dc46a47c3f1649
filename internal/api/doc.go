// Package api contains the HTTP handlers for the progress-tracking service:
// session lifecycle, record logging, streak touches, and dashboard reads.
// Handlers decode and validate requests, delegate to the service layer, and
// map service errors to status codes in one place (errors.go). They hold no
// business rules of their own.
package api
