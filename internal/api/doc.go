// Package api exposes the trainer over HTTP. Each collection gets one
// long-lived session held in a Registry; handlers translate requests into
// session, scheduling and progress operations and map domain errors to
// status codes without leaking internals.
package api
