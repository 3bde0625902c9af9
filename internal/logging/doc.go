// Package logging provides structured logging utilities for the meetingagent
// application.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (attendee email anonymization)
//   - API key masking
//   - Consistent attribute naming across the codebase
//
// # Security Considerations
//
// Attendee emails are hashed to prevent PII leakage while allowing log
// correlation, and the Cal.com API key is never logged directly.
package logging
