// Package common contains shared constants and sentinel errors used across
// rpass components.
package common

// SessionTokenHeaderName is the gRPC metadata key used to carry the
// session token on outbound requests.
const SessionTokenHeaderName = "session_token"

// ErrorDomain is reported in structured gRPC error details.
const ErrorDomain = "rpass"
