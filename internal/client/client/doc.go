// Package client is the Go client library for the rpass vault.
//
// GRPCClient owns one connection to the server. Because sessions are bound
// to the connection they were opened on, a GRPCClient is also the scope of
// one login: the token returned by Login is kept internally and attached to
// every later call by a unary interceptor.
//
// # Error Handling
//
// Server failures come back as the sentinel errors of package common
// (ErrAlreadyExists, ErrInvalidCredentials, ErrUnauthorized, ErrNotFound,
// ErrDuplicateName, ErrDecrypt, ErrStorage, ErrInvalidArgument). Transport
// failures map to ErrUnavailable. Match them with errors.Is.
//
// # Records
//
// The server stores opaque payloads. Entry is the record layout used by
// rpass tools (a password with optional notes); EncodeEntry and DecodeEntry
// convert it to and from a payload.
package client
