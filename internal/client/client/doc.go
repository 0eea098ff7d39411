// Package client talks to the server of record.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) used by
//     the sync engines, the POS session and the reconciler: Ping, delta
//     pulls of products and customers, online product search, direct sale
//     submission, bulk offline-order delivery and journal upload URLs.
//  2. A REST implementation (see HTTPClient) that keeps a cookie jar for
//     session credentials, sends the bearer API token on every request and
//     the CSRF token on every state-changing request, and traces requests
//     through an OpenTelemetry transport.
//
// # Error Handling
//
// Transport failures and timeouts are reported as ErrUnavailable. Any
// non-2xx response is a *ServerError, which matches ErrServerRejected with
// errors.Is (and ErrUnauthorized for 401/403).
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation; the configured timeout applies to
// every request.
package client
