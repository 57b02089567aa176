// Package client contains client-side building blocks for PhoenixLocker.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) for the
//     locker backend: registration and login, the ledger mutations, and the
//     read-only queries.
//  2. A concrete gRPC implementation (see GRPCClient) that manages a
//     connection, injects the access token via an interceptor and maps gRPC
//     status codes back to sentinel errors.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations) for
//     the CLI profile, wiring an SQLite database and applying embedded goose
//     migrations.
//
// # Error Handling
//
// Transport conditions are exposed as ErrUnavailable and ErrUnauthorized.
// Ledger refusals come back as the sentinels of package common
// (ErrInvalidAmount, ErrNothingToWithdraw, ErrTransferFailed, ...), so callers
// match them with errors.Is exactly as on the server.
package client
