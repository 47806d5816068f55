// Package gateway is the single entry point to the local model servers.
//
// A [Gateway] is built once from an immutable [Config] and passed to every
// call site. Each [Gateway.Generate] call resolves a request-scoped
// [ProviderConfig] from the process defaults plus per-call [Overrides],
// dispatches to the provider.Strategy registered for the chosen kind and
// returns trimmed text. [Gateway.ListModels] and [Gateway.TestConnection]
// never return errors; their failures are part of the result.
//
// Errors from Generate fall into three kinds, matched with errors.Is:
// [ErrInvalidRequest] (nothing was sent), [ErrUnreachable] (no connection)
// and [ErrGeneration] (the backend answered but no text came out).
package gateway
