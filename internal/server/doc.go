// Package server provides HTTP routing, middleware, and the local OAuth callback endpoint.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// CallbackHandler receives the browser redirect at the end of the Spotify
// authorization flow. It validates the state parameter (CSRF protection),
// captures the authorization code, and sends the result through a channel.
// The code itself is exchanged by the backend, never locally.
//
// It only processes one callback to prevent replay attacks.
//
// # Current Usage
//
// When the user runs `sgx auth login`, a temporary HTTP server starts on
// localhost:3000, receives the redirect, and shuts down after handing the code
// back to the session coordinator. [Serve] wraps that lifecycle: start, wait for
// one result or context expiry, shut down.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
