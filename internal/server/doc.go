// Package server exposes playlist schedules over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Endpoints
//
//	GET /health                → {"status":"ok"}
//	GET /api/schedule          → schedule rows, stats and playlist metadata as JSON
//	GET /api/schedule.csv      → the same rows as a CSV attachment
//
// Both schedule endpoints take the query parameters playlist (URL, URI or ID), start (HH:MM),
// date (YYYY-MM-DD), tz (IANA name), crossfade (seconds), sort, desc and refresh.
//
// Errors are reported as {"error": "..."} with a status derived from the sentinel error:
// bad input is 400, an unknown playlist is 404 and any upstream failure is 502.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
