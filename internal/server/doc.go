// Package server provides HTTP routing, middleware and the practicebook JSON API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /path"), so requests with
// the wrong method get a 405 from the mux itself.
//
// # API
//
//	GET    /api/regiments       list regiments, newest first
//	POST   /api/regiments       create a regiment from a draft
//	DELETE /api/regiments/{id}  delete a regiment
//	GET    /api/active-piece    {"piece_id": "..."} or {"piece_id": null}
//	PUT    /api/active-piece    mark a piece active
//	GET    /api/bpm             live BPM as Server-Sent Events
//	GET    /healthz             liveness probe
//
// Errors are returned as {"error": "..."}. Validation failures map to 400, unknown regiments and
// pieces to 404 and a missing live BPM source to 503.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
// [BPMStream] is registered this way.
package server
