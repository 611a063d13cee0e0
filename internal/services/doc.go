// Package services defines the [Service] interface the views and commands use to talk to the practice backend.
//
// # Service Interface
//
// Every call is a command or query against the backend: create, load and delete regiments,
// read or set the active piece, and subscribe to live BPM. Views never touch storage directly.
//
// # Local Implementation
//
// [LocalService] runs in-process on top of the repositories and a [telemetry.Broker].
//
// # HTTP Implementation
//
// [APIService] talks to the HTTP API served by the serve command. The BPM subscription reads
// the server's event stream.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrInvalidInput] : validation failed (400 over HTTP)
//   - [shared.ErrPieceNotFound] : piece does not exist (404 over HTTP)
//   - [shared.ErrRegimentNotFound] : regiment does not exist
//   - [shared.ErrServiceUnavailable] : live BPM is not available
//   - [shared.ErrAPIRequest] : any other HTTP failure
package services
