// Package handler defines the contract between an orchestrator and resource
// handlers.
//
// An orchestrator sends a Request describing the desired state of a single
// resource. The handler responds with a ProgressEvent. A handler never waits
// for a resource to stabilize in-process: when more work remains it returns
// an IN_PROGRESS event carrying a CallbackContext and a callback delay, and
// the orchestrator invokes the handler again with the returned context once
// the delay has passed.
//
// Failures are reported as FAILED events with an ErrorCode from a closed
// set. Remote errors are classified into a Kind by the resource provider and
// turned into an Error with Translate.
package handler
