// Package orchestrator drives handler requests to completion.
//
// Handlers never wait for a resource to settle. Instead they return an
// IN_PROGRESS event with a callback context and a delay, and expect to be
// invoked again. The Driver plays the part of the caller: it waits for the
// requested delay, passes the callback context and the latest resource model
// back to the handler, and repeats until a terminal event is returned. List
// requests are followed page by page until no next token is returned.
//
// Failures with a retryable error code are retried with exponential backoff.
//
// If a run store is set, the state of the run is stored after each
// invocation. An interrupted run can be continued with Resume.
package orchestrator
