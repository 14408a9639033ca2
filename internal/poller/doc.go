// Package poller provides interval HTTP polling of the text source.
//
// This package is internal to typecast. The main components are:
//
//   - [Client]: HTTP client wrapper with timeout, size limits and tracing
//   - [Scheduler]: Polls one source on a fixed interval and emits results
//   - [Result]: Outcome of a single poll
//   - [SourceInfo]: Configuration for the source to poll
//
// Users of the typecast library should not need to interact with this
// package directly. Configuration is done through the main typecast package.
package poller
