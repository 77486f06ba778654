// Package fault defines the closed set of error categories used by docon.
//
// Every component returns *Error values so that callers can decide what to do
// without knowing which library produced the fault:
//
//   - Validation: caller input error; never retried
//   - UnmappedChannel: the channel has no coil mapping; never retried
//   - Connection, Transport: link faults; the only retryable categories
//   - Persistence: settings could not be saved; reported, never fatal
//
// Raw errors from the wire library are converted with Classify.
package fault
