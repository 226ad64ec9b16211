package domain

// QueryOutcome is the result of one exchange with the query proxy.
// Exactly one of Raw (when Success) or Failure is meaningful.
type QueryOutcome struct {
	Success   bool
	Raw       any
	Failure   *Error
	ElapsedMs int64
}

// Succeeded builds a successful outcome around a decoded result payload.
func Succeeded(raw any, elapsedMs int64) QueryOutcome {
	return QueryOutcome{Success: true, Raw: raw, ElapsedMs: elapsedMs}
}

// Failed builds a failed outcome. The elapsed time is copied onto the error.
func Failed(err *Error, elapsedMs int64) QueryOutcome {
	if err == nil {
		err = NewError(KindTransport, "unknown failure")
	}
	err.ElapsedMs = elapsedMs
	return QueryOutcome{Failure: err, ElapsedMs: elapsedMs}
}

// Reason returns the failure kind, or "" for successes.
func (o QueryOutcome) Reason() ErrorKind {
	if o.Success || o.Failure == nil {
		return ""
	}
	return o.Failure.Kind
}

// ProbeResult is the outcome of a connection test. Payload is passed through uninterpreted.
type ProbeResult struct {
	Outcome QueryOutcome
	Message string
}
