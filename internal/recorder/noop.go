package recorder

// NoopRecorder is used when SQLite is not configured or fails to open.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordQuote(_ *QuoteEvent) error     { return nil }
func (n *NoopRecorder) RecordFailure(_ *FailureEvent) error { return nil }
func (n *NoopRecorder) Close() error                        { return nil }
