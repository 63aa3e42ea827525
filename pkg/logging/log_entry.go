package logging

// LogEntry represents a structured log record with fields particularly relevant to training runs
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Training-run fields
	RunID        string // The training run this entry belongs to
	TrainingStep int    // Current step of the training loop, -1 when unknown

	// General structured data
	Fields map[string]interface{}
}
