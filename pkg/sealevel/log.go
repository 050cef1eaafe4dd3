package sealevel

type Logger interface {
	Log(s string)
}

// LogRecorder keeps every line logged during an execution.
type LogRecorder struct {
	Logs []string
}

func (r *LogRecorder) Log(s string) {
	r.Logs = append(r.Logs, s)
}
