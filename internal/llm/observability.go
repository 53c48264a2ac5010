package llm

import (
	"go.uber.org/zap"
)

// CallEvent records metadata about a single completion call.
type CallEvent struct {
	Provider  Provider
	Model     string
	Turns     int
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about completion calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes call events to a zap logger.
type LogObserver struct {
	log *zap.Logger
}

// NewLogObserver creates an Observer that logs events to log.
func NewLogObserver(log *zap.Logger) *LogObserver {
	return &LogObserver{log: log.Named("llm")}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	fields := []zap.Field{
		zap.String("provider", string(event.Provider)),
		zap.String("model", event.Model),
		zap.Int("turns", event.Turns),
		zap.Int64("latency_ms", event.LatencyMs),
	}
	if !event.Success {
		o.log.Warn("llm_call", append(fields, zap.String("status", "err:"+event.ErrorCode))...)
		return
	}
	o.log.Info("llm_call", append(fields, zap.String("status", "ok"))...)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}
