package engine

import (
	"github.com/alexisbeaulieu97/shopflow/internal/logger"
	"github.com/alexisbeaulieu97/shopflow/internal/model"
)

// LogObserver writes one structured entry per step transition.
type LogObserver struct {
	log *logger.Logger
}

// NewLogObserver creates a LogObserver. A nil logger discards everything.
func NewLogObserver(log *logger.Logger) *LogObserver {
	return &LogObserver{log: log}
}

// StepStarted implements Observer.
func (o *LogObserver) StepStarted(index, total int, name string) {
	o.log.WithFields(map[string]any{
		"step":  name,
		"index": index + 1,
		"total": total,
	}).Debug("step started")
}

// StepFinished implements Observer.
func (o *LogObserver) StepFinished(_, _ int, result model.StepResult) {
	entry := o.log.WithFields(map[string]any{
		"step":     result.Name,
		"status":   string(result.Status),
		"duration": result.Duration.String(),
		"detail":   result.Detail,
	})
	if result.Status == model.StatusFailed {
		entry.Warn("step finished")
		return
	}
	entry.Info("step finished")
}
