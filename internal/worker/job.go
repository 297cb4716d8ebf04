package worker

import (
	"context"
	"time"
)

// Job - периодическая задача. Run не возвращает ошибку планировщику:
// ошибка логируется и попадает в Result.
type Job interface {
	Name() string
	Run(ctx context.Context) Result
}

type Result struct {
	Job      string        `json:"job"`
	Checked  int           `json:"checked"`
	Emitted  int           `json:"emitted"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// Clock возвращает текущее время; подменяется в тестах
type Clock func() time.Time
