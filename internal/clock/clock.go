package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts time for services that window or schedule work.
type Clock interface {
	Now() time.Time
}

// Module provides the system clock.
var Module = fx.Provide(NewSystemClock)

type SystemClock struct{}

func NewSystemClock() Clock {
	return SystemClock{}
}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
