package invalidate_availability

import "time"

type Invalidator interface {
	Invalidate(staffID int64, date time.Time)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
