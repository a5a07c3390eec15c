package format

import (
	"fmt"
	"time"
)

// FormatExecutionDuration renders a run or destination duration for the
// summary: microseconds below a millisecond, whole milliseconds below a
// second, then time.Duration notation rounded to the millisecond (to the
// second past one minute) so long runs do not print nanosecond noise.
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d < 0:
		return "-" + FormatExecutionDuration(-d)
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
