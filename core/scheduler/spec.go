package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule types understood by Expression.
const (
	TypePreset   = "preset"
	TypeInterval = "interval"
	TypeCron     = "cron"
)

var presets = map[string]string{
	"15min":   "@every 15m",
	"1hour":   "@every 1h",
	"6hours":  "@every 6h",
	"12hours": "@every 12h",
	"daily":   "0 0 * * *",
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Expression converts a schedule type and value into a cron expression.
// Interval values are whole minutes.
func Expression(scheduleType, value string) (string, error) {
	value = strings.TrimSpace(value)

	var expr string
	switch scheduleType {
	case TypePreset:
		e, ok := presets[value]
		if !ok {
			return "", fmt.Errorf("unknown schedule preset %q", value)
		}
		expr = e
	case TypeInterval:
		minutes, err := strconv.Atoi(value)
		if err != nil || minutes <= 0 {
			return "", fmt.Errorf("invalid interval %q: expected a positive number of minutes", value)
		}
		expr = fmt.Sprintf("@every %dm", minutes)
	case TypeCron:
		expr = value
	default:
		return "", fmt.Errorf("unknown schedule type %q", scheduleType)
	}

	if _, err := parser.Parse(expr); err != nil {
		return "", fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return expr, nil
}

// NextRun returns the first activation of expr strictly after from, evaluated
// in loc.
func NextRun(expr string, from time.Time, loc *time.Location) (time.Time, error) {
	sched, err := parser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	if loc != nil {
		from = from.In(loc)
	}
	return sched.Next(from), nil
}

// Presets returns the supported preset names.
func Presets() []string {
	return []string{"15min", "1hour", "6hours", "12hours", "daily"}
}
