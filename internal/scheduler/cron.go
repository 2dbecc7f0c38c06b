package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
)

// Schedules use the standard five-field cron format.
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks that schedule parses as a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// NextRunTime returns the first activation of schedule strictly after from.
func NextRunTime(schedule string, from time.Time) (time.Time, error) {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// DescribeSchedule returns a human-readable description of common schedules.
func DescribeSchedule(schedule string) string {
	switch schedule {
	case "0 * * * *":
		return "every hour at :00"
	case "0 */6 * * *":
		return "every 6 hours"
	case "0 0 * * *":
		return "daily at midnight"
	case "30 3 * * *":
		return "daily at 03:30"
	case "0 0 * * 0":
		return "weekly on Sunday at midnight"
	default:
		return "custom schedule: " + schedule
	}
}
