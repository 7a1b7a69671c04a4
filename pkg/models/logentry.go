package models

import (
	"slices"
	"time"
)

// LogAction identifies the workflow step a log entry records.
type LogAction string

const (
	LogActionFind           LogAction = "find"
	LogActionDeleteBatch    LogAction = "delete_batch"
	LogActionTermCleanup    LogAction = "term_cleanup"
	LogActionCronCleanup    LogAction = "cron_cleanup"
	LogActionCronSchedule   LogAction = "cron_schedule"
	LogActionCronUnschedule LogAction = "cron_unschedule"
	LogActionLogPurge       LogAction = "log_purge"
)

// LogStatus is the outcome class of a logged step.
type LogStatus string

const (
	LogStatusInfo    LogStatus = "info"
	LogStatusSuccess LogStatus = "success"
	LogStatusWarning LogStatus = "warning"
	LogStatusError   LogStatus = "error"
)

// LogEntry is one immutable activity-log record. Entries are only ever
// removed by the retention sweep or a manual purge.
type LogEntry struct {
	ID         string             `json:"id"`
	Action     LogAction          `json:"action"`
	Status     LogStatus          `json:"status"`
	Summary    string             `json:"summary"`
	Criteria   *OperationSettings `json:"criteria,omitempty"`
	Found      int                `json:"found,omitempty"`
	Attempted  int                `json:"attempted,omitempty"`
	Deleted    int                `json:"deleted,omitempty"`
	Errors     int                `json:"errors,omitempty"`
	Details    []string           `json:"details,omitempty"`
	ActingUser string             `json:"acting_user,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// DefaultRetentionDays is applied when no retention period is configured.
const DefaultRetentionDays = 30

// RetentionChoices are the accepted retention periods, in days.
// Zero keeps logs forever.
var RetentionChoices = []int{0, 7, 15, 30, 60, 90, 180, 365}

// ValidRetentionDays reports whether days is an accepted retention period.
func ValidRetentionDays(days int) bool {
	return slices.Contains(RetentionChoices, days)
}
