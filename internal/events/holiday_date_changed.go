package events

import "time"

const (
	HolidayDateChangedTopic = "hr.holiday.date_changed.v1"
	HolidayDateChangedType  = "holiday_date_changed"
)

// HolidayDateChangedEvent is emitted when a holiday is created or moved to a
// new date. Date and PreviousDate use the YYYY-MM-DD layout; PreviousDate is
// empty on create.
type HolidayDateChangedEvent struct {
	EventType    string    `json:"event_type"`
	RequestID    string    `json:"request_id,omitempty"`
	HolidayID    string    `json:"holiday_id"`
	Date         string    `json:"date"`
	PreviousDate string    `json:"previous_date,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
