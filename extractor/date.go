package extractor

import (
	"time"

	"walletpass/entity"
)

const (
	DefaultDateLayout     = "January 2, 2006"
	DefaultTimeLayout     = "3:04 PM"
	DefaultPurchaseLayout = "2006-01-02 15:04:05"
)

var storedTimeLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04PM", "3:04 pm", "3:04pm"}

// FormatEventDate renders the event schedule for display. The end date is shown only when it
// differs from the start date; on a single-day event only the end time is appended.
func FormatEventDate(event entity.Event, dateLayout, timeLayout string) string {
	if event.StartDate == "" {
		return ""
	}

	formatted := formatStoredDate(event.StartDate, dateLayout)
	if event.StartTime != "" {
		formatted += " " + formatStoredTime(event.StartTime, timeLayout)
	}

	if event.EndDate != "" && event.EndDate != event.StartDate {
		formatted += " - " + formatStoredDate(event.EndDate, dateLayout)
		if event.EndTime != "" {
			formatted += " " + formatStoredTime(event.EndTime, timeLayout)
		}
	} else if event.EndTime != "" {
		formatted += " - " + formatStoredTime(event.EndTime, timeLayout)
	}

	return formatted
}

// values the host stored in an unknown shape are shown as they are
func formatStoredDate(value, layout string) string {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return value
	}
	return t.Format(layout)
}

func formatStoredTime(value, layout string) string {
	for _, stored := range storedTimeLayouts {
		t, err := time.Parse(stored, value)
		if err == nil {
			return t.Format(layout)
		}
	}
	return value
}
