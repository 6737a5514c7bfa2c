package tui

import (
	"time"

	"schoolmon/internal/i18n"
	"schoolmon/internal/model"
)

// StatusLabel is the localized name of a device status.
func StatusLabel(s model.DeviceStatus) string {
	switch s {
	case model.StatusHealthy:
		return i18n.T("status.healthy")
	case model.StatusWarning:
		return i18n.T("status.warning")
	case model.StatusCritical:
		return i18n.T("status.critical")
	}
	return i18n.T("status.unknown")
}

// RelativeTime renders how long ago t was, in the coarsest fitting unit.
func RelativeTime(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return i18n.T("time.now")
	case d < time.Hour:
		return i18n.T("time.minutesAgo", map[string]any{"count": int(d / time.Minute)})
	case d < 24*time.Hour:
		return i18n.T("time.hoursAgo", map[string]any{"count": int(d / time.Hour)})
	case d < 7*24*time.Hour:
		return i18n.T("time.daysAgo", map[string]any{"count": int(d / (24 * time.Hour))})
	case d < 30*24*time.Hour:
		return i18n.T("time.weeksAgo", map[string]any{"count": int(d / (7 * 24 * time.Hour))})
	case d < 365*24*time.Hour:
		return i18n.T("time.monthsAgo", map[string]any{"count": int(d / (30 * 24 * time.Hour))})
	}
	return i18n.T("time.yearsAgo", map[string]any{"count": int(d / (365 * 24 * time.Hour))})
}
