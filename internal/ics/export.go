package ics

import (
	"errors"
	"strconv"
	"time"
	"unicode/utf16"

	ical "github.com/arran4/golang-ical"

	appLog "rdmcal/internal/log"
	"rdmcal/internal/metrics"
	"rdmcal/internal/model"
)

const (
	// ProductID is the PRODID of every exported document.
	ProductID = "-//RDM Calendar//EN"
	// FileName is the suggested download name.
	FileName = "rdm-calendar.ics"
	// NoEventsMessage is shown to users when an export is refused.
	NoEventsMessage = "No events match the current filter."

	uidPrefix = "rdm-conf-"
)

// ErrNoEvents is returned by Export when nothing passes the filter. No
// document is produced in that case.
var ErrNoEvents = errors.New("ics: no events match the current filter")

// ExportOptions tunes Export.
type ExportOptions struct {
	// Now stamps DTSTAMP. Defaults to time.Now.
	Now func() time.Time
}

// Export serializes the visible events as an iCalendar document with one
// all-day VEVENT per event. DTEND is exclusive, so it is the day after the
// event's last day.
func Export(events []model.Event, visible func(model.Event) bool, opts ExportOptions) ([]byte, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	included := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if visible != nil && visible(ev) {
			included = append(included, ev)
		}
	}
	if len(included) == 0 {
		metrics.ExportEmpty()
		appLog.Info("ics export refused: no visible events", "total", len(events))
		return nil, ErrNoEvents
	}

	stamp := now().UTC().Truncate(time.Second)

	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ical.MethodPublish)

	for _, ev := range included {
		addEvent(cal, ev, stamp)
	}

	metrics.Exported(len(included))
	appLog.Info("ics export completed", "events", len(included), "total", len(events))
	return []byte(cal.Serialize(ical.WithNewLineWindows)), nil
}

func addEvent(cal *ical.Calendar, ev model.Event, stamp time.Time) {
	occ := ev.Occurrence

	ve := cal.AddEvent(EventUID(ev.Name, occ.From))
	ve.SetDtStampTime(stamp)
	ve.SetAllDayStartAt(occ.From.Time())
	ve.SetAllDayEndAt(occ.End().AddDays(1).Time())

	// The TEXT setters take unescaped values; the library escapes
	// backslash, ';', ',' and newlines on output.
	ve.SetSummary(ev.Name)
	ve.SetDescription(description(ev))
	if occ.Location != "" {
		ve.SetLocation(occ.Location)
	}
	// One CATEGORIES line per tag.
	for _, tag := range ev.Tags {
		ve.AddProperty(ical.ComponentPropertyCategories, tag)
	}
}

func description(ev model.Event) string {
	link := "Link: " + ev.EffectiveLink()
	if ev.Occurrence.Info == "" {
		return link
	}
	return ev.Occurrence.Info + "\n\n" + link
}

// EventUID derives the stable identifier of an event occurrence from its
// name and start date: a 31-based rolling hash over the UTF-16 code units of
// name + "YYYY-MM-DD", made non-negative and namespaced. Re-exporting the
// same event always yields the same UID.
func EventUID(name string, from model.Date) string {
	var h int32
	for _, u := range utf16.Encode([]rune(name + from.String())) {
		h = h*31 + int32(u)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return uidPrefix + strconv.FormatInt(v, 10)
}
