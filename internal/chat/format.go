package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/redcardinal8/MeetingAgent/internal/calcom"
)

const shortHelp = "I can book new meetings, show your scheduled meetings, " +
	"cancel meetings, or check availability."

// WelcomeMessage is the greeting shown at the start of a conversation.
func WelcomeMessage() string {
	return "Hello! I can help you schedule meetings on Cal.com or view your existing ones.\n\n" +
		"I can help you with:\n" +
		"1. Booking new meetings\n" +
		"2. Viewing your scheduled meetings\n" +
		"3. Cancelling meetings\n" +
		"4. Checking availability\n\n" +
		"What would you like to do?"
}

// FormatBookingConfirmation renders a successful booking as a chat message.
// Times are shown in the requested timezone when it can be loaded.
func FormatBookingConfirmation(b *calcom.Booking, timeZone string) string {
	var sb strings.Builder
	sb.WriteString("Meeting successfully booked on Cal.com.\n\n")
	sb.WriteString(fmt.Sprintf("📌 %s\n", b.Title))
	sb.WriteString(fmt.Sprintf("   ⏰ Start: %s\n", formatTime(b.StartTime, timeZone)))
	sb.WriteString(fmt.Sprintf("   ⏰ End: %s\n", formatTime(b.EndTime, timeZone)))
	sb.WriteString(fmt.Sprintf("   🆔 Booking ID: %d", b.ID))
	return sb.String()
}

// FormatBookingList renders an attendee's bookings as a chat message.
func FormatBookingList(attendeeEmail string, bookings []calcom.Booking) string {
	if len(bookings) == 0 {
		return fmt.Sprintf("No meetings found for %s.", attendeeEmail)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 Scheduled Cal.com Events for %s:\n\n", attendeeEmail))
	for _, b := range bookings {
		sb.WriteString(fmt.Sprintf("📌 %s\n", b.Title))
		sb.WriteString(fmt.Sprintf("   ⏰ Start: %s\n", b.StartTime.Format(time.RFC1123)))
		sb.WriteString(fmt.Sprintf("   ⏰ End: %s\n", b.EndTime.Format(time.RFC1123)))
		for _, att := range b.Attendees {
			sb.WriteString(fmt.Sprintf("   👥 Attendee: %s (%s)\n", att.Name, att.Email))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatCancellation renders a successful cancellation as a chat message.
func FormatCancellation(b *calcom.Booking, date, start, timeZone string) string {
	return fmt.Sprintf("Successfully cancelled meeting '%s' scheduled for %s at %s %s.",
		b.Title, date, start, timeZone)
}

// FormatSlots renders available start times as a chat message, grouped by
// day in the requested timezone.
func FormatSlots(dateFrom, dateTo, timeZone string, slots []calcom.Slot) string {
	if len(slots) == 0 {
		return fmt.Sprintf("No available slots between %s and %s.", dateFrom, dateTo)
	}

	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		loc = time.UTC
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Available slots between %s and %s (%s):\n", dateFrom, dateTo, loc))

	lastDay := ""
	for _, slot := range slots {
		local := slot.Time.In(loc)
		day := local.Format("Monday, 2006-01-02")
		if day != lastDay {
			sb.WriteString(fmt.Sprintf("\n📅 %s\n", day))
			lastDay = day
		}
		sb.WriteString(fmt.Sprintf("   ⏰ %s\n", local.Format("15:04")))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatTime(t time.Time, timeZone string) string {
	if loc, err := time.LoadLocation(timeZone); err == nil {
		return t.In(loc).Format(time.RFC1123)
	}
	return t.Format(time.RFC1123)
}
