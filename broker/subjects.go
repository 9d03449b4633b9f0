package broker

import "strings"

const (
	// NoteEventsPrefix is followed by the event name, e.g. notes.events.note.created.
	NoteEventsPrefix = "notes.events."
	// NoteEventsAll subscribes to every note event.
	NoteEventsAll = NoteEventsPrefix + ">"
	// WebhookSubject carries payloads accepted by the task-scheduler webhook.
	WebhookSubject = "notes.webhooks"
)

// SubjectForEvent maps an outbox event name onto its broker subject.
func SubjectForEvent(event string) string {
	return NoteEventsPrefix + event
}

// SubjectMatches reports whether subject matches pattern using NATS wildcard rules:
// "*" matches exactly one token and a trailing ">" matches one or more tokens.
func SubjectMatches(pattern, subject string) bool {
	pt := strings.Split(pattern, ".")
	st := strings.Split(subject, ".")

	for i, token := range pt {
		if token == ">" {
			return i == len(pt)-1 && len(st) > i
		}
		if i >= len(st) {
			return false
		}
		if token != "*" && token != st[i] {
			return false
		}
	}
	return len(pt) == len(st)
}
