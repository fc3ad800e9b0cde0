package extract

import (
	"fmt"
	"time"

	"textcal/internal/event"
)

// systemPromptFormat instructs the model to answer with nothing but the
// event JSON. The embedded wall-clock time lets it resolve relative
// expressions like "tomorrow".
const systemPromptFormat = `You are an expert assistant that converts natural language text into a structured JSON object
for a calendar event. The current date and time is %s.
Analyze the user's text and extract the event details.

The JSON object must have the following structure:
- "summary": (string) The title or name of the event.
- "start": (string) The start time in "YYYY-MM-DD HH:MM:SS" format.
- "end": (string) The end time in "YYYY-MM-DD HH:MM:SS" format. If no duration is specified, assume 1 hour.
- "location": (string, optional) The event's location.
- "description": (string, optional) A detailed description of the event.
- "rrule": (string, optional) A recurrence rule (e.g., "FREQ=WEEKLY;BYDAY=MO" for every Monday).

If a value is not present in the text, omit the key from the JSON object.
Always respond with ONLY the JSON object and nothing else.`

// SystemPrompt renders the instruction template for the given wall-clock
// time. now is explicit so the template stays testable with a fixed clock.
func SystemPrompt(now time.Time) string {
	return fmt.Sprintf(systemPromptFormat, now.Format(event.TimeLayout))
}
