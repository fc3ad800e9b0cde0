// Package extract turns free text into a structured event record by way of
// the configured model.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"textcal/internal/event"
	"textcal/internal/llm"
)

// ErrEmptyInput rejects submissions that are empty after trimming.
var ErrEmptyInput = errors.New("no event text provided")

// MissingFieldError reports a payload that decoded but lacks one or more of
// the required keys.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return "model response is missing required fields: " + strings.Join(e.Fields, ", ")
}

// Extractor resolves free text into an event record with a single model
// request per call.
type Extractor struct {
	adapter llm.Adapter
	now     func() time.Time
}

func New(adapter llm.Adapter) *Extractor {
	return &Extractor{adapter: adapter, now: time.Now}
}

// Extract sends the text with the instruction prompt and decodes the reply.
// On any error the returned record is zero; no partial result is handed out.
func (x *Extractor) Extract(ctx context.Context, text string) (event.Extracted, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return event.Extracted{}, ErrEmptyInput
	}

	payload, err := x.adapter.Generate(ctx, SystemPrompt(x.now()), text)
	if err != nil {
		return event.Extracted{}, err
	}

	var ev event.Extracted
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return event.Extracted{}, &llm.MalformedResponseError{Layer: llm.LayerPayload, Err: err}
	}

	if missing := ev.MissingFields(); len(missing) > 0 {
		return event.Extracted{}, &MissingFieldError{Fields: missing}
	}

	log.Debug().Str("summary", ev.Summary).Str("start", ev.Start).Str("end", ev.End).Msg("event extracted")
	return ev, nil
}
