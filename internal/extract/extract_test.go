package extract

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"textcal/internal/event"
	"textcal/internal/llm"
)

type stubAdapter struct {
	payload string
	err     error

	gotSystem string
	gotPrompt string
	calls     int
}

func (s *stubAdapter) Generate(_ context.Context, system, prompt string) (string, error) {
	s.calls++
	s.gotSystem = system
	s.gotPrompt = prompt
	return s.payload, s.err
}

func newFixedExtractor(a llm.Adapter) *Extractor {
	x := New(a)
	x.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.Local) }
	return x
}

func TestSystemPromptEmbedsClock(t *testing.T) {
	p := SystemPrompt(time.Date(2024, 6, 1, 9, 30, 0, 0, time.Local))
	require.Contains(t, p, "The current date and time is 2024-06-01 09:30:00.")
	require.Contains(t, p, `"YYYY-MM-DD HH:MM:SS" format`)
	require.Contains(t, p, "ONLY the JSON object")
}

func TestExtractSuccess(t *testing.T) {
	stub := &stubAdapter{payload: `{"summary":"Team sync","start":"2024-06-02 10:00:00","end":"2024-06-02 10:30:00","location":"Room 4"}`}
	x := newFixedExtractor(stub)

	ev, err := x.Extract(context.Background(), "Team sync tomorrow 10am for 30 minutes")
	require.NoError(t, err)
	require.Equal(t, event.Extracted{
		Summary:  "Team sync",
		Start:    "2024-06-02 10:00:00",
		End:      "2024-06-02 10:30:00",
		Location: "Room 4",
	}, ev)

	require.Equal(t, "Team sync tomorrow 10am for 30 minutes", stub.gotPrompt)
	require.Contains(t, stub.gotSystem, "2024-06-01 09:00:00")
}

func TestExtractTrimsAndRejectsEmptyInput(t *testing.T) {
	stub := &stubAdapter{payload: `{}`}
	x := newFixedExtractor(stub)

	_, err := x.Extract(context.Background(), "   \n\t ")
	require.ErrorIs(t, err, ErrEmptyInput)
	require.Zero(t, stub.calls, "no request for empty input")
}

func TestExtractMissingFields(t *testing.T) {
	stub := &stubAdapter{payload: `{"summary":"Team sync","start":"2024-06-02 10:00:00"}`}
	x := newFixedExtractor(stub)

	ev, err := x.Extract(context.Background(), "Team sync tomorrow")
	var merr *MissingFieldError
	require.ErrorAs(t, err, &merr)
	require.Equal(t, []string{"end"}, merr.Fields)
	require.Zero(t, ev, "no partial record alongside an error")
}

func TestExtractMalformedPayload(t *testing.T) {
	stub := &stubAdapter{payload: `{"summary": "Team sync",`}
	x := newFixedExtractor(stub)

	_, err := x.Extract(context.Background(), "Team sync tomorrow")
	var merr *llm.MalformedResponseError
	require.ErrorAs(t, err, &merr)
	require.Equal(t, llm.LayerPayload, merr.Layer)
}

func TestExtractPropagatesAdapterErrors(t *testing.T) {
	wantErr := &llm.ServiceUnreachableError{Endpoint: "http://localhost:11434/api/generate", Err: errors.New("refused")}
	stub := &stubAdapter{err: wantErr}
	x := newFixedExtractor(stub)

	_, err := x.Extract(context.Background(), "Team sync tomorrow")
	var serr *llm.ServiceUnreachableError
	require.ErrorAs(t, err, &serr)
}

func TestExtractSingleAttempt(t *testing.T) {
	stub := &stubAdapter{err: errors.New("boom")}
	x := newFixedExtractor(stub)

	_, _ = x.Extract(context.Background(), "Team sync tomorrow")
	require.Equal(t, 1, stub.calls)
}

func TestEnvelopeAndPayloadLayersDistinguishable(t *testing.T) {
	envErr := &llm.MalformedResponseError{Layer: llm.LayerEnvelope, Err: errors.New("bad envelope")}
	payloadStub := &stubAdapter{payload: "not json at all"}

	_, err := newFixedExtractor(&stubAdapter{err: envErr}).Extract(context.Background(), "x")
	var got *llm.MalformedResponseError
	require.ErrorAs(t, err, &got)
	require.Equal(t, llm.LayerEnvelope, got.Layer)

	_, err = newFixedExtractor(payloadStub).Extract(context.Background(), "x")
	require.ErrorAs(t, err, &got)
	require.Equal(t, llm.LayerPayload, got.Layer)
	require.True(t, strings.Contains(got.Error(), "payload"))
}
