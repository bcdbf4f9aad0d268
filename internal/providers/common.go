package providers

import (
	"io"

	"github.com/Scott-fo/t3-clone/pkg/errorx"
	"github.com/Scott-fo/t3-clone/pkg/logger"
)

// TitlePrompt is the fixed template every variant's GenerateTitle sends
// non-streaming (§4.1).
func TitlePrompt(body string) string {
	return `Summarize the following message into a short, concise title of 5 words or less, without quotation marks: "` + body + `"`
}

// ParsedEvent is what a variant's per-event parser produces: zero or more
// deltas to forward, and optionally a terminal Result once the stream
// completes normally.
type ParsedEvent struct {
	Deltas []Delta
	Done   bool
	Result StreamResult
}

// RunSSE drives the uniform stream algorithm of §4.1 over r: scan
// newline-delimited events, skip empty payloads and the "[DONE]" sentinel,
// hand each event's data to parse, forward deltas to sink, stop on Done or
// on a ProviderStreamFailure raised by parse. A parse error of any other
// kind (malformed JSON) is logged and the event is skipped, never aborting
// the stream.
func RunSSE(r io.Reader, sink DeltaSink, parse func(data []byte) (ParsedEvent, error)) (StreamResult, error) {
	var result StreamResult
	var streamErr error
	done := false

	scanErr := scanSSE(r, func(evt rawEvent) {
		if done || streamErr != nil {
			return
		}
		if evt.data == "" || evt.data == "[DONE]" {
			return
		}

		parsed, err := parse([]byte(evt.data))
		if err != nil {
			if errorx.KindOf(err) == errorx.ProviderStreamFailure {
				streamErr = err
				return
			}
			logger.Warn("providers: skipping unparseable event: %v", err)
			return
		}

		for _, d := range parsed.Deltas {
			sink(d)
		}
		if parsed.Done {
			result = parsed.Result
			done = true
		}
	})

	if streamErr != nil {
		return StreamResult{}, streamErr
	}
	if scanErr != nil {
		return StreamResult{}, errorx.Wrap(errorx.ProviderStreamFailure, scanErr, "sse transport error")
	}
	if !done {
		return StreamResult{}, errorx.New(errorx.ProviderStreamFailure, "stream ended without a completion event")
	}
	return result, nil
}
