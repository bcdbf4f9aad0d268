package providers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Scott-fo/t3-clone/pkg/errorx"
)

func TestRunSSEForwardsDeltasAndStopsOnDone(t *testing.T) {
	input := "data: chunk-one\n\ndata: chunk-two\n\ndata: DONE\n\n"

	var got []string
	parse := func(raw []byte) (ParsedEvent, error) {
		data := string(raw)
		if data == "DONE" {
			return ParsedEvent{Done: true, Result: StreamResult{Content: "chunk-onechunk-two"}}, nil
		}
		return ParsedEvent{Deltas: []Delta{{Kind: DeltaText, Text: data}}}, nil
	}

	result, err := RunSSE(strings.NewReader(input), func(d Delta) { got = append(got, d.Text) }, parse)

	require.NoError(t, err)
	require.Equal(t, []string{"chunk-one", "chunk-two"}, got)
	require.Equal(t, "chunk-onechunk-two", result.Content)
}

func TestRunSSESkipsSentinelAndEmptyPayloads(t *testing.T) {
	input := "data: [DONE]\n\ndata: \n\ndata: real\n\n"

	calls := 0
	parse := func(raw []byte) (ParsedEvent, error) {
		calls++
		return ParsedEvent{Done: true, Result: StreamResult{Content: string(raw)}}, nil
	}

	result, err := RunSSE(strings.NewReader(input), func(Delta) {}, parse)

	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.Equal(t, "real", result.Content)
}

func TestRunSSEAbortsOnProviderStreamFailure(t *testing.T) {
	input := "data: boom\n\n"

	parse := func(raw []byte) (ParsedEvent, error) {
		return ParsedEvent{}, errorx.New(errorx.ProviderStreamFailure, "upstream failed")
	}

	_, err := RunSSE(strings.NewReader(input), func(Delta) {}, parse)

	require.Error(t, err)
	require.Equal(t, errorx.ProviderStreamFailure, errorx.KindOf(err))
}

func TestRunSSESkipsMalformedEventWithoutAborting(t *testing.T) {
	input := "data: not-json\n\ndata: ok\n\n"

	parse := func(raw []byte) (ParsedEvent, error) {
		if string(raw) == "not-json" {
			return ParsedEvent{}, errorx.New(errorx.Internal, "decode failure")
		}
		return ParsedEvent{Done: true, Result: StreamResult{Content: "ok"}}, nil
	}

	result, err := RunSSE(strings.NewReader(input), func(Delta) {}, parse)

	require.NoError(t, err)
	require.Equal(t, "ok", result.Content)
}
