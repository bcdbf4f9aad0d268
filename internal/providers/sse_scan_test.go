package providers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScanSSESplitsOnBlankLine(t *testing.T) {
	input := "event: message_start\ndata: {\"a\":1}\n\ndata: {\"b\":2}\n\n"

	var events []rawEvent
	err := scanSSE(strings.NewReader(input), func(e rawEvent) {
		events = append(events, e)
	})

	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "message_start", events[0].event)
	require.Equal(t, `{"a":1}`, events[0].data)
	require.Equal(t, "", events[1].event)
	require.Equal(t, `{"b":2}`, events[1].data)
}

func TestScanSSEJoinsMultilineData(t *testing.T) {
	input := "data: line one\ndata: line two\n\n"

	var events []rawEvent
	err := scanSSE(strings.NewReader(input), func(e rawEvent) {
		events = append(events, e)
	})

	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "line one\nline two", events[0].data)
}

func TestScanSSEIgnoresCommentsAndIDLines(t *testing.T) {
	input := ": keepalive\nid: 5\ndata: hello\n\n"

	var events []rawEvent
	err := scanSSE(strings.NewReader(input), func(e rawEvent) {
		events = append(events, e)
	})

	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "hello", events[0].data)
}
