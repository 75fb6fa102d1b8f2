package assistant

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const antiJsonPrefix = ")]}'\n"

func TestParseTimestamp(t *testing.T) {
	ms, err := ParseTimestamp("1545740870000000")
	require.NoError(t, err)
	require.Equal(t, int64(1545740870000), ms)

	_, err = ParseTimestamp("not a timestamp")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a number")
}

// builds one positional activity entry the way the console emits them
func makeEntry(timestamp, transcript, audioUrl any, device any) []any {
	entry := make([]any, 30)
	entry[offsetTimestamp] = timestamp
	entry[offsetTranscript] = transcript
	entry[offsetSourceDevice] = device
	entry[offsetRecordingUrl] = audioUrl
	return entry
}

func speakerDevice() any {
	return []any{[]any{"Google Home", "some-device-id"}}
}

func encodePage(entries []any, cursor any) string {
	payload, err := json.Marshal([]any{entries, cursor})
	if err != nil {
		panic(err)
	}
	return antiJsonPrefix + string(payload)
}

func TestParsePage(t *testing.T) {
	raw := encodePage([]any{
		makeEntry(
			"1545740870000000",
			[]any{"turn off the living room lights"},
			[]any{"https://myactivity.google.com/history/audio/play/abc123"},
			speakerDevice(),
		),
		makeEntry(
			"1545740871000000",
			[]any{"what time is it"},
			nil,
			speakerDevice(),
		),
	}, "cursor-1")

	page, err := ParsePage(raw)
	require.NoError(t, err)
	require.Empty(t, page.Errors)
	require.Equal(t, "cursor-1", page.Cursor)
	require.False(t, page.EmptyList)
	require.Len(t, page.Interactions, 2)

	first := page.Interactions[0]
	require.Equal(t, "turn off the living room lights", first.Transcript)
	require.Equal(t, int64(1545740870000), first.Timestamp)
	require.True(t, first.RecordingAvailable)
	require.Equal(t, "https://myactivity.google.com/history/audio/play/abc123", first.Url)

	second := page.Interactions[1]
	require.False(t, second.RecordingAvailable)
	require.Empty(t, second.Url)
}

func TestParsePageNullList(t *testing.T) {
	page, err := ParsePage(encodePage(nil, nil))
	require.NoError(t, err)
	require.True(t, page.EmptyList)
	require.Empty(t, page.Interactions)
	require.Empty(t, page.Cursor)
}

func TestParsePageHardErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"too short", ")]}"},
		{"not json", antiJsonPrefix + "<html>an error page</html>"},
		{"wrong element count", antiJsonPrefix + `[[], "x", "y"]`},
		{"list not an array", antiJsonPrefix + `[{"a": 1}, null]`},
		{"cursor not a string", antiJsonPrefix + `[[], 42]`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParsePage(c.raw)
			require.Error(t, err)
		})
	}
}

func TestParsePageRejectsSingleEntries(t *testing.T) {
	goodEntry := makeEntry(
		"1545740870000000",
		[]any{"play some music"},
		nil,
		speakerDevice(),
	)

	cases := []struct {
		name  string
		entry any
	}{
		{"missing transcript", makeEntry("1545740870000000", nil, nil, speakerDevice())},
		{"transcript not an array", makeEntry("1545740870000000", "bare string", nil, speakerDevice())},
		{"transcript element not a string", makeEntry("1545740870000000", []any{42.0}, nil, speakerDevice())},
		{"missing timestamp", makeEntry(nil, []any{"hello"}, nil, speakerDevice())},
		{"non-numeric timestamp", makeEntry("not a timestamp", []any{"hello"}, nil, speakerDevice())},
		{"wrong source device", makeEntry("1545740870000000", []any{"hello"}, nil, []any{[]any{"Pixel 3"}})},
		{"no source device at all", makeEntry("1545740870000000", []any{"hello"}, nil, nil)},
		{"entry not an array", "garbage"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			page, err := ParsePage(encodePage([]any{goodEntry, c.entry}, nil))
			require.NoError(t, err, "a bad entry must never abort the batch")
			require.Len(t, page.Errors, 1)
			require.Len(t, page.Interactions, 1)
			require.Equal(t, "play some music", page.Interactions[0].Transcript)
		})
	}
}

func TestAssertVoiceSpeaker(t *testing.T) {
	require.NoError(t, assertVoiceSpeaker(speakerDevice()))
	require.ErrorIs(t, assertVoiceSpeaker([]any{[]any{"Pixel 3"}}), ErrWrongSource)
	require.ErrorIs(t, assertVoiceSpeaker(nil), ErrWrongSource)
	require.ErrorIs(t, assertVoiceSpeaker("Google Home"), ErrWrongSource)
}

func TestParsePageTimestampConversion(t *testing.T) {
	micros := time.Date(2018, 12, 25, 12, 27, 50, 0, time.UTC).UnixMicro()
	raw := encodePage([]any{
		makeEntry(fmt.Sprintf("%d", micros), []any{"merry christmas"}, nil, speakerDevice()),
	}, nil)

	page, err := ParsePage(raw)
	require.NoError(t, err)
	require.Len(t, page.Interactions, 1)
	require.Equal(t, micros/1000, page.Interactions[0].Timestamp)
}

func TestParsePageEmptyRecordingUrl(t *testing.T) {
	raw := encodePage([]any{
		makeEntry("1545740870000000", []any{"what time is it"}, []any{""}, speakerDevice()),
	}, nil)

	page, err := ParsePage(raw)
	require.NoError(t, err)
	require.Empty(t, page.Errors)
	require.Len(t, page.Interactions, 1)
	require.False(t, page.Interactions[0].RecordingAvailable)
	require.Empty(t, page.Interactions[0].Url)
}
