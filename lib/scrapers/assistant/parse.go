package assistant

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"voicesurvey-backend/lib/interaction"
)

// google prefixes the response body with a fixed-width anti-JSON guard
// that has to be lopped off before parsing
const antiJsonPrefixLen = 5

// ErrWrongSource marks entries recorded by something other than the
// voice speaker product line (phone queries, typed searches, ...).
var ErrWrongSource = fmt.Errorf("activity entry does not come from a voice speaker")

// positional offsets inside one activity entry. The format is an
// unversioned sparse array; these indices are the only contract we
// have with it, so they live here and nowhere else.
const (
	offsetTimestamp    = 4
	offsetTranscript   = 9
	offsetSourceDevice = 19
	offsetRecordingUrl = 24
)

// product marker looked for inside the source-device tag
const voiceSpeakerMarker = "Google Home"

type Page struct {
	Interactions []interaction.Interaction
	// opaque continuation token, empty when drained
	Cursor string
	// present when the activity list itself was null
	EmptyList bool
	// per-entry rejections
	Errors []error
}

// ParsePage decodes one raw response body. A malformed top-level shape
// is a hard error because it means the whole page is unusable; a
// malformed single entry only adds to Page.Errors.
func ParsePage(raw string) (Page, error) {
	if len(raw) < antiJsonPrefixLen {
		return Page{}, fmt.Errorf("response body shorter than the anti-JSON prefix")
	}

	var top []any
	err := json.Unmarshal([]byte(raw[antiJsonPrefixLen:]), &top)
	if err != nil {
		return Page{}, fmt.Errorf("failed to parse activity response: %w", err)
	}
	if len(top) != 2 {
		return Page{}, fmt.Errorf("expected a 2-element response, got %d elements", len(top))
	}

	page := Page{}

	if top[1] != nil {
		cursor, ok := top[1].(string)
		if !ok {
			return Page{}, fmt.Errorf("continuation token is not a string")
		}
		page.Cursor = cursor
	}

	if top[0] == nil {
		page.EmptyList = true
		return page, nil
	}
	entries, ok := top[0].([]any)
	if !ok {
		return Page{}, fmt.Errorf("activity list is not an array")
	}

	for _, raw := range entries {
		entry, ok := raw.([]any)
		if !ok {
			page.Errors = append(page.Errors, fmt.Errorf("activity entry is not an array"))
			continue
		}
		i, err := fromArray(entry)
		if err != nil {
			page.Errors = append(page.Errors, err)
			continue
		}
		page.Interactions = append(page.Interactions, i)
	}
	return page, nil
}

func at(entry []any, offset int) any {
	if offset >= len(entry) {
		return nil
	}
	return entry[offset]
}

// fromArray decodes a single sparse positional entry into the common
// record shape, validating every field it touches.
func fromArray(entry []any) (interaction.Interaction, error) {
	transcriptField, ok := at(entry, offsetTranscript).([]any)
	if !ok || len(transcriptField) == 0 {
		return interaction.Interaction{}, fmt.Errorf("entry has no transcript field")
	}
	transcript, ok := transcriptField[0].(string)
	if !ok {
		return interaction.Interaction{}, fmt.Errorf("entry transcript is not a string")
	}

	timestampField, ok := at(entry, offsetTimestamp).(string)
	if !ok {
		return interaction.Interaction{}, fmt.Errorf("entry has no timestamp field")
	}
	timestamp, err := ParseTimestamp(timestampField)
	if err != nil {
		return interaction.Interaction{}, err
	}

	if err := assertVoiceSpeaker(at(entry, offsetSourceDevice)); err != nil {
		return interaction.Interaction{}, err
	}

	i := interaction.Interaction{
		Transcript: transcript,
		Timestamp:  timestamp,
	}
	if urlField, ok := at(entry, offsetRecordingUrl).([]any); ok && len(urlField) > 0 {
		if url, ok := urlField[0].(string); ok && url != "" {
			i.Url = url
			i.RecordingAvailable = true
		}
	}
	return i, nil
}

// ParseTimestamp converts a microsecond numeric string into integer
// milliseconds since epoch.
func ParseTimestamp(s string) (int64, error) {
	micros, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("timestamp is not a number: %q", s)
	}
	return micros / 1000, nil
}

// assertVoiceSpeaker fails with ErrWrongSource unless the nested
// source-device tag mentions the voice speaker product line.
func assertVoiceSpeaker(field any) error {
	outer, ok := field.([]any)
	if !ok {
		return ErrWrongSource
	}
	for _, rawInner := range outer {
		inner, ok := rawInner.([]any)
		if !ok {
			continue
		}
		for _, v := range inner {
			if s, ok := v.(string); ok && strings.Contains(s, voiceSpeakerMarker) {
				return nil
			}
		}
	}
	return ErrWrongSource
}
