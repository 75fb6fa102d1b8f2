// Package interaction holds the canonical voice-assistant record shape
// shared by every provider integration, plus the filtering, ordering
// and sampling helpers that prepare records for presentation.
package interaction

// Interaction is one normalized voice-assistant request.
//
// If RecordingAvailable is false, Url is empty; if true, Url is
// non-empty and well-formed for the originating provider.
type Interaction struct {
	// playable-audio locator, empty when no recording exists
	Url string
	// human-readable text of the spoken request
	Transcript string
	// interaction time in milliseconds since epoch, 0 when the
	// provider's export format carries no timestamps
	Timestamp          int64
	RecordingAvailable bool
}
