package alexa

import (
	"fmt"
	"regexp"
	"voicesurvey-backend/lib/htmlutil"
	"voicesurvey-backend/lib/interaction"
)

const playbackUrlPrefix = "https://www.amazon.com/hz/mycd/playOption?id="

// one transcript fragment: an audio tag whose id embeds the playback
// handle, followed by the spoken text in a summary div
var transcriptFragmentRegex = regexp.MustCompile(
	`(?s)<audio id="audio-([^"]+)">.*?<div class="summaryCss">\s*(.*?)\s*</div>`,
)

// grammar of a playback handle, e.g.
// A3S5BH2HU6VAYF:1.0/2018/10/13/20/G090LF1181840BFC/57:10::TNIH_2V.a9baef64-be15-4776-8e84-f1830509730bZXV/1
// device serial, format version, date path, recorder serial, offsets,
// then a tagged uuid and an index. Handles that deviate occur in the
// wild and must be skipped, not fatal.
var audioIdRegex = regexp.MustCompile(
	`^[A-Za-z0-9]+:[0-9.]+/\d{4}/\d{2}/\d{2}/\d{2}/[A-Za-z0-9]+/\d{2}:\d{2}::[A-Za-z0-9_]+\.[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}[A-Za-z0-9]*/\d+$`,
)

// ParseActivity converts the raw transcript markup into interactions.
// Fragments with malformed playback handles are skipped with a
// collected error; a batch never fails as a whole. Amazon's export has
// no recording-less entries and no timestamps.
func ParseActivity(raw string) ([]interaction.Interaction, []error) {
	var out []interaction.Interaction
	var errs []error

	for _, groups := range transcriptFragmentRegex.FindAllStringSubmatch(raw, -1) {
		id := groups[1]
		transcript := htmlutil.CleanText(groups[2])

		if !audioIdRegex.MatchString(id) {
			errs = append(errs, fmt.Errorf("malformed audio id: %q", id))
			continue
		}

		out = append(out, interaction.Interaction{
			Url:                playbackUrlPrefix + id,
			Transcript:         transcript,
			RecordingAvailable: true,
		})
	}

	return out, errs
}
