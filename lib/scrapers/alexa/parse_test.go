package alexa

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleAudioId = "A3S5BH2HU6VAYF:1.0/2018/10/13/20/G090LF1181840BFC/57:10::TNIH_2V.a9baef64-be15-4776-8e84-f1830509730bZXV/1"

func fragment(id, transcript string) string {
	return fmt.Sprintf(`
		<div class="activityRow">
			<audio id="audio-%s">
				<source src="ignored"></source>
			</audio>
			<div class="summaryCss">%s</div>
		</div>`, id, transcript)
}

func TestParseActivity(t *testing.T) {
	raw := fragment(sampleAudioId, "when is kingdom hearts three coming out")

	interactions, errs := ParseActivity(raw)
	require.Empty(t, errs)
	require.Len(t, interactions, 1)

	i := interactions[0]
	require.True(t, strings.HasSuffix(i.Url, sampleAudioId))
	require.True(t, strings.HasPrefix(i.Url, "https://www.amazon.com/hz/mycd/playOption?id="))
	require.Equal(t, "when is kingdom hearts three coming out", i.Transcript)
	require.True(t, i.RecordingAvailable)
}

func TestParseActivityCollapsesMarkupWhitespace(t *testing.T) {
	raw := fragment(sampleAudioId, "turn on\n\t\t\t\tthe kitchen lights")

	interactions, errs := ParseActivity(raw)
	require.Empty(t, errs)
	require.Len(t, interactions, 1)
	require.Equal(t, "turn on the kitchen lights", interactions[0].Transcript)
}

func TestParseActivitySkipsMalformedIds(t *testing.T) {
	malformed := []string{
		"_" + sampleAudioId,
		strings.Replace(sampleAudioId, "/2018/", ":/2018/", 1),
		"A3S5BH2HU6VAYF",
		"",
	}

	for _, id := range malformed {
		interactions, errs := ParseActivity(fragment(id, "some transcript"))
		require.Empty(t, interactions, "id %q should be rejected", id)
		if id != "" {
			// the empty id never matches the fragment regex at all
			require.Len(t, errs, 1)
		}
	}
}

func TestParseActivityMalformedEntryDoesNotAbortBatch(t *testing.T) {
	raw := fragment(sampleAudioId, "first transcript") +
		fragment("_"+sampleAudioId, "broken entry") +
		fragment(sampleAudioId, "third transcript")

	interactions, errs := ParseActivity(raw)
	require.Len(t, interactions, 2)
	require.Len(t, errs, 1)
	require.Equal(t, "first transcript", interactions[0].Transcript)
	require.Equal(t, "third transcript", interactions[1].Transcript)
}

func TestParseActivityEmptyDocument(t *testing.T) {
	interactions, errs := ParseActivity("<html><body>no activity</body></html>")
	require.Empty(t, interactions)
	require.Empty(t, errs)
}
