package hls

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAudioLanguages(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		want     []string
	}{
		{
			name: "two languages in discovery order",
			manifest: `#EXTM3U
#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID="audio",NAME="Italian",LANGUAGE="it",DEFAULT=YES,URI="/a/it.m3u8"
#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID="audio",NAME="English",LANGUAGE="en",URI="/a/en.m3u8"
#EXT-X-STREAM-INF:BANDWIDTH=1200000,AUDIO="audio"
/v/720.m3u8
`,
			want: []string{"IT", "EN"},
		},
		{
			name: "duplicates suppressed",
			manifest: `#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID="lo",LANGUAGE="it"
#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID="hi",LANGUAGE="IT"
#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID="hi",LANGUAGE="en"`,
			want: []string{"IT", "EN"},
		},
		{
			name:     "subtitle renditions ignored",
			manifest: "#EXT-X-MEDIA:TYPE=SUBTITLES,GROUP-ID=\"subs\",LANGUAGE=\"fr\"\n",
			want:     nil,
		},
		{
			name:     "audio without language ignored",
			manifest: "#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID=\"audio\",NAME=\"Main\"\n",
			want:     nil,
		},
		{
			name:     "indented tag does not match",
			manifest: "  #EXT-X-MEDIA:TYPE=AUDIO,LANGUAGE=\"de\"\n",
			want:     nil,
		},
		{
			name:     "crlf line endings",
			manifest: "#EXTM3U\r\n#EXT-X-MEDIA:TYPE=AUDIO,LANGUAGE=\"es\"\r\n",
			want:     []string{"ES"},
		},
		{
			name:     "empty",
			manifest: "",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AudioLanguages(tt.manifest))
		})
	}
}

func TestAudioLanguages_LongLines(t *testing.T) {
	long := "#EXT-X-MEDIA:TYPE=AUDIO,NAME=\"" + strings.Repeat("x", 100*1024) + "\",LANGUAGE=\"ja\""
	assert.Equal(t, []string{"JA"}, AudioLanguages(long))
}

func TestAudioLanguages_HugeLineBeforeAudio(t *testing.T) {
	manifest := "#EXTM3U\n" +
		"#EXT-X-SESSION-DATA:DATA-ID=\"com.example.blob\",VALUE=\"" + strings.Repeat("a", 2<<20) + "\"\n" +
		"#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID=\"audio\",LANGUAGE=\"it\"\n" +
		"#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID=\"audio\",LANGUAGE=\"en\"\n"

	assert.Equal(t, []string{"IT", "EN"}, AudioLanguages(manifest))
}
