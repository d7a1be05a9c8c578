package transcription

import "strings"

var mimeExtensions = map[string]string{
	"audio/webm":  ".webm",
	"audio/ogg":   ".ogg",
	"audio/mpeg":  ".mp3",
	"audio/mp3":   ".mp3",
	"audio/mp4":   ".m4a",
	"audio/m4a":   ".m4a",
	"audio/wav":   ".wav",
	"audio/x-wav": ".wav",
	"audio/flac":  ".flac",
}

// FileNameFor returns a synthetic file name for an audio payload. Remote
// backends detect the container format from the extension, so the name has to
// match the mime type of the bytes.
func FileNameFor(mimeType string) string {
	base := mimeType
	if i := strings.Index(base, ";"); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSpace(strings.ToLower(base))
	if ext, ok := mimeExtensions[base]; ok {
		return "audio" + ext
	}
	return "audio.webm"
}
