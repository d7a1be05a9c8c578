package transcription

// Request holds parameters for a transcription call.
type Request struct {
	// Audio is the raw audio payload (a whole recording or one piece).
	Audio []byte `json:"-"`
	// MimeType is the audio container type (e.g. "audio/webm").
	MimeType string `json:"mime_type"`
	// Prompt biases the transcription (vocabulary section included).
	Prompt string `json:"prompt,omitempty"`
	// Model is the transcription model to use.
	Model string `json:"model,omitempty"`
}

// Response holds the result of a transcription call.
type Response struct {
	// Text is the full transcription text.
	Text string `json:"text"`
	// Model is the model that produced the text.
	Model string `json:"model,omitempty"`
}
