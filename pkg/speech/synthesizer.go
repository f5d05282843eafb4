package speech

import "context"

// Synthesizer converts text to audio with a given voice and returns the
// file path of the resulting audio artifact. The caller is responsible
// for deleting the returned file, on success and failure paths alike.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) (filePath string, err error)
	IsAvailable() bool
}
