// Package speech renders assistant replies to audio with Gemini TTS.
package speech

import (
	"context"
	"regexp"
	"strings"
)

// Renderer turns text into a base64 WAV payload plus its MIME type.
type Renderer interface {
	Render(ctx context.Context, text string) (data string, mimeType string, err error)
}

var (
	idTagPattern     = regexp.MustCompile(`(?i)\[ID:\s*[a-f0-9\-]+\]`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
	markdownReplacer = strings.NewReplacer("**", "", "__", "", "*", "", "_", "", "•", "", "✅", "", "❌", "", "📅", "")
)

// CleanText strips identifiers, markdown markup and decorations that read
// badly as speech.
func CleanText(text string) string {
	text = idTagPattern.ReplaceAllString(text, "")
	text = markdownReplacer.Replace(text)
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
