package render

import (
	"fmt"
	"strings"

	"github.com/shoushou-fitness/clubbot/internal/domain"
)

// PlainText flattens a payload for text-only channels. Buttons become lines
// telling the user what to send.
func PlainText(p domain.ReplyPayload) string {
	var b strings.Builder
	switch p.Type {
	case domain.PayloadText:
		return p.Text

	case domain.PayloadButtonMenu, domain.PayloadConfirmPrompt:
		if p.Title != "" {
			b.WriteString(p.Title)
			b.WriteString("\n")
		}
		b.WriteString(p.Text)
		for _, a := range p.Actions {
			writeAction(&b, a)
		}

	case domain.PayloadCarousel:
		for i, bubble := range p.Bubbles {
			if i > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString(bubble.Title)
			for _, f := range bubble.Fields {
				fmt.Fprintf(&b, "\n%s: %s", f.Label, f.Value)
			}
			for _, a := range bubble.Footer {
				writeAction(&b, a)
			}
		}

	case domain.PayloadImageCarousel:
		b.WriteString(p.AltText)
		for _, c := range p.Columns {
			writeAction(&b, c.Action)
		}
	}
	return b.String()
}

func writeAction(b *strings.Builder, a domain.MessageAction) {
	fmt.Fprintf(b, "\n• %s → send \"%s\"", a.Label, a.Text)
}
