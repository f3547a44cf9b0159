package portabletext

import (
	"strings"

	"github.com/continuous-intelligence/cIV/internal/models"
)

// PlainText flattens blocks to text, one paragraph per block. Images are
// dropped; code blocks keep their source.
func PlainText(blocks models.Blocks) string {
	parts := make([]string, 0, len(blocks))
	for _, blk := range blocks {
		var text string
		switch blk.Type {
		case models.BlockTypeImage:
			continue
		case models.BlockTypeCodeBlock:
			text = blk.Code
		default:
			var b strings.Builder
			for _, sp := range blk.Children {
				b.WriteString(sp.Text)
			}
			text = b.String()
			if text == "" {
				text = blk.Text
			}
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

func WordCount(blocks models.Blocks) int {
	return len(strings.Fields(PlainText(blocks)))
}

// Excerpt returns at most n runes of the plain text, cut at a word boundary.
func Excerpt(blocks models.Blocks, n int) string {
	text := strings.Join(strings.Fields(PlainText(blocks)), " ")
	runes := []rune(text)
	if n <= 0 || len(runes) <= n {
		return text
	}
	cut := string(runes[:n])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
