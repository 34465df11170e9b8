package imagegen

import (
	"context"
	"fmt"
	"hash/fnv"
	"html"
)

var palette = []string{"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7", "#DDA0DD"}

// PlaceholderGenerator renders an SVG placeholder for a prompt. Needs no API,
// always succeeds; the color is derived from the prompt so repeated requests
// look stable.
type PlaceholderGenerator struct{}

func (PlaceholderGenerator) Generate(_ context.Context, prompt string, width, height int) (*Image, error) {
	if width <= 0 {
		width = 512
	}
	if height <= 0 {
		height = 512
	}
	label := prompt
	if runes := []rune(label); len(runes) > 30 {
		label = string(runes[:30]) + "..."
	}
	h := fnv.New32a()
	h.Write([]byte(prompt))
	color := palette[int(h.Sum32())%len(palette)]

	svg := fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
  <rect width="100%%" height="100%%" fill="%s"/>
  <text x="50%%" y="50%%" font-family="Arial, sans-serif" font-size="24" text-anchor="middle" fill="white" dominant-baseline="middle">%s</text>
  <text x="50%%" y="70%%" font-family="Arial, sans-serif" font-size="16" text-anchor="middle" fill="white" dominant-baseline="middle">Placeholder Image</text>
</svg>`, width, height, color, html.EscapeString(label))

	return &Image{Data: []byte(svg), MIME: "image/svg+xml", Source: "Placeholder Generator"}, nil
}
