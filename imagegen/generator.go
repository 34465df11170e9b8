// Package imagegen provides the image-generation capability behind the
// imagegen tool. Real generation and the free placeholder renderer share one
// interface so handlers and tests can swap them.
package imagegen

import "context"

type Image struct {
	Data   []byte
	MIME   string
	Source string
}

type Generator interface {
	Generate(ctx context.Context, prompt string, width, height int) (*Image, error)
}
