package render

import (
	"context"
)

// Renderer turns a View into a byte representation (HTML page, terminal
// prompts). Implementations must not mutate the view.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view View) ([]byte, error)
}
