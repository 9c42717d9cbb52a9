package public

import "github.com/baguri-ro/baguri-api/internal/provider"

// Handler serves the storefront and designer-facing API.
type Handler struct {
	*provider.Container
}

// New builds the public handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
