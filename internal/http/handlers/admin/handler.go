package admin

import "github.com/baguri-ro/baguri-api/internal/provider"

// Handler serves the back-office API.
type Handler struct {
	*provider.Container
}

// New builds the admin handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
