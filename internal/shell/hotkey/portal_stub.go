//go:build !linux

package hotkey

import "go.uber.org/zap"

// NewPortalBackend only exists on Linux; elsewhere the coordinator
// never selects it, but the symbol must resolve.
func NewPortalBackend(log *zap.Logger) (Backend, error) {
	return nil, ErrPortalUnavailable
}
