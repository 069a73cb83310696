package upstream

import "context"

// Provider exposes the upstream SMS gateway account.
type Provider interface {
	// Balance returns the remaining SMS credit balance on the upstream
	// account.
	Balance(ctx context.Context) (float64, error)
}

// NoOpProvider reports an empty upstream account. Used when no API key is
// configured.
type NoOpProvider struct{}

func (p *NoOpProvider) Balance(ctx context.Context) (float64, error) {
	return 0, nil
}
