package rpc

import (
	"github.com/bookbridge-io/bookbridge/config"
)

// ValidationService answers whether a request names a provider this
// deployment actually runs. The set comes from the same Config that
// drives the connection manager, so the rpc layer never accepts a
// provider it holds no connection for.
type ValidationService struct {
	providers map[string]struct{}
}

func NewValidationService(conf *config.Config) *ValidationService {
	providers := make(map[string]struct{}, len(conf.AvailableProviders))
	for _, p := range conf.AvailableProviders {
		providers[p] = struct{}{}
	}
	return &ValidationService{providers: providers}
}

func (s *ValidationService) IsSupportedProvider(provider string) bool {
	_, ok := s.providers[provider]
	return ok
}
