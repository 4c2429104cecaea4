package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/orderdesk/crm-console/internal/core/domain"
	"github.com/orderdesk/crm-console/internal/core/ports"
)

// AdminService fronts the super-admin surface. Capability checks run locally
// first so a viewer gets immediate feedback instead of a round-trip 403; the
// backend enforces the same policy authoritatively.
type AdminService struct {
	api     ports.AdminAPI
	session identitySource
	log     zerolog.Logger
}

func NewAdminService(api ports.AdminAPI, session identitySource, log zerolog.Logger) *AdminService {
	return &AdminService{api: api, session: session, log: log}
}

func (s *AdminService) ListFlags(ctx context.Context) ([]domain.FeatureFlag, error) {
	if err := s.require(domain.CapManageFlags); err != nil {
		return nil, err
	}
	return s.api.ListFeatureFlags(ctx)
}

func (s *AdminService) ToggleFlag(ctx context.Context, key string, enabled bool) (*domain.FeatureFlag, error) {
	if err := s.require(domain.CapManageFlags); err != nil {
		return nil, err
	}
	flag, err := s.api.ToggleFeatureFlag(ctx, key, enabled)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("flag", flag.FlagKey).Bool("enabled", flag.Enabled).Msg("feature flag toggled")
	return flag, nil
}

func (s *AdminService) SyncChannels(ctx context.Context) (map[string]int, error) {
	if err := s.require(domain.CapSyncChannels); err != nil {
		return nil, err
	}
	results, err := s.api.SyncChannels(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Info().Interface("imported", results).Msg("channel sync triggered")
	return results, nil
}

func (s *AdminService) require(action domain.Capability) error {
	caller := s.session.Identity()
	if caller == nil {
		return domain.ErrNoSession
	}
	if !caller.Role.Can(action) {
		return fmt.Errorf("role %s lacks %s: %w", caller.Role, action, domain.ErrForbidden)
	}
	return nil
}
