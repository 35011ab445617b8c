package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/dbctx"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
)

type ProfileStore interface {
	GetByUID(dbc dbctx.Context, uid string) (*types.Profile, error)
	Save(dbc dbctx.Context, p *types.Profile) error
}

type ProfileCache interface {
	Get(ctx context.Context, uid string) (*types.Profile, bool, error)
	Set(ctx context.Context, p *types.Profile) error
}

type ProfileService interface {
	// Lookup returns nil, nil when uid has no profile.
	Lookup(ctx context.Context, uid string) (*types.Profile, error)
	// Principal resolves the role for a verified identity, creating a standard profile on first sight.
	Principal(ctx context.Context, id Identity) (types.Principal, error)
}

type profileService struct {
	log   *logger.Logger
	repo  ProfileStore
	cache ProfileCache
	now   func() time.Time
}

// NewProfileService reads through cache when it is non-nil.
func NewProfileService(log *logger.Logger, repo ProfileStore, cache ProfileCache) ProfileService {
	return &profileService{
		log:   log.With("service", "ProfileService"),
		repo:  repo,
		cache: cache,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *profileService) Lookup(ctx context.Context, uid string) (*types.Profile, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, nil
	}
	if s.cache != nil {
		p, ok, err := s.cache.Get(ctx, uid)
		if err != nil {
			s.log.Warn("Profile cache read failed", "uid", uid, "error", err)
		} else if ok {
			return p, nil
		}
	}
	p, err := s.repo.GetByUID(dbctx.Context{Ctx: ctx}, uid)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if p != nil && s.cache != nil {
		if err := s.cache.Set(ctx, p); err != nil {
			s.log.Warn("Profile cache write failed", "uid", uid, "error", err)
		}
	}
	return p, nil
}

func (s *profileService) Principal(ctx context.Context, id Identity) (types.Principal, error) {
	if strings.TrimSpace(id.UID) == "" {
		return types.Principal{}, fmt.Errorf("identity has no uid")
	}
	p, err := s.Lookup(ctx, id.UID)
	if err != nil {
		return types.Principal{}, err
	}
	if p == nil {
		now := s.now()
		p = &types.Profile{UID: id.UID, Email: id.Email, Role: types.RoleStandard, CreatedAt: now, UpdatedAt: now}
		if err := s.repo.Save(dbctx.Context{Ctx: ctx}, p); err != nil {
			return types.Principal{}, fmt.Errorf("create profile: %w", err)
		}
		s.log.Info("Profile created", "uid", id.UID)
	}
	role := p.Role
	if role == "" {
		role = types.RoleStandard
	}
	email := id.Email
	if email == "" {
		email = p.Email
	}
	return types.Principal{UID: id.UID, Email: email, Role: role}, nil
}
