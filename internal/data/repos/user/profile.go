package user

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/dbctx"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
)

type ProfileRepo interface {
	// GetByUID returns nil, nil when no profile exists for uid.
	GetByUID(dbc dbctx.Context, uid string) (*types.Profile, error)
	Save(dbc dbctx.Context, p *types.Profile) error
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return &profileRepo{db: db, log: baseLog.With("repo", "ProfileRepo")}
}

func (r *profileRepo) GetByUID(dbc dbctx.Context, uid string) (*types.Profile, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, nil
	}
	var out types.Profile
	err := dbc.DB(r.db).Where("uid = ?", uid).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Save inserts p or refreshes the mutable columns of an existing profile.
func (r *profileRepo) Save(dbc dbctx.Context, p *types.Profile) error {
	if p == nil || strings.TrimSpace(p.UID) == "" {
		return errors.New("profile uid required")
	}
	if p.Role == "" {
		p.Role = types.RoleStandard
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "role", "supplier_profile", "updated_at"}),
		}).
		Create(p).Error
}
