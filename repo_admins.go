package auth

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PlatformAdmins is the store for platform operators
type PlatformAdmins interface {
	Create(ctx context.Context, record *PlatformAdmin) (*PlatformAdmin, error)
	GetByID(ctx context.Context, id uuid.UUID) (*PlatformAdmin, error)
	GetByEmail(ctx context.Context, email string) (*PlatformAdmin, error)
}

type platformAdmins struct {
	repository.Repository[*PlatformAdmin]
	db  *bun.DB
	now func() time.Time
}

var _ PlatformAdmins = (*platformAdmins)(nil)

// NewPlatformAdminsRepository creates the bun backed PlatformAdmins store
func NewPlatformAdminsRepository(db *bun.DB) PlatformAdmins {
	repo := repository.NewRepository[*PlatformAdmin](db, repository.ModelHandlers[*PlatformAdmin]{
		NewRecord: func() *PlatformAdmin { return &PlatformAdmin{} },
		GetID: func(a *PlatformAdmin) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *PlatformAdmin, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &platformAdmins{
		Repository: repo,
		db:         db,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (a *platformAdmins) Create(ctx context.Context, record *PlatformAdmin) (*PlatformAdmin, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Role == "" {
		record.Role = AdminRoleSuperAdmin
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = a.now()
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	return a.Repository.CreateTx(ctx, a.db, record)
}

func (a *platformAdmins) GetByID(ctx context.Context, id uuid.UUID) (*PlatformAdmin, error) {
	return a.getBy(ctx, "id", id)
}

func (a *platformAdmins) GetByEmail(ctx context.Context, email string) (*PlatformAdmin, error) {
	return a.getBy(ctx, "email", strings.TrimSpace(email))
}

func (a *platformAdmins) getBy(ctx context.Context, column string, value any) (*PlatformAdmin, error) {
	record := &PlatformAdmin{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.? = ?", bun.Ident(column), value).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					column: value,
				})
		}
		return nil, err
	}
	return record, nil
}
