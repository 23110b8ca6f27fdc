package auth

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Companies is the store for tenant companies
type Companies interface {
	Create(ctx context.Context, record *Company) (*Company, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Company) (*Company, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Company, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Company, error)
	GetByEmail(ctx context.Context, email string) (*Company, error)
	EmailTaken(ctx context.Context, email string, except uuid.UUID) (bool, error)
	List(ctx context.Context, offset, limit int) ([]*Company, int, error)
	UpdateStatus(ctx context.Context, record *Company) (*Company, error)
	UpdateStatusTx(ctx context.Context, tx bun.IDB, record *Company) (*Company, error)
	UpdatePlan(ctx context.Context, id uuid.UUID, plan CompanyPlan) (*Company, error)
	UpdateColumns(ctx context.Context, record *Company, columns ...string) (*Company, error)
}

type companies struct {
	repository.Repository[*Company]
	db  *bun.DB
	now func() time.Time
}

var _ Companies = (*companies)(nil)

// NewCompaniesRepository creates the bun backed Companies store
func NewCompaniesRepository(db *bun.DB) Companies {
	repo := repository.NewRepository[*Company](db, repository.ModelHandlers[*Company]{
		NewRecord: func() *Company { return &Company{} },
		GetID: func(c *Company) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *Company, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &companies{
		Repository: repo,
		db:         db,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (a *companies) Create(ctx context.Context, record *Company) (*Company, error) {
	return a.CreateTx(ctx, a.db, record)
}

func (a *companies) CreateTx(ctx context.Context, tx bun.IDB, record *Company) (*Company, error) {
	prepareCompanyDefaults(record, a.now())
	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *companies) GetByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	return a.GetByIDTx(ctx, a.db, id)
}

func (a *companies) GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Company, error) {
	record := &Company{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}
	return record, nil
}

func (a *companies) GetByEmail(ctx context.Context, email string) (*Company, error) {
	record := &Company{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", strings.TrimSpace(email)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}
	return record, nil
}

// EmailTaken reports whether another company already uses email
func (a *companies) EmailTaken(ctx context.Context, email string, except uuid.UUID) (bool, error) {
	q := a.db.NewSelect().
		Model((*Company)(nil)).
		Where("?TableAlias.email = ?", strings.TrimSpace(email))
	if except != uuid.Nil {
		q = q.Where("?TableAlias.id <> ?", except)
	}
	return q.Exists(ctx)
}

// List returns a page of companies, newest first, and the total count
func (a *companies) List(ctx context.Context, offset, limit int) ([]*Company, int, error) {
	records := make([]*Company, 0, limit)
	total, err := a.db.NewSelect().
		Model(&records).
		OrderExpr("?TableAlias.created_at DESC").
		Offset(offset).
		Limit(limit).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (a *companies) UpdateStatus(ctx context.Context, record *Company) (*Company, error) {
	return a.UpdateStatusTx(ctx, a.db, record)
}

// UpdateStatusTx persists status together with the approval stamp, so a
// cleared stamp is written as NULL.
func (a *companies) UpdateStatusTx(ctx context.Context, tx bun.IDB, record *Company) (*Company, error) {
	record.UpdatedAt = a.now()
	res, err := tx.NewUpdate().
		Model(record).
		Column("status", "approved_at", "approved_by_id", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	if err := expectAffected(res, record.ID); err != nil {
		return nil, err
	}
	return a.GetByIDTx(ctx, tx, record.ID)
}

func (a *companies) UpdatePlan(ctx context.Context, id uuid.UUID, plan CompanyPlan) (*Company, error) {
	record := &Company{ID: id, Plan: plan, UpdatedAt: a.now()}
	res, err := a.db.NewUpdate().
		Model(record).
		Column("plan", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	if err := expectAffected(res, id); err != nil {
		return nil, err
	}
	return a.GetByID(ctx, id)
}

// UpdateColumns writes only the named columns; updated_at is always added
func (a *companies) UpdateColumns(ctx context.Context, record *Company, columns ...string) (*Company, error) {
	record.UpdatedAt = a.now()
	columns = append(columns, "updated_at")
	res, err := a.db.NewUpdate().
		Model(record).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	if err := expectAffected(res, record.ID); err != nil {
		return nil, err
	}
	return a.GetByID(ctx, record.ID)
}

func prepareCompanyDefaults(record *Company, now time.Time) {
	if record == nil {
		return
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Status == "" {
		record.Status = CompanyStatusPending
	}
	if record.Plan == "" {
		record.Plan = PlanStarter
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
}
