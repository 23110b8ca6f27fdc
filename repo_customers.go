package auth

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Customers is the company scoped customer store. Every call filters by
// companyID.
type Customers interface {
	List(ctx context.Context, companyID uuid.UUID) ([]*Customer, error)
	Get(ctx context.Context, companyID, id uuid.UUID) (*Customer, error)
	EmailTaken(ctx context.Context, companyID uuid.UUID, email string) (bool, error)
	Create(ctx context.Context, record *Customer) (*Customer, error)
	Update(ctx context.Context, record *Customer) (*Customer, error)
	Delete(ctx context.Context, companyID, id uuid.UUID) error
}

type customers struct {
	repository.Repository[*Customer]
	db  *bun.DB
	now func() time.Time
}

var _ Customers = (*customers)(nil)

// NewCustomersRepository creates the bun backed Customers store
func NewCustomersRepository(db *bun.DB) Customers {
	repo := repository.NewRepository[*Customer](db, repository.ModelHandlers[*Customer]{
		NewRecord: func() *Customer { return &Customer{} },
		GetID: func(c *Customer) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *Customer, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
	})
	return &customers{
		Repository: repo,
		db:         db,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (a *customers) List(ctx context.Context, companyID uuid.UUID) ([]*Customer, error) {
	records := []*Customer{}
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.company_id = ?", companyID).
		OrderExpr("?TableAlias.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (a *customers) Get(ctx context.Context, companyID, id uuid.UUID) (*Customer, error) {
	record := &Customer{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.company_id = ?", companyID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id":         id.String(),
					"company_id": companyID.String(),
				})
		}
		return nil, err
	}
	return record, nil
}

func (a *customers) EmailTaken(ctx context.Context, companyID uuid.UUID, email string) (bool, error) {
	return a.db.NewSelect().
		Model((*Customer)(nil)).
		Where("?TableAlias.company_id = ?", companyID).
		Where("?TableAlias.email = ?", strings.TrimSpace(email)).
		Exists(ctx)
}

func (a *customers) Create(ctx context.Context, record *Customer) (*Customer, error) {
	now := a.now()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.CreatedAt = now
	record.UpdatedAt = now
	return a.Repository.CreateTx(ctx, a.db, record)
}

// Update rewrites every mutable column of a record previously loaded
// through Get.
func (a *customers) Update(ctx context.Context, record *Customer) (*Customer, error) {
	record.UpdatedAt = a.now()
	res, err := a.db.NewUpdate().
		Model(record).
		ExcludeColumn("id", "company_id", "created_at").
		Where("?TableAlias.id = ?", record.ID).
		Where("?TableAlias.company_id = ?", record.CompanyID).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	if err := expectAffected(res, record.ID); err != nil {
		return nil, err
	}
	return record, nil
}

func (a *customers) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	res, err := a.db.NewDelete().
		Model((*Customer)(nil)).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.company_id = ?", companyID).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectAffected(res, id)
}
