package auth

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Products is the company scoped product store. Every call filters by
// companyID.
type Products interface {
	List(ctx context.Context, companyID uuid.UUID) ([]*Product, error)
	Get(ctx context.Context, companyID, id uuid.UUID) (*Product, error)
	SKUTaken(ctx context.Context, companyID uuid.UUID, sku string) (bool, error)
	Create(ctx context.Context, record *Product) (*Product, error)
	Update(ctx context.Context, record *Product) (*Product, error)
	Delete(ctx context.Context, companyID, id uuid.UUID) error
}

type products struct {
	repository.Repository[*Product]
	db  *bun.DB
	now func() time.Time
}

var _ Products = (*products)(nil)

// NewProductsRepository creates the bun backed Products store
func NewProductsRepository(db *bun.DB) Products {
	repo := repository.NewRepository[*Product](db, repository.ModelHandlers[*Product]{
		NewRecord: func() *Product { return &Product{} },
		GetID: func(p *Product) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Product, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})
	return &products{
		Repository: repo,
		db:         db,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (a *products) List(ctx context.Context, companyID uuid.UUID) ([]*Product, error) {
	records := []*Product{}
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

func (a *products) Get(ctx context.Context, companyID, id uuid.UUID) (*Product, error) {
	record := &Product{}
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

func (a *products) SKUTaken(ctx context.Context, companyID uuid.UUID, sku string) (bool, error) {
	return a.db.NewSelect().
		Model((*Product)(nil)).
		Where("?TableAlias.company_id = ?", companyID).
		Where("?TableAlias.sku = ?", strings.TrimSpace(sku)).
		Exists(ctx)
}

func (a *products) Create(ctx context.Context, record *Product) (*Product, error) {
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
func (a *products) Update(ctx context.Context, record *Product) (*Product, error) {
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

func (a *products) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	res, err := a.db.NewDelete().
		Model((*Product)(nil)).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.company_id = ?", companyID).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectAffected(res, id)
}
