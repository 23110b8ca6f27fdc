package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Sequences is the store for per company document numbering
type Sequences interface {
	CreateTx(ctx context.Context, tx bun.IDB, record *Sequence) (*Sequence, error)
	GetByCompany(ctx context.Context, companyID uuid.UUID) (*Sequence, error)
}

type sequences struct {
	repository.Repository[*Sequence]
	db *bun.DB
}

var _ Sequences = (*sequences)(nil)

// NewSequencesRepository creates the bun backed Sequences store
func NewSequencesRepository(db *bun.DB) Sequences {
	repo := repository.NewRepository[*Sequence](db, repository.ModelHandlers[*Sequence]{
		NewRecord: func() *Sequence { return &Sequence{} },
		GetID: func(s *Sequence) uuid.UUID {
			if s == nil {
				return uuid.Nil
			}
			return s.ID
		},
		SetID: func(s *Sequence, id uuid.UUID) {
			if s != nil {
				s.ID = id
			}
		},
		GetIdentifier: func() string {
			return "company_id"
		},
	})
	return &sequences{Repository: repo, db: db}
}

func (a *sequences) CreateTx(ctx context.Context, tx bun.IDB, record *Sequence) (*Sequence, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *sequences) GetByCompany(ctx context.Context, companyID uuid.UUID) (*Sequence, error) {
	record := &Sequence{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.company_id = ?", companyID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"company_id": companyID.String(),
				})
		}
		return nil, err
	}
	return record, nil
}
