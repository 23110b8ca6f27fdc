package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Ping(ctx context.Context) error
	Companies() Companies
	Users() Users
	PlatformAdmins() PlatformAdmins
	Sequences() Sequences
	Customers() Customers
	Products() Products
}

type mngr struct {
	db             *bun.DB
	companies      Companies
	users          Users
	platformAdmins PlatformAdmins
	sequences      Sequences
	customers      Customers
	products       Products
}

// NewRepositoryManager wires every store against the injected db handle
func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:             db,
		companies:      NewCompaniesRepository(db),
		users:          NewUsersRepository(db),
		platformAdmins: NewPlatformAdminsRepository(db),
		sequences:      NewSequencesRepository(db),
		customers:      NewCustomersRepository(db),
		products:       NewProductsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.db == nil {
		return errors.New("repository manager requires a database handle")
	}

	if m.companies == nil {
		return errors.New("repository companies should be initialized")
	}

	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.platformAdmins == nil {
		return errors.New("repository platformAdmins should be initialized")
	}

	if m.sequences == nil {
		return errors.New("repository sequences should be initialized")
	}

	if m.customers == nil || m.products == nil {
		return errors.New("tenant repositories should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Ping(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, "SELECT 1")
	return err
}

func (m mngr) Companies() Companies {
	return m.companies
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) PlatformAdmins() PlatformAdmins {
	return m.platformAdmins
}

func (m mngr) Sequences() Sequences {
	return m.sequences
}

func (m mngr) Customers() Customers {
	return m.customers
}

func (m mngr) Products() Products {
	return m.products
}
