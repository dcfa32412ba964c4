package postgres

import (
	"context"
	"embed"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	pgxuuid "github.com/jackc/pgx-gofrs-uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"

	"github.com/vheiberg/aclstore"
)

//go:embed migrations/*.sql
var fs embed.FS

func RunMigrations(databaseURL string) error {
	driver, err := iofs.New(fs, "migrations")
	if err != nil {
		return err
	}
	migrations, err := migrate.NewWithSourceInstance("iofs", driver, databaseURL)
	if err != nil {
		return err
	}
	err = migrations.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

type PostgresOption interface {
	do(*postgresConfig)
}

type postgresConfig struct {
	maxConns int32
}

type postgresFunctionAdapter func(*postgresConfig)

func (fn postgresFunctionAdapter) do(c *postgresConfig) {
	fn(c)
}

// MaxConns caps the size of the underlying pgx pool.
func MaxConns(n int32) PostgresOption {
	return postgresFunctionAdapter(func(c *postgresConfig) { c.maxConns = n })
}

type postgresStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresStorage(databaseURL string, options ...PostgresOption) (aclstore.Denier, error) {
	opts := postgresConfig{}
	lo.ForEach(options, func(o PostgresOption, _ int) { o.do(&opts) })
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	if opts.maxConns > 0 {
		config.MaxConns = opts.maxConns
	}
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxuuid.Register(conn.TypeMap())
		return nil
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}
	return &postgresStorage{pool}, nil
}

func (s *postgresStorage) Close() error {
	s.pool.Close()
	return nil
}

func (s *postgresStorage) Check(ctx context.Context, public aclstore.Public, document aclstore.DocumentAddress) (bool, error) {
	denied := false
	err := s.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM denials WHERE public=$1 AND document=$2)", public[:], document[:]).
		Scan(&denied)
	if err != nil {
		return false, err
	}
	return !denied, nil
}

func (s *postgresStorage) Deny(ctx context.Context, public aclstore.Public, document aclstore.DocumentAddress) error {
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	// The unique index keeps the original record for already-denied pairs.
	_, err = s.pool.Exec(ctx, "INSERT INTO denials (uuid, public, document) values($1, $2, $3) ON CONFLICT (public, document) DO NOTHING", id, public[:], document[:])
	return err
}

func (s *postgresStorage) Read(ctx context.Context, public aclstore.Public, document aclstore.DocumentAddress) (uuid.UUID, error) {
	id := uuid.UUID{}
	err := s.pool.QueryRow(ctx, "SELECT uuid FROM denials WHERE public=$1 AND document=$2", public[:], document[:]).
		Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return id, aclstore.ErrNotFound
	}
	return id, err
}
