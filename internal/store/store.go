// Package store implements the transactional replace of the certificate
// store's four tables. A full ingestion run either replaces every table's
// contents or changes nothing.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"masterlist-ingestor/internal/domain"
	"masterlist-ingestor/internal/result"
)

// Table names for the four relations this store owns.
const (
	tableRootCA  = "root_ca"
	tableDSC     = "dsc"
	tableCRL     = "crls"
	tableRevoked = "revoked_certificate_list"
)

// DB is the slice of pgx the Repository needs: something that can open a
// transaction. *pgxpool.Pool satisfies it in production; tests inject an
// in-memory implementation.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository persists master list payloads. A single *pgxpool.Pool is
// opened once per process and shared across runs — it already multiplexes
// connections safely — but a fresh transaction is opened and closed on
// every call to Store, since that is what the all-or-nothing replace
// invariant actually depends on.
type Repository struct {
	db   DB
	pool *pgxpool.Pool
}

// Connect opens the pool backing a Repository. dsn is a standard libpq
// connection string.
func Connect(ctx context.Context, dsn string) (*Repository, error) {
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to certificate store: %w", err)
	}
	return &Repository{db: pool, pool: pool}, nil
}

// NewRepository wraps an already-opened DB. The caller keeps ownership of
// the underlying connection's lifecycle.
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// Close releases the underlying pool, if this Repository owns one.
func (r *Repository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// Store replaces the entire contents of all four tables with payload's
// contents inside one transaction. It deletes in child-before-parent order
// and inserts in parent-before-child order, so that a mid-run failure never
// leaves a foreign key dangling even transiently. It returns the total
// number of rows inserted.
func (r *Repository) Store(ctx context.Context, payload domain.MasterListPayload) result.Result[int] {
	return result.FromComputation(result.DatabaseError, "replacing certificate store", func() (int, error) {
		tx, err := r.db.Begin(ctx)
		if err != nil {
			return 0, fmt.Errorf("beginning transaction: %w", err)
		}
		defer tx.Rollback(ctx) //nolint:errcheck // no-op once committed

		if err := deleteAll(ctx, tx); err != nil {
			return 0, err
		}

		inserted, err := insertAll(ctx, tx, payload)
		if err != nil {
			return 0, err
		}

		if err := tx.Commit(ctx); err != nil {
			return 0, fmt.Errorf("committing transaction: %w", err)
		}
		return inserted, nil
	})
}

// deleteAll empties every table in child-before-parent order:
// revoked_certificate_list -> crls -> dsc -> root_ca.
func deleteAll(ctx context.Context, tx pgx.Tx) error {
	for _, table := range []string{tableRevoked, tableCRL, tableDSC, tableRootCA} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// insertAll populates every table in parent-before-child order: root_ca ->
// dsc -> crls -> revoked_certificate_list. It returns the total row count
// inserted across all four tables.
func insertAll(ctx context.Context, tx pgx.Tx, payload domain.MasterListPayload) (int, error) {
	total := 0

	n, err := insertCertificates(ctx, tx, tableRootCA, payload.RootCAs)
	if err != nil {
		return 0, fmt.Errorf("inserting root_ca rows: %w", err)
	}
	total += n

	n, err = insertCertificates(ctx, tx, tableDSC, payload.DSCs)
	if err != nil {
		return 0, fmt.Errorf("inserting dsc rows: %w", err)
	}
	total += n

	n, err = insertCRLs(ctx, tx, payload.Crls)
	if err != nil {
		return 0, fmt.Errorf("inserting crls rows: %w", err)
	}
	total += n

	n, err = insertRevoked(ctx, tx, payload.RevokedCertificates)
	if err != nil {
		return 0, fmt.Errorf("inserting revoked_certificate_list rows: %w", err)
	}
	total += n

	return total, nil
}

// Rows are inserted one Exec per record rather than batched: the row counts
// here are small (one scheduled run every few hours, a few thousand rows at
// most) and a per-row statement localizes the exact failing record in the
// error chain, which a bulk load would not.
func insertCertificates(ctx context.Context, tx pgx.Tx, table string, records []domain.CertificateRecord) (int, error) {
	stmt := fmt.Sprintf(
		`INSERT INTO %s (id, certificate, subject_key_identifier, authority_key_identifier, issuer, x_500_issuer, source, isn, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, table)
	for i, rec := range records {
		_, err := tx.Exec(ctx, stmt, rec.ID, rec.Certificate, nullableString(rec.SubjectKeyIdentifier), nullableString(rec.AuthorityKeyIdentifier), rec.Issuer, rec.X500Issuer, rec.Source, rec.SerialHex, rec.UpdatedAt)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return len(records), nil
}

func insertCRLs(ctx context.Context, tx pgx.Tx, records []domain.CrlRecord) (int, error) {
	const stmt = `INSERT INTO crls (id, crl, source, issuer, country, updated_at)
	              VALUES ($1, $2, $3, $4, $5, $6)`
	for i, rec := range records {
		_, err := tx.Exec(ctx, stmt, rec.ID, rec.Crl, rec.Source, rec.Issuer, nullableString(rec.Country), rec.UpdatedAt)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return len(records), nil
}

func insertRevoked(ctx context.Context, tx pgx.Tx, records []domain.RevokedCertificateRecord) (int, error) {
	const stmt = `INSERT INTO revoked_certificate_list (id, source, country, isn, crl, revocation_reason, revocation_date, updated_at)
	              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for i, rec := range records {
		_, err := tx.Exec(ctx, stmt, rec.ID, rec.Source, nullableString(rec.Country), rec.SerialHex, rec.CrlID, nullableString(rec.RevocationReason), rec.RevocationDate, rec.UpdatedAt)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return len(records), nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
