package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/require"

	"masterlist-ingestor/internal/domain"
	"masterlist-ingestor/internal/result"
)

// fakeDB is an in-memory DB with real transaction semantics: a transaction
// stages its changes on a copy and only Commit publishes them, so rollback
// behavior is observable without a live Postgres instance.
type fakeDB struct {
	tables map[string][][]interface{}

	// failOnInsertInto makes the Nth insert into the named table fail,
	// counted from 1. Zero disables injection.
	failOnInsertInto string
	failOnInsertN    int

	execLog []string
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		tables: map[string][][]interface{}{
			tableRootCA:  nil,
			tableDSC:     nil,
			tableCRL:     nil,
			tableRevoked: nil,
		},
	}
}

func (db *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	staged := make(map[string][][]interface{}, len(db.tables))
	for name, rows := range db.tables {
		staged[name] = append([][]interface{}(nil), rows...)
	}
	return &fakeTx{db: db, staged: staged}, nil
}

// snapshot deep-copies the committed state for later comparison.
func (db *fakeDB) snapshot() map[string][][]interface{} {
	out := make(map[string][][]interface{}, len(db.tables))
	for name, rows := range db.tables {
		out[name] = append([][]interface{}(nil), rows...)
	}
	return out
}

// ids returns the first column of every row in table.
func (db *fakeDB) ids(table string) []string {
	var out []string
	for _, row := range db.tables[table] {
		out = append(out, row[0].(string))
	}
	return out
}

type fakeTx struct {
	db        *fakeDB
	staged    map[string][][]interface{}
	inserts   map[string]int
	committed bool
}

func (tx *fakeTx) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	tx.db.execLog = append(tx.db.execLog, sql)

	switch {
	case strings.HasPrefix(sql, "DELETE FROM "):
		table := strings.TrimPrefix(sql, "DELETE FROM ")
		tx.staged[table] = nil
		return pgconn.CommandTag("DELETE 0"), nil
	case strings.HasPrefix(sql, "INSERT INTO "):
		table := strings.Fields(strings.TrimPrefix(sql, "INSERT INTO "))[0]
		if tx.inserts == nil {
			tx.inserts = map[string]int{}
		}
		tx.inserts[table]++
		if table == tx.db.failOnInsertInto && tx.inserts[table] == tx.db.failOnInsertN {
			return nil, errors.New("injected constraint violation")
		}
		tx.staged[table] = append(tx.staged[table], args)
		return pgconn.CommandTag("INSERT 0 1"), nil
	}
	return nil, errors.New("unrecognized statement: " + sql)
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	tx.db.tables = tx.staged
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	if tx.committed {
		return pgx.ErrTxClosed
	}
	return nil
}

func (tx *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (tx *fakeTx) BeginFunc(ctx context.Context, f func(pgx.Tx) error) error {
	panic("not implemented")
}
func (tx *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (tx *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (tx *fakeTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (tx *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (tx *fakeTx) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	panic("not implemented")
}
func (tx *fakeTx) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	panic("not implemented")
}
func (tx *fakeTx) QueryFunc(ctx context.Context, sql string, args []interface{}, scans []interface{}, f func(pgx.QueryFuncRow) error) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (tx *fakeTx) Conn() *pgx.Conn { panic("not implemented") }

func testPayload(prefix string) domain.MasterListPayload {
	crlID := prefix + "-crl-1"
	return domain.MasterListPayload{
		RootCAs: []domain.CertificateRecord{
			{ID: prefix + "-root-1", Certificate: []byte{0x30, 0x01}, Issuer: "CN=" + prefix, Source: domain.SourceICAOMasterList, SerialHex: "0x1"},
			{ID: prefix + "-root-2", Certificate: []byte{0x30, 0x02}, Issuer: "CN=" + prefix, Source: domain.SourceICAOMasterList, SerialHex: "0x2"},
		},
		Crls: []domain.CrlRecord{
			{ID: crlID, Crl: []byte{0x30, 0x03}, Source: domain.SourceICAOMasterList, Issuer: "CN=" + prefix, Country: "NL"},
		},
		RevokedCertificates: []domain.RevokedCertificateRecord{
			{ID: prefix + "-rev-1", Source: domain.SourceICAOMasterList, SerialHex: "0x63", CrlID: crlID},
			{ID: prefix + "-rev-2", Source: domain.SourceICAOMasterList, SerialHex: "0x64", CrlID: crlID},
		},
	}
}

func Test_StoreInsertsEveryRecordAndReportsTotal(t *testing.T) {
	db := newFakeDB()
	repo := NewRepository(db)

	res := repo.Store(context.Background(), testPayload("a"))
	require.True(t, res.IsSuccess())
	require.Equal(t, 5, res.Value())

	require.Equal(t, []string{"a-root-1", "a-root-2"}, db.ids(tableRootCA))
	require.Empty(t, db.ids(tableDSC))
	require.Equal(t, []string{"a-crl-1"}, db.ids(tableCRL))
	require.Equal(t, []string{"a-rev-1", "a-rev-2"}, db.ids(tableRevoked))
}

func Test_StoreLeavesUpdatedAtAbsent(t *testing.T) {
	db := newFakeDB()
	repo := NewRepository(db)

	require.True(t, repo.Store(context.Background(), testPayload("a")).IsSuccess())

	for _, table := range []string{tableRootCA, tableCRL, tableRevoked} {
		for _, row := range db.tables[table] {
			require.Nil(t, row[len(row)-1], "updated_at must be NULL on ingestion in %s", table)
		}
	}
}

func Test_StoreReplacesPreviousPayloadEntirely(t *testing.T) {
	db := newFakeDB()
	repo := NewRepository(db)

	require.True(t, repo.Store(context.Background(), testPayload("a")).IsSuccess())
	require.True(t, repo.Store(context.Background(), testPayload("b")).IsSuccess())

	require.Equal(t, []string{"b-root-1", "b-root-2"}, db.ids(tableRootCA))
	require.Equal(t, []string{"b-crl-1"}, db.ids(tableCRL))
	require.Equal(t, []string{"b-rev-1", "b-rev-2"}, db.ids(tableRevoked))
}

func Test_StoreRollsBackAndPreservesOldStateOnInsertFailure(t *testing.T) {
	db := newFakeDB()
	repo := NewRepository(db)

	require.True(t, repo.Store(context.Background(), testPayload("a")).IsSuccess())
	before := db.snapshot()

	db.failOnInsertInto = tableRevoked
	db.failOnInsertN = 2

	res := repo.Store(context.Background(), testPayload("b"))
	require.True(t, res.IsFailure())
	require.Equal(t, result.DatabaseError, res.Failure().Code)
	require.Equal(t, before, db.tables)
}

func Test_StoreDeletesChildrenBeforeParents(t *testing.T) {
	db := newFakeDB()
	repo := NewRepository(db)

	require.True(t, repo.Store(context.Background(), domain.MasterListPayload{}).IsSuccess())

	require.Equal(t, []string{
		"DELETE FROM " + tableRevoked,
		"DELETE FROM " + tableCRL,
		"DELETE FROM " + tableDSC,
		"DELETE FROM " + tableRootCA,
	}, db.execLog)
}

func Test_NullableStringMapsEmptyToNil(t *testing.T) {
	require.Nil(t, nullableString(""))
	require.Equal(t, "value", nullableString("value"))
}
