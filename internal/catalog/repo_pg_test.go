package catalog

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMock(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGListBuildsQuotedQuery(t *testing.T) {
	repo, mock := newMock(t)
	tbl, _ := Lookup("empresa")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT row_to_json(t) FROM "empresa" t WHERE t."ativo" = $1 AND t."nome" ILIKE $2 ORDER BY t."nome" LIMIT $3 OFFSET $4`)).
		WithArgs(true, "%corp%", 50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"row_to_json"}).AddRow([]byte(`{"id":"e1","nome":"Zeta Corp","ativo":true}`)))

	rows, err := repo.List(context.Background(), tbl, Query{Filters: map[string]bool{"ativo": true}, Search: "corp", Limit: 50})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 1 || rows[0]["nome"] != "Zeta Corp" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGGetNotFound(t *testing.T) {
	repo, mock := newMock(t)
	tbl, _ := Lookup("cities")
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "cities" t WHERE t.id = $1`)).
		WithArgs("x").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.Get(context.Background(), tbl, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGUpdateSortedColumns(t *testing.T) {
	repo, mock := newMock(t)
	tbl, _ := Lookup("schools")
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE "schools" AS t SET "has_esl" = $2, "name" = $3 WHERE t.id = $1 RETURNING row_to_json(t)`)).
		WithArgs("s1", true, "Lincoln High").
		WillReturnRows(sqlmock.NewRows([]string{"row_to_json"}).AddRow([]byte(`{"id":"s1","name":"Lincoln High","has_esl":true}`)))

	row, err := repo.Update(context.Background(), tbl, "s1", map[string]any{"name": "Lincoln High", "has_esl": true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if row["has_esl"] != true {
		t.Fatalf("unexpected row: %v", row)
	}
}

func TestPGInsertBatch(t *testing.T) {
	repo, mock := newMock(t)
	tbl, _ := Lookup("cities")
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "cities" ("id", "name", "state") VALUES ($1, $2, $3), ($4, $5, $6) ON CONFLICT (id) DO NOTHING`)).
		WithArgs("c1", "Miami", "FL", "c2", "Denver", "CO").
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.Insert(context.Background(), tbl, []Row{
		{"id": "c1", "name": "Miami", "state": "FL"},
		{"id": "c2", "name": "Denver", "state": "CO"},
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
}
