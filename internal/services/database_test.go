package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoushou-fitness/clubbot/internal/domain"
)

func newMockGateway(t *testing.T) (*SQLGateway, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLGatewayFromDB(db, domain.DefaultSheetNames()), mock
}

func TestSQLGatewayAllRecords(t *testing.T) {
	gw, mock := newMockGateway(t)

	expiry := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"Member ID", "Name", "Points", "Expiry Date"}).
		AddRow([]byte("A00012"), "王小明", int64(1200), expiry).
		AddRow("B00013", "Chen Wei", nil, nil)
	mock.ExpectQuery(`SELECT * FROM "Members"`).WillReturnRows(rows)

	records, err := gw.AllRecords(context.Background(), "Members")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "A00012", records[0]["Member ID"])
	assert.Equal(t, "1200", records[0].String("Points"))
	assert.Equal(t, "2026-12-31", records[0].String("Expiry Date"))
	assert.Equal(t, "", records[1].String("Points"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLGatewayQuotesTableName(t *testing.T) {
	gw, mock := newMockGateway(t)

	mock.ExpectQuery(`SELECT * FROM "FitnessLog"`).
		WillReturnRows(sqlmock.NewRows([]string{"Name"}))

	records, err := gw.AllRecords(context.Background(), "FitnessLog")
	require.NoError(t, err)
	assert.Empty(t, records)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLGatewayRejectsUnknownTable(t *testing.T) {
	gw, mock := newMockGateway(t)

	_, err := gw.AllRecords(context.Background(), "pg_shadow")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLGatewayQueryError(t *testing.T) {
	gw, mock := newMockGateway(t)

	mock.ExpectQuery(`SELECT * FROM "Courses"`).WillReturnError(errors.New("connection reset"))

	_, err := gw.AllRecords(context.Background(), "Courses")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestSQLGatewayBackedLookup(t *testing.T) {
	gw, mock := newMockGateway(t)
	mock.ExpectQuery(`SELECT * FROM "Members"`).WillReturnRows(
		sqlmock.NewRows([]string{"Member ID", "Name"}).AddRow("A00012", "王小明"),
	)

	res, err := newTestLookup(gw).Query(context.Background(), domain.QueryRequest{Kind: domain.QueryMemberByID, Key: "A-000 12"})
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, "王小明", res.First().String("Name"))
}

func TestSQLGatewayNilDB(t *testing.T) {
	gw := &SQLGateway{}
	_, err := gw.AllRecords(context.Background(), "Members")
	require.Error(t, err)
	require.NoError(t, gw.Close())
}
