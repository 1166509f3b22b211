package repository

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProdBay-app/ProdBay-sub001/models"
)

func TestDeleteProjectCascade_DeletesChildrenFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM quotes").
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec("DELETE FROM assets").
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM projects").
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, DeleteProjectCascade(db, 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProjectCascade_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM quotes").
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec("DELETE FROM assets").
		WithArgs(42).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err = DeleteProjectCascade(db, 42)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProjectCascade_MissingProject(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM quotes").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM assets").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM projects").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = DeleteProjectCascade(db, 7)
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAssetCascade(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM quotes").
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM assets").
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, DeleteAssetCascade(db, 9))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComputeProjectDashboard(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT status FROM projects").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(models.ProjectStatusInProgress))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(3, models.AssetStatusDelivered).
		WillReturnRows(sqlmock.NewRows([]string{"count", "delivered"}).AddRow(4, 1))
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(3, models.QuoteStatusAccepted).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(8600.50))

	dashboard, err := ComputeProjectDashboard(db, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, dashboard.TotalAssets)
	assert.Equal(t, 1, dashboard.DeliveredAssets)
	assert.InDelta(t, 25.0, dashboard.ProgressPercent, 0.001)
	assert.InDelta(t, 8600.50, dashboard.TotalAcceptedCost, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}
