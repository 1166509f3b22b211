package repository

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProdBay-app/ProdBay-sub001/models"
)

func TestAcceptQuote_RejectsSiblingsAndAssignsSupplier(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT asset_id, supplier_id, status FROM quotes").
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"asset_id", "supplier_id", "status"}).
			AddRow(5, 3, models.QuoteStatusSubmitted))
	mock.ExpectExec("UPDATE quotes SET status").
		WithArgs(models.QuoteStatusAccepted, sqlmock.AnyArg(), 11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE quotes SET status").
		WithArgs(models.QuoteStatusRejected, sqlmock.AnyArg(), 5, 11).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE assets SET assigned_supplier_id").
		WithArgs(3, models.AssetStatusApproved, sqlmock.AnyArg(), 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, AcceptQuote(db, 11))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptQuote_AlreadyRejected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT asset_id, supplier_id, status FROM quotes").
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"asset_id", "supplier_id", "status"}).
			AddRow(5, 3, models.QuoteStatusRejected))
	mock.ExpectRollback()

	err = AcceptQuote(db, 11)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already rejected")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptQuote_MissingQuote(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT asset_id, supplier_id, status FROM quotes").
		WithArgs(404).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	assert.Equal(t, sql.ErrNoRows, AcceptQuote(db, 404))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateQuoteRequests_SkipsExistingPairs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT project_id FROM assets").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"project_id"}).AddRow(2))

	// supplier 3 already has a quote for this asset
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(5, 3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	// supplier 4 does not
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(5, 4).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("INSERT INTO quotes").
		WithArgs(5, 4, models.QuoteStatusPending, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"quote_id"}).AddRow(31))

	mock.ExpectExec("UPDATE assets SET status").
		WithArgs(models.AssetStatusQuoting, sqlmock.AnyArg(), 5, models.AssetStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE projects SET status").
		WithArgs(models.ProjectStatusQuoting, sqlmock.AnyArg(), 2, models.ProjectStatusNew, models.ProjectStatusInProgress).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := CreateQuoteRequests(db, 5, []int{3, 4})
	require.NoError(t, err)
	require.Len(t, result.Created, 1)
	assert.Equal(t, 31, result.Created[0].QuoteID)
	assert.Equal(t, 4, result.Created[0].SupplierID)
	assert.NotEmpty(t, result.Created[0].AccessToken)
	assert.Equal(t, []int{3}, result.Skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateQuoteRequests_AllSkippedLeavesStatusesAlone(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT project_id FROM assets").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"project_id"}).AddRow(2))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(5, 3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectCommit()

	result, err := CreateQuoteRequests(db, 5, []int{3})
	require.NoError(t, err)
	assert.Empty(t, result.Created)
	assert.Equal(t, []int{3}, result.Skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitQuoteByToken_DecidedQuoteIsFinal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// an accepted or rejected quote no longer matches the status filter
	mock.ExpectQuery("UPDATE quotes").
		WithArgs(150.0, "two week lead time", models.QuoteStatusSubmitted,
			sqlmock.AnyArg(), "tok-1", models.QuoteStatusPending).
		WillReturnError(sql.ErrNoRows)

	_, err = SubmitQuoteByToken(db, "tok-1", models.QuoteSubmission{
		Cost:          150.0,
		CapacityNotes: "two week lead time",
	})
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
