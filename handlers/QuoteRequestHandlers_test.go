package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ProdBay-app/ProdBay-sub001/models"
	"github.com/ProdBay-app/ProdBay-sub001/repository"
)

func newMockGorm(t *testing.T, db gorm.ConnPool) *gorm.DB {
	t.Helper()
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gormDB
}

func settingsRows(autoAllocate bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "producer_name", "producer_email", "default_quote_subject",
		"default_quote_body", "auto_allocate", "created_at", "updated_at",
	}).AddRow(1, "ProdBay Studio", "producer@prodbay.example", "", "", autoAllocate, now, now)
}

func postQuoteRequest(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/quote-requests", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequestQuotes_AutoAllocatesWhenEnabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	gormDB := newMockGorm(t, db)

	mock.ExpectQuery(`SELECT \* FROM "producer_settings"`).
		WithArgs(1).
		WillReturnRows(settingsRows(true))
	mock.ExpectQuery("SELECT s.supplier_id").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"supplier_id"}).AddRow(2).AddRow(4))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT project_id FROM assets").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"project_id"}).AddRow(3))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(5, 2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("INSERT INTO quotes").
		WithArgs(5, 2, models.QuoteStatusPending, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"quote_id"}).AddRow(31))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(5, 4).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("INSERT INTO quotes").
		WithArgs(5, 4, models.QuoteStatusPending, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"quote_id"}).AddRow(32))
	mock.ExpectExec("UPDATE assets SET status").
		WithArgs(models.AssetStatusQuoting, sqlmock.AnyArg(), 5, models.AssetStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE projects SET status").
		WithArgs(models.ProjectStatusQuoting, sqlmock.AnyArg(), 3, models.ProjectStatusNew, models.ProjectStatusInProgress).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.POST("/api/quote-requests", RequestQuotes(db, gormDB, nil))

	rec := postQuoteRequest(t, router, `{"asset_id":5}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Success bool                          `json:"success"`
		Data    repository.QuoteRequestResult `json:"data"`
		Warning string                        `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data.Created, 2)
	// No SMTP configured in the test, so delivery degrades to a warning.
	assert.NotEmpty(t, resp.Warning)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestQuotes_EmptySuppliersNeedAutoAllocation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	gormDB := newMockGorm(t, db)

	mock.ExpectQuery(`SELECT \* FROM "producer_settings"`).
		WithArgs(1).
		WillReturnRows(settingsRows(false))

	router := gin.New()
	router.POST("/api/quote-requests", RequestQuotes(db, gormDB, nil))

	rec := postQuoteRequest(t, router, `{"asset_id":5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestQuotes_NoMatchingSupplier(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	gormDB := newMockGorm(t, db)

	mock.ExpectQuery(`SELECT \* FROM "producer_settings"`).
		WithArgs(1).
		WillReturnRows(settingsRows(true))
	mock.ExpectQuery("SELECT s.supplier_id").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"supplier_id"}))

	router := gin.New()
	router.POST("/api/quote-requests", RequestQuotes(db, gormDB, nil))

	rec := postQuoteRequest(t, router, `{"asset_id":5}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
