package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProdBay-app/ProdBay-sub001/models"
	"github.com/ProdBay-app/ProdBay-sub001/utils"
)

type refreshEnvelope struct {
	Success bool                 `json:"success"`
	Data    models.LoginResponse `json:"data"`
}

func postRefresh(t *testing.T, router *gin.Engine, refreshToken string) *httptest.ResponseRecorder {
	t.Helper()
	body := fmt.Sprintf(`{"refresh_token":%q}`, refreshToken)
	req := httptest.NewRequest(http.MethodPost, "/api/refresh-token", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func producerUserRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "password", "role", "supplier_id", "suspended"}).
		AddRow(1, "pam@prodbay.example", "hash", "producer", nil, false)
}

func expectRefresh(mock sqlmock.Sqlmock, refreshToken string, refreshExpiresAt time.Time) {
	mock.ExpectQuery("SELECT id, email, password, role, supplier_id, suspended FROM users").
		WithArgs("pam@prodbay.example").
		WillReturnRows(producerUserRows())
	mock.ExpectQuery("SELECT refresh_token_expires_at FROM session").
		WithArgs(refreshToken, 1).
		WillReturnRows(sqlmock.NewRows([]string{"refresh_token_expires_at"}).AddRow(refreshExpiresAt))
	mock.ExpectExec("UPDATE session SET session_id").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), refreshToken, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

// The same refresh token must stay redeemable across consecutive refreshes:
// the session row is found by refresh token, not by the rotating session id.
func TestRefreshToken_SameTokenWorksTwice(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	refreshToken, err := utils.GenerateRefreshToken("pam@prodbay.example", "initial-access-token")
	require.NoError(t, err)

	farExpiry := time.Now().Add(14 * 24 * time.Hour)
	expectRefresh(mock, refreshToken, farExpiry)
	expectRefresh(mock, refreshToken, farExpiry)

	router := gin.New()
	router.POST("/api/refresh-token", RefreshTokenHandler(db))

	first := postRefresh(t, router, refreshToken)
	require.Equal(t, http.StatusOK, first.Code)

	var firstResp refreshEnvelope
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &firstResp))
	assert.True(t, firstResp.Success)
	assert.NotEmpty(t, firstResp.Data.AccessToken)
	assert.Equal(t, refreshToken, firstResp.Data.RefreshToken)

	second := postRefresh(t, router, refreshToken)
	require.Equal(t, http.StatusOK, second.Code)

	var secondResp refreshEnvelope
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &secondResp))
	assert.True(t, secondResp.Success)
	assert.NotEmpty(t, secondResp.Data.AccessToken)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshToken_RotatesWhenExpiringSoon(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	refreshToken, err := utils.GenerateRefreshToken("pam@prodbay.example", "initial-access-token")
	require.NoError(t, err)

	expectRefresh(mock, refreshToken, time.Now().Add(2*time.Hour))
	mock.ExpectExec("UPDATE session SET refresh_token =").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	router := gin.New()
	router.POST("/api/refresh-token", RefreshTokenHandler(db))

	rec := postRefresh(t, router, refreshToken)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp refreshEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.RefreshToken)
	assert.NotEqual(t, refreshToken, resp.Data.RefreshToken)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshToken_UnknownTokenRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	refreshToken, err := utils.GenerateRefreshToken("pam@prodbay.example", "initial-access-token")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, email, password, role, supplier_id, suspended FROM users").
		WithArgs("pam@prodbay.example").
		WillReturnRows(producerUserRows())
	mock.ExpectQuery("SELECT refresh_token_expires_at FROM session").
		WithArgs(refreshToken, 1).
		WillReturnError(sql.ErrNoRows)

	router := gin.New()
	router.POST("/api/refresh-token", RefreshTokenHandler(db))

	rec := postRefresh(t, router, refreshToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshToken_SuspendedAccountRevokes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	refreshToken, err := utils.GenerateRefreshToken("pam@prodbay.example", "initial-access-token")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, email, password, role, supplier_id, suspended FROM users").
		WithArgs("pam@prodbay.example").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password", "role", "supplier_id", "suspended"}).
			AddRow(1, "pam@prodbay.example", "hash", "producer", nil, true))
	mock.ExpectExec("UPDATE session SET refresh_token = NULL").
		WithArgs(refreshToken).
		WillReturnResult(sqlmock.NewResult(0, 1))

	router := gin.New()
	router.POST("/api/refresh-token", RefreshTokenHandler(db))

	rec := postRefresh(t, router, refreshToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
