package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/ProdBay-app/ProdBay-sub001/models"
)

var db *sql.DB

func InitDB() *sql.DB {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")

	if user == "" || dbname == "" || host == "" {
		log.Fatal("Missing required database configuration (DB_USER, DB_NAME, DB_HOST)")
	}
	if port == "" {
		port = "5432"
	}

	connStr := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%s sslmode=disable",
		user, password, dbname, host, port)

	var err error
	db, err = sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Pool tuned for light server load
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	return db
}

// SaveSession saves a new session for a user, handling multiple device support.
// If allowMultipleSessions is false, all existing sessions are deleted first.
func SaveSession(db *sql.DB, session *models.Session, allowMultipleSessions bool) error {
	if !allowMultipleSessions {
		deleteAllQuery := `DELETE FROM session WHERE user_id = $1`
		_, err := db.Exec(deleteAllQuery, session.UserID)
		if err != nil {
			return fmt.Errorf("failed to delete all user sessions: %v", err)
		}
	}

	insertQuery := `INSERT INTO session (user_id, session_id, host_name, ip_address, timestp, expires_at, refresh_token, refresh_token_expires_at)
                    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := db.Exec(insertQuery, session.UserID, session.SessionID, session.HostName, session.IPAddress, session.Timestamp, session.ExpiresAt, session.RefreshToken, session.RefreshTokenExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert new session: %v", err)
	}
	return nil
}

// SaveRefreshToken stores a refresh token in the session table bound to a session,
// so each device/session has its own refresh token.
func SaveRefreshToken(db *sql.DB, userID int, sessionID string, refreshToken string, expiresAt time.Time) error {
	updateQuery := `UPDATE session SET refresh_token = $1, refresh_token_expires_at = $2 WHERE session_id = $3 AND user_id = $4`

	result, err := db.Exec(updateQuery, refreshToken, expiresAt, sessionID, userID)
	if err != nil {
		return fmt.Errorf("failed to save refresh token: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %v", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("session not found for session_id: %s and user_id: %d", sessionID, userID)
	}

	return nil
}

// DeleteRefreshToken revokes a refresh token so it can no longer be redeemed.
// The session row itself stays; only the refresh credential is cleared.
func DeleteRefreshToken(db *sql.DB, refreshToken string) error {
	_, err := db.Exec(`UPDATE session SET refresh_token = NULL, refresh_token_expires_at = NULL WHERE refresh_token = $1`, refreshToken)
	if err != nil {
		return fmt.Errorf("failed to delete refresh token: %v", err)
	}
	return nil
}

// DeleteSession removes every session a user has open, across devices.
func DeleteSession(db *sql.DB, userID int) error {
	query := `DELETE FROM session WHERE user_id = $1`
	_, err := db.Exec(query, userID)
	return err
}

func DeleteSessionByID(db *sql.DB, sessionID string, userID int) error {
	result, err := db.Exec(`DELETE FROM session WHERE session_id = $1 AND user_id = $2`, sessionID, userID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New("session not found")
	}
	return nil
}

func GetUserByEmail(db *sql.DB, email string) (*models.User, error) {
	var user models.User
	query := `SELECT id, email, password, role, supplier_id, suspended FROM users WHERE LOWER(email) = LOWER($1)`

	err := db.QueryRow(query, email).Scan(&user.ID, &user.Email, &user.Password, &user.Role, &user.SupplierID, &user.Suspended)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user with email %s not found", email)
		}
		return nil, fmt.Errorf("failed to query user: %v", err)
	}

	return &user, nil
}

// GetUserBySessionID retrieves a User by the given session ID from the database.
func GetUserBySessionID(db *sql.DB, sessionID string) (*models.User, error) {
	query := `
		SELECT u.id, u.email, u.first_name, u.last_name, u.role, u.supplier_id,
		       u.created_at, u.updated_at, u.last_access, u.suspended
		FROM session s
		JOIN users u ON s.user_id = u.id
		WHERE s.session_id = $1 AND s.expires_at > NOW()
	`

	var user models.User
	var lastAccess sql.NullTime

	err := db.QueryRow(query, sessionID).Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName,
		&user.Role, &user.SupplierID,
		&user.CreatedAt, &user.UpdatedAt, &lastAccess, &user.Suspended,
	)
	if err != nil || user.Suspended {
		if err == sql.ErrNoRows {
			return nil, errors.New("user not found for the given session ID")
		}
		if err == nil {
			return nil, errors.New("account suspended")
		}
		return nil, err
	}

	if lastAccess.Valid {
		user.LastAccess = lastAccess.Time
	}

	return &user, nil
}

func CleanupExpiredSessions(db *sql.DB) error {
	threshold := time.Now().Add(-24 * time.Hour)
	_, err := db.Exec("DELETE FROM session WHERE expires_at < $1", threshold)
	return err
}

// ExpireStalePendingQuotes rejects quote rows that were requested but never
// answered within the given window, so portal links do not stay live forever.
func ExpireStalePendingQuotes(db *sql.DB, maxAge time.Duration) (int64, error) {
	threshold := time.Now().Add(-maxAge)
	result, err := db.Exec(
		`UPDATE quotes SET status = $1, updated_at = NOW() WHERE status = $2 AND created_at < $3`,
		models.QuoteStatusRejected, models.QuoteStatusPending, threshold,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
