package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ProdBay-app/ProdBay-sub001/models"
)

// GenerateAccessToken returns the random token embedded in supplier-facing
// portal links.
func GenerateAccessToken() string {
	return uuid.NewString()
}

// QuoteRequestResult reports what a quote-request dispatch did per supplier.
type QuoteRequestResult struct {
	Created []models.Quote `json:"created"`
	Skipped []int          `json:"skipped_supplier_ids,omitempty"`
}

// CreateQuoteRequests creates a Pending quote row per supplier for the asset
// and moves the asset (and its project) into Quoting. Suppliers that already
// have a quote for the asset are skipped, keeping the one-quote-per-pair
// invariant. Runs in a single transaction.
func CreateQuoteRequests(db *sql.DB, assetID int, supplierIDs []int) (*QuoteRequestResult, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var projectID int
	err = tx.QueryRow(`SELECT project_id FROM assets WHERE asset_id = $1`, assetID).Scan(&projectID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to fetch asset %d: %w", assetID, err)
	}

	result := &QuoteRequestResult{}
	now := time.Now()

	for _, supplierID := range supplierIDs {
		var existing int
		err := tx.QueryRow(
			`SELECT COUNT(*) FROM quotes WHERE asset_id = $1 AND supplier_id = $2`,
			assetID, supplierID,
		).Scan(&existing)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing quote: %w", err)
		}
		if existing > 0 {
			result.Skipped = append(result.Skipped, supplierID)
			continue
		}

		quote := models.Quote{
			AssetID:     assetID,
			SupplierID:  supplierID,
			Status:      models.QuoteStatusPending,
			AccessToken: GenerateAccessToken(),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		err = tx.QueryRow(`
			INSERT INTO quotes (asset_id, supplier_id, cost, capacity_notes, status, access_token, created_at, updated_at)
			VALUES ($1, $2, 0, '', $3, $4, $5, $6)
			RETURNING quote_id
		`, quote.AssetID, quote.SupplierID, quote.Status, quote.AccessToken, quote.CreatedAt, quote.UpdatedAt).Scan(&quote.QuoteID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert quote for supplier %d: %w", supplierID, err)
		}
		result.Created = append(result.Created, quote)
	}

	if len(result.Created) > 0 {
		if _, err := tx.Exec(
			`UPDATE assets SET status = $1, updated_at = $2 WHERE asset_id = $3 AND status = $4`,
			models.AssetStatusQuoting, now, assetID, models.AssetStatusPending,
		); err != nil {
			return nil, fmt.Errorf("failed to update asset status: %w", err)
		}
		if _, err := tx.Exec(
			`UPDATE projects SET status = $1, updated_at = $2 WHERE project_id = $3 AND status IN ($4, $5)`,
			models.ProjectStatusQuoting, now, projectID, models.ProjectStatusNew, models.ProjectStatusInProgress,
		); err != nil {
			return nil, fmt.Errorf("failed to update project status: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit quote requests: %w", err)
	}
	return result, nil
}

// AcceptQuote accepts a quote and enforces exclusivity in one transaction:
// the quote becomes Accepted, every sibling quote of the same asset becomes
// Rejected, and the asset is assigned the quote's supplier and moves to
// Approved.
func AcceptQuote(db *sql.DB, quoteID int) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var assetID, supplierID int
	var status string
	err = tx.QueryRow(
		`SELECT asset_id, supplier_id, status FROM quotes WHERE quote_id = $1 FOR UPDATE`,
		quoteID,
	).Scan(&assetID, &supplierID, &status)
	if err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("failed to fetch quote %d: %w", quoteID, err)
	}
	if status == models.QuoteStatusRejected {
		return fmt.Errorf("quote %d was already rejected", quoteID)
	}

	now := time.Now()

	if _, err := tx.Exec(
		`UPDATE quotes SET status = $1, updated_at = $2 WHERE quote_id = $3`,
		models.QuoteStatusAccepted, now, quoteID,
	); err != nil {
		return fmt.Errorf("failed to accept quote %d: %w", quoteID, err)
	}

	if _, err := tx.Exec(
		`UPDATE quotes SET status = $1, updated_at = $2 WHERE asset_id = $3 AND quote_id <> $4`,
		models.QuoteStatusRejected, now, assetID, quoteID,
	); err != nil {
		return fmt.Errorf("failed to reject sibling quotes: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE assets SET assigned_supplier_id = $1, status = $2, updated_at = $3 WHERE asset_id = $4`,
		supplierID, models.AssetStatusApproved, now, assetID,
	); err != nil {
		return fmt.Errorf("failed to assign supplier to asset %d: %w", assetID, err)
	}

	return tx.Commit()
}

// RejectQuote marks a single quote Rejected without touching its siblings.
func RejectQuote(db *sql.DB, quoteID int) error {
	result, err := db.Exec(
		`UPDATE quotes SET status = $1, updated_at = $2 WHERE quote_id = $3`,
		models.QuoteStatusRejected, time.Now(), quoteID,
	)
	if err != nil {
		return fmt.Errorf("failed to reject quote %d: %w", quoteID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FetchQuoteByToken loads the supplier-facing view of a quote through its
// portal access token.
func FetchQuoteByToken(db *sql.DB, token string) (*models.PortalQuote, error) {
	var portal models.PortalQuote
	var notes sql.NullString
	var specs sql.NullString
	var timeline models.DateOnly

	err := db.QueryRow(`
		SELECT q.quote_id, q.asset_id, q.supplier_id, q.cost, q.capacity_notes,
		       q.status, q.created_at, q.updated_at,
		       a.asset_id, a.project_id, a.name, a.specifications, a.timeline, a.status,
		       p.name
		FROM quotes q
		JOIN assets a ON q.asset_id = a.asset_id
		JOIN projects p ON a.project_id = p.project_id
		WHERE q.access_token = $1
	`, token).Scan(
		&portal.Quote.QuoteID, &portal.Quote.AssetID, &portal.Quote.SupplierID,
		&portal.Quote.Cost, &notes, &portal.Quote.Status,
		&portal.Quote.CreatedAt, &portal.Quote.UpdatedAt,
		&portal.Asset.AssetID, &portal.Asset.ProjectID, &portal.Asset.Name,
		&specs, &timeline, &portal.Asset.Status,
		&portal.ProjectName,
	)
	if err != nil {
		return nil, err
	}

	portal.Quote.CapacityNotes = notes.String
	portal.Asset.Specifications = specs.String
	if !timeline.IsZero() {
		portal.Asset.Timeline = &timeline
		deadline := timeline.Format("2006-01-02")
		portal.Deadline = &deadline
	}

	return &portal, nil
}

// SubmitQuoteByToken records a supplier's bid through the portal link. Only
// Pending or Submitted quotes can be (re)submitted; decided quotes are final.
func SubmitQuoteByToken(db *sql.DB, token string, submission models.QuoteSubmission) (*models.Quote, error) {
	var quote models.Quote
	err := db.QueryRow(`
		UPDATE quotes
		SET cost = $1, capacity_notes = $2, status = $3, updated_at = $4
		WHERE access_token = $5 AND status IN ($6, $3)
		RETURNING quote_id, asset_id, supplier_id, cost, capacity_notes, status, created_at, updated_at
	`, submission.Cost, submission.CapacityNotes, models.QuoteStatusSubmitted,
		time.Now(), token, models.QuoteStatusPending,
	).Scan(
		&quote.QuoteID, &quote.AssetID, &quote.SupplierID, &quote.Cost,
		&quote.CapacityNotes, &quote.Status, &quote.CreatedAt, &quote.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// FetchQuotableAssetsForSupplier lists the open quote requests addressed to a
// supplier: pending or submitted quotes with their asset and project context.
func FetchQuotableAssetsForSupplier(db *sql.DB, supplierID int) ([]models.PortalQuote, error) {
	rows, err := db.Query(`
		SELECT q.quote_id, q.asset_id, q.supplier_id, q.cost, q.capacity_notes,
		       q.status, q.access_token, q.created_at, q.updated_at,
		       a.asset_id, a.project_id, a.name, a.specifications, a.timeline, a.status,
		       p.name
		FROM quotes q
		JOIN assets a ON q.asset_id = a.asset_id
		JOIN projects p ON a.project_id = p.project_id
		WHERE q.supplier_id = $1 AND q.status IN ($2, $3)
		ORDER BY q.created_at DESC
	`, supplierID, models.QuoteStatusPending, models.QuoteStatusSubmitted)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quotable assets for supplier %d: %w", supplierID, err)
	}
	defer rows.Close()

	var portals []models.PortalQuote
	for rows.Next() {
		var portal models.PortalQuote
		var notes, specs sql.NullString
		var timeline models.DateOnly
		if err := rows.Scan(
			&portal.Quote.QuoteID, &portal.Quote.AssetID, &portal.Quote.SupplierID,
			&portal.Quote.Cost, &notes, &portal.Quote.Status, &portal.Quote.AccessToken,
			&portal.Quote.CreatedAt, &portal.Quote.UpdatedAt,
			&portal.Asset.AssetID, &portal.Asset.ProjectID, &portal.Asset.Name,
			&specs, &timeline, &portal.Asset.Status,
			&portal.ProjectName,
		); err != nil {
			return nil, fmt.Errorf("error scanning quotable asset: %w", err)
		}
		portal.Quote.CapacityNotes = notes.String
		portal.Asset.Specifications = specs.String
		if !timeline.IsZero() {
			portal.Asset.Timeline = &timeline
		}
		portals = append(portals, portal)
	}

	return portals, rows.Err()
}
