package repository

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/ProdBay-app/ProdBay-sub001/models"
	"github.com/ProdBay-app/ProdBay-sub001/utils"
)

// FetchProjectDetail loads the composite project view: the project row, its
// assets, and all quotes for those assets. The asset and quote queries run
// back to back without a transaction; a concurrent mutation between them can
// produce a transiently inconsistent read, which the dashboard tolerates.
func FetchProjectDetail(db *sql.DB, projectID int) (*models.ProjectDetail, error) {
	var detail models.ProjectDetail

	query := `
		SELECT project_id, name, client_name, brief, physical_parameters,
		       financial_parameters, timeline, status, created_at, updated_at
		FROM projects
		WHERE project_id = $1
	`
	var physical, financial sql.NullString
	var timeline models.DateOnly
	err := db.QueryRow(query, projectID).Scan(
		&detail.Project.ProjectID,
		&detail.Project.Name,
		&detail.Project.ClientName,
		&detail.Project.Brief,
		&physical,
		&financial,
		&timeline,
		&detail.Project.Status,
		&detail.Project.CreatedAt,
		&detail.Project.UpdatedAt,
	)
	detail.Project.PhysicalParameters = physical.String
	detail.Project.FinancialParameters = financial.String
	if !timeline.IsZero() {
		detail.Project.Timeline = &timeline
	}
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to fetch project %d: %w", projectID, err)
	}

	assets, err := FetchAssetsByProject(db, projectID)
	if err != nil {
		return nil, err
	}
	detail.Assets = assets

	assetIDs := make([]int, 0, len(assets))
	for _, asset := range assets {
		assetIDs = append(assetIDs, asset.AssetID)
	}

	quotes, err := FetchQuotesByAssetIDs(db, assetIDs)
	if err != nil {
		return nil, err
	}
	detail.Quotes = quotes

	return &detail, nil
}

// FetchAssetsByProject returns the assets of a project ordered by creation.
func FetchAssetsByProject(db *sql.DB, projectID int) ([]models.Asset, error) {
	rows, err := db.Query(`
		SELECT asset_id, project_id, name, specifications, timeline, status,
		       assigned_supplier_id, source_text, created_at, updated_at
		FROM assets
		WHERE project_id = $1
		ORDER BY asset_id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assets for project %d: %w", projectID, err)
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		var asset models.Asset
		var specs sql.NullString
		var timeline models.DateOnly
		var supplierID sql.NullInt64
		if err := rows.Scan(
			&asset.AssetID, &asset.ProjectID, &asset.Name, &specs,
			&timeline, &asset.Status, &supplierID,
			&asset.SourceText, &asset.CreatedAt, &asset.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning asset: %w", err)
		}
		asset.Specifications = specs.String
		if !timeline.IsZero() {
			asset.Timeline = &timeline
		}
		if supplierID.Valid {
			id := int(supplierID.Int64)
			asset.AssignedSupplierID = &id
		}
		assets = append(assets, asset)
	}

	return assets, rows.Err()
}

// FetchQuotesByAssetIDs returns all quotes whose asset is in the given id
// list, joined to supplier and asset names for display.
func FetchQuotesByAssetIDs(db *sql.DB, assetIDs []int) ([]models.Quote, error) {
	if len(assetIDs) == 0 {
		return nil, nil
	}

	rows, err := db.Query(`
		SELECT q.quote_id, q.asset_id, q.supplier_id, q.cost, q.capacity_notes,
		       q.status, q.access_token, s.name, a.name, q.created_at, q.updated_at
		FROM quotes q
		JOIN suppliers s ON q.supplier_id = s.supplier_id
		JOIN assets a ON q.asset_id = a.asset_id
		WHERE q.asset_id = ANY($1)
		ORDER BY q.quote_id
	`, pq.Array(assetIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quotes: %w", err)
	}
	defer rows.Close()

	var quotes []models.Quote
	for rows.Next() {
		var quote models.Quote
		var notes sql.NullString
		if err := rows.Scan(
			&quote.QuoteID, &quote.AssetID, &quote.SupplierID, &quote.Cost,
			&notes, &quote.Status, &quote.AccessToken, &quote.SupplierName,
			&quote.AssetName, &quote.CreatedAt, &quote.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning quote: %w", err)
		}
		quote.CapacityNotes = notes.String
		quotes = append(quotes, quote)
	}

	return quotes, rows.Err()
}

// DeleteProjectCascade deletes a project with its assets and their quotes in
// a single transaction, so a mid-sequence failure cannot leave orphan rows.
func DeleteProjectCascade(db *sql.DB, projectID int) error {
	ctx, cancel := utils.GetSlowQueryContext(nil)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM quotes
		WHERE asset_id IN (SELECT asset_id FROM assets WHERE project_id = $1)
	`, projectID); err != nil {
		return fmt.Errorf("failed to delete quotes for project %d: %w", projectID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM assets WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("failed to delete assets for project %d: %w", projectID, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE project_id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete project %d: %w", projectID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}

// DeleteAssetCascade deletes an asset and its quotes in a single transaction.
func DeleteAssetCascade(db *sql.DB, assetID int) error {
	ctx, cancel := utils.GetSlowQueryContext(nil)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM quotes WHERE asset_id = $1`, assetID); err != nil {
		return fmt.Errorf("failed to delete quotes for asset %d: %w", assetID, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM assets WHERE asset_id = $1`, assetID)
	if err != nil {
		return fmt.Errorf("failed to delete asset %d: %w", assetID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}

// ComputeProjectDashboard derives the progress figures the client dashboard
// shows: delivered share of assets and the summed cost of accepted quotes.
func ComputeProjectDashboard(db *sql.DB, projectID int) (*models.ProjectDashboard, error) {
	dashboard := models.ProjectDashboard{ProjectID: projectID}

	err := db.QueryRow(`SELECT status FROM projects WHERE project_id = $1`, projectID).Scan(&dashboard.Status)
	if err != nil {
		return nil, err
	}

	err = db.QueryRow(`
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = $2)
		FROM assets
		WHERE project_id = $1
	`, projectID, models.AssetStatusDelivered).Scan(&dashboard.TotalAssets, &dashboard.DeliveredAssets)
	if err != nil {
		return nil, fmt.Errorf("failed to count assets: %w", err)
	}

	if dashboard.TotalAssets > 0 {
		dashboard.ProgressPercent = float64(dashboard.DeliveredAssets) / float64(dashboard.TotalAssets) * 100
	}

	err = db.QueryRow(`
		SELECT COALESCE(SUM(q.cost), 0)
		FROM quotes q
		JOIN assets a ON q.asset_id = a.asset_id
		WHERE a.project_id = $1 AND q.status = $2
	`, projectID, models.QuoteStatusAccepted).Scan(&dashboard.TotalAcceptedCost)
	if err != nil {
		return nil, fmt.Errorf("failed to sum accepted quotes: %w", err)
	}

	return &dashboard, nil
}
