package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"

	"github.com/ProdBay-app/ProdBay-sub001/utils"
)

// GenerateQuotePDF godoc
// @Summary Quote summary as PDF
// @Description Renders the quote with its asset and project context for sharing with the client.
// @Tags exports
// @Produce application/pdf
// @Param quote_id path int true "Quote ID"
// @Success 200 {file} file "PDF file"
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quote_pdf/{quote_id} [get]
func GenerateQuotePDF(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		quoteID, err := strconv.Atoi(c.Param("quote_id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid quote ID")
			return
		}

		var (
			cost           float64
			capacityNotes  sql.NullString
			status         string
			quoteCreatedAt time.Time
			supplierName   string
			supplierEmail  string
			assetName      string
			assetSpecs     sql.NullString
			assetTimeline  sql.NullTime
			projectName    string
			clientName     string
		)
		err = db.QueryRow(`
			SELECT q.cost, q.capacity_notes, q.status, q.created_at,
			       s.name, s.contact_email,
			       a.name, a.specifications, a.timeline,
			       p.name, p.client_name
			FROM quotes q
			JOIN suppliers s ON q.supplier_id = s.supplier_id
			JOIN assets a ON q.asset_id = a.asset_id
			JOIN projects p ON a.project_id = p.project_id
			WHERE q.quote_id = $1
		`, quoteID).Scan(
			&cost, &capacityNotes, &status, &quoteCreatedAt,
			&supplierName, &supplierEmail,
			&assetName, &assetSpecs, &assetTimeline,
			&projectName, &clientName,
		)
		if err != nil {
			if err == sql.ErrNoRows {
				utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Quote not found")
				return
			}
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch quote")
			return
		}

		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetMargins(10, 10, 10)

		pdf.SetFont("Arial", "B", 18)
		pdf.Cell(190, 10, "QUOTE SUMMARY")
		pdf.Ln(14)

		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(95, 8, "Project")
		pdf.Cell(95, 8, "Supplier")
		pdf.Ln(8)

		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(90, 6, fmt.Sprintf("%s\nClient: %s", projectName, clientName), "", "", false)
		pdf.SetXY(110, 34)
		pdf.MultiCell(90, 6, fmt.Sprintf("%s\n%s", supplierName, supplierEmail), "", "", false)
		pdf.Ln(10)

		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(95, 6, fmt.Sprintf("Quote No: %d", quoteID))
		pdf.Cell(95, 6, fmt.Sprintf("Status: %s", status))
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(95, 6, fmt.Sprintf("Requested: %s", quoteCreatedAt.Format("02-Jan-2006")))
		if assetTimeline.Valid {
			pdf.Cell(95, 6, fmt.Sprintf("Deadline: %s", assetTimeline.Time.Format("02-Jan-2006")))
		}
		pdf.Ln(10)

		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(100, 8, "Asset", "1", 0, "L", true, 0, "")
		pdf.CellFormat(55, 8, "Status", "1", 0, "C", true, 0, "")
		pdf.CellFormat(35, 8, "Cost", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(100, 8, assetName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(55, 8, status, "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", cost), "1", 1, "R", false, 0, "")

		if assetSpecs.Valid && assetSpecs.String != "" {
			pdf.Ln(5)
			pdf.SetFont("Arial", "B", 11)
			pdf.Cell(190, 8, "Specifications:")
			pdf.Ln(6)
			pdf.SetFont("Arial", "", 10)
			pdf.MultiCell(190, 6, assetSpecs.String, "", "L", false)
		}

		if capacityNotes.Valid && capacityNotes.String != "" {
			pdf.Ln(5)
			pdf.SetFont("Arial", "B", 11)
			pdf.Cell(190, 8, "Supplier Notes:")
			pdf.Ln(6)
			pdf.SetFont("Arial", "", 10)
			pdf.MultiCell(190, 6, capacityNotes.String, "", "L", false)
		}

		pdf.SetY(-20)
		pdf.SetFont("Arial", "I", 8)
		pdf.Cell(190, 6, "Generated on: "+time.Now().Format("2006-01-02 15:04:05"))

		c.Header("Content-Type", "application/pdf")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=quote_%d.pdf", quoteID))
		if err := pdf.Output(c.Writer); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to write PDF")
			return
		}
	}
}
