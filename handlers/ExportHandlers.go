package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/ProdBay-app/ProdBay-sub001/repository"
	"github.com/ProdBay-app/ProdBay-sub001/utils"
)

// ExportProjectQuotes godoc
// @Summary Export a project's quotes as XLSX
// @Description One row per quote with asset, supplier, cost and status, plus a totals row for accepted quotes.
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param project_id path int true "Project ID"
// @Success 200 {file} file "XLSX file"
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/export/quotes/{project_id} [get]
func ExportProjectQuotes(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.Atoi(c.Param("project_id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid project ID")
			return
		}

		detail, err := repository.FetchProjectDetail(db, projectID)
		if err != nil {
			if err == sql.ErrNoRows {
				utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Project not found")
				return
			}
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch project")
			return
		}

		f := excelize.NewFile()
		defer f.Close()

		sheet := "Quotes"
		f.SetSheetName("Sheet1", sheet)

		headers := []string{"Quote ID", "Asset", "Supplier", "Cost", "Status", "Capacity Notes", "Requested At"}
		for i, header := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, header)
		}

		headerStyle, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"DDDDDD"}, Pattern: 1},
		})
		if err == nil {
			f.SetCellStyle(sheet, "A1", "G1", headerStyle)
		}

		var acceptedTotal float64
		row := 2
		for _, quote := range detail.Quotes {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), quote.QuoteID)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), quote.AssetName)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), quote.SupplierName)
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), quote.Cost)
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), quote.Status)
			f.SetCellValue(sheet, fmt.Sprintf("F%d", row), quote.CapacityNotes)
			f.SetCellValue(sheet, fmt.Sprintf("G%d", row), quote.CreatedAt.Format("2006-01-02 15:04"))
			if quote.Status == "Accepted" {
				acceptedTotal += quote.Cost
			}
			row++
		}

		row++
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), "Accepted total")
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), acceptedTotal)

		f.SetColWidth(sheet, "B", "C", 24)
		f.SetColWidth(sheet, "F", "G", 28)

		filename := fmt.Sprintf("quotes_project_%d.xlsx", projectID)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
		if err := f.Write(c.Writer); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to write spreadsheet")
			return
		}
	}
}
