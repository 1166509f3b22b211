package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"github.com/ProdBay-app/ProdBay-sub001/models"
	"github.com/ProdBay-app/ProdBay-sub001/utils"
)

// CreateSupplier godoc
// @Summary Register a supplier
// @Tags suppliers
// @Accept json
// @Produce json
// @Param request body models.Supplier true "Supplier"
// @Success 201 {object} models.Supplier
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/suppliers [post]
func CreateSupplier(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var supplier models.Supplier
		if err := c.ShouldBindJSON(&supplier); err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid input")
			return
		}
		if supplier.Name == "" || supplier.ContactEmail == "" {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "name and contact_email are required")
			return
		}

		now := time.Now()
		err := db.QueryRow(`
			INSERT INTO suppliers (name, contact_email, service_categories, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
			RETURNING supplier_id
		`, supplier.Name, supplier.ContactEmail, pq.Array(supplier.ServiceCategories), now,
		).Scan(&supplier.SupplierID)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				utils.RespondError(c, http.StatusConflict, utils.CodeConflict, "Supplier with this email already exists")
				return
			}
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to create supplier")
			return
		}
		supplier.CreatedAt = now
		supplier.UpdatedAt = now

		utils.Respond(c, http.StatusCreated, supplier)
	}
}

// GetSuppliers godoc
// @Summary List suppliers
// @Description Optionally filtered to suppliers covering a service category.
// @Tags suppliers
// @Produce json
// @Param category query string false "Service category filter"
// @Success 200 {array} models.Supplier
// @Failure 500 {object} models.ErrorResponse
// @Router /api/suppliers [get]
func GetSuppliers(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := `
			SELECT supplier_id, name, contact_email, service_categories, created_at, updated_at
			FROM suppliers
		`
		var args []interface{}
		if category := c.Query("category"); category != "" {
			query += ` WHERE $1 = ANY(service_categories)`
			args = append(args, category)
		}
		query += ` ORDER BY name`

		rows, err := db.Query(query, args...)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch suppliers")
			return
		}
		defer rows.Close()

		suppliers := []models.Supplier{}
		for rows.Next() {
			var supplier models.Supplier
			if err := rows.Scan(
				&supplier.SupplierID, &supplier.Name, &supplier.ContactEmail,
				&supplier.ServiceCategories, &supplier.CreatedAt, &supplier.UpdatedAt,
			); err != nil {
				utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to scan supplier")
				return
			}
			suppliers = append(suppliers, supplier)
		}

		utils.Respond(c, http.StatusOK, suppliers)
	}
}

// GetSupplierByID godoc
// @Summary Get a supplier with its contacts
// @Tags suppliers
// @Produce json
// @Param id path int true "Supplier ID"
// @Success 200 {object} models.Supplier
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/suppliers/{id} [get]
func GetSupplierByID(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		supplierID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid supplier ID")
			return
		}

		var supplier models.Supplier
		err = db.QueryRow(`
			SELECT supplier_id, name, contact_email, service_categories, created_at, updated_at
			FROM suppliers
			WHERE supplier_id = $1
		`, supplierID).Scan(
			&supplier.SupplierID, &supplier.Name, &supplier.ContactEmail,
			&supplier.ServiceCategories, &supplier.CreatedAt, &supplier.UpdatedAt,
		)
		if err != nil {
			if err == sql.ErrNoRows {
				utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Supplier not found")
				return
			}
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch supplier")
			return
		}

		contacts, err := fetchSupplierContacts(db, supplierID)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch contacts")
			return
		}
		supplier.Contacts = contacts

		utils.Respond(c, http.StatusOK, supplier)
	}
}

// UpdateSupplier godoc
// @Summary Update a supplier
// @Tags suppliers
// @Accept json
// @Produce json
// @Param id path int true "Supplier ID"
// @Param request body models.Supplier true "Fields to update"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/suppliers/{id} [put]
func UpdateSupplier(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		supplierID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid supplier ID")
			return
		}

		var req struct {
			Name              *string   `json:"name"`
			ContactEmail      *string   `json:"contact_email"`
			ServiceCategories *[]string `json:"service_categories"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid input")
			return
		}

		var categories interface{}
		if req.ServiceCategories != nil {
			categories = pq.Array(*req.ServiceCategories)
		}

		result, err := db.Exec(`
			UPDATE suppliers SET
				name = COALESCE($1, name),
				contact_email = COALESCE($2, contact_email),
				service_categories = COALESCE($3, service_categories),
				updated_at = $4
			WHERE supplier_id = $5
		`, req.Name, req.ContactEmail, categories, time.Now(), supplierID)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to update supplier")
			return
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Supplier not found")
			return
		}

		utils.Respond(c, http.StatusOK, gin.H{"message": "Supplier updated"})
	}
}

// DeleteSupplier godoc
// @Summary Delete a supplier
// @Description Refused while the supplier still has quotes, to keep quote history intact.
// @Tags suppliers
// @Produce json
// @Param id path int true "Supplier ID"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/suppliers/{id} [delete]
func DeleteSupplier(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		supplierID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid supplier ID")
			return
		}

		var quoteCount int
		if err := db.QueryRow(
			`SELECT COUNT(*) FROM quotes WHERE supplier_id = $1`, supplierID,
		).Scan(&quoteCount); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to check supplier quotes")
			return
		}
		if quoteCount > 0 {
			utils.RespondError(c, http.StatusConflict, utils.CodeConflict, "Supplier has quotes and cannot be deleted")
			return
		}

		tx, err := db.Begin()
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to delete supplier")
			return
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`DELETE FROM supplier_contacts WHERE supplier_id = $1`, supplierID); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to delete supplier contacts")
			return
		}
		result, err := tx.Exec(`DELETE FROM suppliers WHERE supplier_id = $1`, supplierID)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to delete supplier")
			return
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Supplier not found")
			return
		}
		if err := tx.Commit(); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to delete supplier")
			return
		}

		utils.Respond(c, http.StatusOK, gin.H{"message": "Supplier deleted"})
	}
}

// AddSupplierContact godoc
// @Summary Add a contact person to a supplier
// @Tags suppliers
// @Accept json
// @Produce json
// @Param id path int true "Supplier ID"
// @Param request body models.SupplierContact true "Contact"
// @Success 201 {object} models.SupplierContact
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/suppliers/{id}/contacts [post]
func AddSupplierContact(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		supplierID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid supplier ID")
			return
		}

		var contact models.SupplierContact
		if err := c.ShouldBindJSON(&contact); err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid input")
			return
		}
		if contact.Name == "" || contact.Email == "" {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "name and email are required")
			return
		}
		contact.SupplierID = supplierID

		var exists bool
		if err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM suppliers WHERE supplier_id = $1)`, supplierID,
		).Scan(&exists); err != nil || !exists {
			utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Supplier not found")
			return
		}

		tx, err := db.Begin()
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to add contact")
			return
		}
		defer tx.Rollback()

		// A supplier has at most one primary contact.
		if contact.IsPrimary {
			if _, err := tx.Exec(
				`UPDATE supplier_contacts SET is_primary = false WHERE supplier_id = $1`, supplierID,
			); err != nil {
				utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to update primary contact")
				return
			}
		}

		err = tx.QueryRow(`
			INSERT INTO supplier_contacts (supplier_id, name, email, role, phone, is_primary)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING contact_id
		`, contact.SupplierID, contact.Name, contact.Email, contact.Role, contact.Phone, contact.IsPrimary,
		).Scan(&contact.ContactID)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to add contact")
			return
		}
		if err := tx.Commit(); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to add contact")
			return
		}

		utils.Respond(c, http.StatusCreated, contact)
	}
}

// DeleteSupplierContact godoc
// @Summary Remove a supplier contact
// @Tags suppliers
// @Produce json
// @Param id path int true "Supplier ID"
// @Param contact_id path int true "Contact ID"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/suppliers/{id}/contacts/{contact_id} [delete]
func DeleteSupplierContact(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		supplierID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid supplier ID")
			return
		}
		contactID, err := strconv.Atoi(c.Param("contact_id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid contact ID")
			return
		}

		result, err := db.Exec(
			`DELETE FROM supplier_contacts WHERE contact_id = $1 AND supplier_id = $2`,
			contactID, supplierID,
		)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to delete contact")
			return
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Contact not found")
			return
		}

		utils.Respond(c, http.StatusOK, gin.H{"message": "Contact deleted"})
	}
}

func fetchSupplierContacts(db *sql.DB, supplierID int) ([]models.SupplierContact, error) {
	rows, err := db.Query(`
		SELECT contact_id, supplier_id, name, email, COALESCE(role, ''), COALESCE(phone, ''), is_primary
		FROM supplier_contacts
		WHERE supplier_id = $1
		ORDER BY is_primary DESC, name
	`, supplierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []models.SupplierContact{}
	for rows.Next() {
		var contact models.SupplierContact
		if err := rows.Scan(
			&contact.ContactID, &contact.SupplierID, &contact.Name,
			&contact.Email, &contact.Role, &contact.Phone, &contact.IsPrimary,
		); err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}
