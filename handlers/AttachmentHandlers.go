package handlers

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ProdBay-app/ProdBay-sub001/utils"
)

// attachmentDir is where brief attachments land, one subdirectory per
// project. Overridable for deployments that mount shared storage.
func attachmentDir() string {
	if dir := os.Getenv("ATTACHMENT_DIR"); dir != "" {
		return dir
	}
	return "/var/www/prodbay-attachments/"
}

// UploadProjectAttachment godoc
// @Summary Attach a file to a project brief
// @Description Multipart upload, field name "file". Files are stored per project with a timestamp prefix.
// @Tags attachments
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Project ID"
// @Param file formData file true "File to upload"
// @Success 201 {object} models.APIResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/projects/{id}/attachments [post]
func UploadProjectAttachment(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid project ID")
			return
		}

		var exists bool
		if err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM projects WHERE project_id = $1)`, projectID,
		).Scan(&exists); err != nil || !exists {
			utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Project not found")
			return
		}

		file, handler, err := c.Request.FormFile("file")
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Error retrieving the file")
			return
		}
		defer file.Close()

		filename := filepath.Base(handler.Filename)
		if filename == "" || filename == "." || filename == string(os.PathSeparator) {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid file name")
			return
		}

		projectDir := filepath.Join(attachmentDir(), strconv.Itoa(projectID))
		if err := os.MkdirAll(projectDir, 0755); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Unable to create directory")
			return
		}

		uniqueName := fmt.Sprintf("%d-%s", time.Now().Unix(), filename)
		dstPath := filepath.Join(projectDir, uniqueName)

		dst, err := os.Create(dstPath)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Unable to create the file")
			return
		}
		defer dst.Close()

		if _, err := io.Copy(dst, file); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Unable to save the file")
			return
		}

		utils.Respond(c, http.StatusCreated, gin.H{
			"file_name": uniqueName,
			"file_size": handler.Size,
		})
	}
}

// ListProjectAttachments godoc
// @Summary List files attached to a project
// @Tags attachments
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/projects/{id}/attachments [get]
func ListProjectAttachments(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid project ID")
			return
		}

		projectDir := filepath.Join(attachmentDir(), strconv.Itoa(projectID))
		entries, err := os.ReadDir(projectDir)
		if err != nil {
			if os.IsNotExist(err) {
				utils.Respond(c, http.StatusOK, []gin.H{})
				return
			}
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Unable to read attachments")
			return
		}

		files := []gin.H{}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			files = append(files, gin.H{
				"file_name":   entry.Name(),
				"file_size":   info.Size(),
				"uploaded_at": info.ModTime().Format(time.RFC3339),
			})
		}

		utils.Respond(c, http.StatusOK, files)
	}
}

// ServeProjectAttachment godoc
// @Summary Download a project attachment
// @Tags attachments
// @Produce application/octet-stream
// @Param id path int true "Project ID"
// @Param file query string true "File name"
// @Success 200 {file} file "File content"
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/projects/{id}/attachments/download [get]
func ServeProjectAttachment(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid project ID")
			return
		}

		fileName := c.Query("file")
		if fileName == "" {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "file parameter is required")
			return
		}

		// Guard against path traversal out of the project directory.
		cleanName := filepath.Clean(fileName)
		if cleanName != fileName || strings.Contains(cleanName, "..") {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid file path")
			return
		}

		projectDir, err := filepath.Abs(filepath.Join(attachmentDir(), strconv.Itoa(projectID)))
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Server error")
			return
		}
		filePath := filepath.Join(projectDir, cleanName)
		if !strings.HasPrefix(filePath, projectDir+string(os.PathSeparator)) {
			utils.RespondError(c, http.StatusForbidden, utils.CodeForbidden, "Access denied")
			return
		}

		info, err := os.Stat(filePath)
		if os.IsNotExist(err) || (info != nil && info.IsDir()) {
			utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "File not found")
			return
		}

		c.File(filePath)
	}
}
