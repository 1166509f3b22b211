package handlers

import (
	"bytes"
	"database/sql"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"

	"github.com/ProdBay-app/ProdBay-sub001/repository"
	"github.com/ProdBay-app/ProdBay-sub001/utils"
)

func addLabel(img *image.RGBA, x, y int, label string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{0, 0, 0, 255}),
		Face: inconsolata.Regular8x16,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)},
	}
	d.DrawString(label)
}

func addLabelBold(img *image.RGBA, x, y int, label string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{30, 30, 30, 255}),
		Face: inconsolata.Bold8x16,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)},
	}
	d.DrawString(label)
}

func truncateLabel(s string, max int) string {
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}

// GeneratePortalQR godoc
// @Summary QR code for a supplier portal link
// @Description Renders the portal URL for the quote's access token as a labeled QR image, for print handouts.
// @Tags qr
// @Produce jpeg
// @Param token path string true "Access token"
// @Success 200 {file} file "JPEG image"
// @Failure 404 {object} models.ErrorResponse
// @Router /api/portal_qr/{token} [get]
func GeneratePortalQR(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.Param("token"))
		if token == "" {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Missing access token")
			return
		}

		portal, err := repository.FetchQuoteByToken(db, token)
		if err != nil {
			if err == sql.ErrNoRows {
				utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Quote not found")
				return
			}
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch quote")
			return
		}

		portalURL := PortalURLForToken(token)
		qr, err := qrcode.New(portalURL, qrcode.Medium)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "QR code generation failed")
			return
		}
		qrImg := qr.Image(512)

		qrSize := qrImg.Bounds().Dy()
		padding := 30
		lineHeight := 28
		textAreaHeight := 4*lineHeight + padding
		totalHeight := qrSize + padding + textAreaHeight

		combinedImg := image.NewRGBA(image.Rect(0, 0, qrSize, totalHeight))
		draw.Draw(combinedImg, combinedImg.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)
		draw.Draw(combinedImg, image.Rect(0, 0, qrSize, qrSize), qrImg, image.Point{}, draw.Src)

		separatorY := qrSize + padding/2
		for x := 0; x < qrSize; x++ {
			combinedImg.Set(x, separatorY, color.RGBA{200, 200, 200, 255})
		}

		startY := qrSize + padding + lineHeight
		xPos := 20

		deadline := "N/A"
		if portal.Deadline != nil {
			deadline = *portal.Deadline
		}

		addLabelBold(combinedImg, xPos, startY, "Project:")
		addLabel(combinedImg, xPos+120, startY, truncateLabel(portal.ProjectName, 30))

		addLabelBold(combinedImg, xPos, startY+lineHeight, "Asset:")
		addLabel(combinedImg, xPos+120, startY+lineHeight, truncateLabel(portal.Asset.Name, 30))

		addLabelBold(combinedImg, xPos, startY+2*lineHeight, "Deadline:")
		addLabel(combinedImg, xPos+120, startY+2*lineHeight, deadline)

		addLabelBold(combinedImg, xPos, startY+3*lineHeight, "Status:")
		addLabel(combinedImg, xPos+120, startY+3*lineHeight, portal.Quote.Status)

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, combinedImg, nil); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Image encoding failed")
			return
		}

		c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
	}
}
