package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ProdBay-app/ProdBay-sub001/models"
)

func TestProcessTemplate_SubstitutesVariables(t *testing.T) {
	es := &EmailService{}

	result := es.processTemplate(
		"Hello {{supplier_name}}, quote {{asset_name}} for {{project_name}} at {{portal_url}}",
		models.EmailData{
			SupplierName: "PrintPro Ltd",
			AssetName:    "Printing",
			ProjectName:  "Autumn Launch Event",
			PortalURL:    "https://prodbay.example/portal/abc",
		},
	)

	assert.Equal(t, "Hello PrintPro Ltd, quote Printing for Autumn Launch Event at https://prodbay.example/portal/abc", result)
}

func TestProcessTemplate_LeavesUnknownPlaceholders(t *testing.T) {
	es := &EmailService{}

	result := es.processTemplate("Hi {{nobody}}", models.EmailData{})
	assert.Equal(t, "Hi {{nobody}}", result)
}

func TestConvertHTMLToText(t *testing.T) {
	text := convertHTMLToText("<p>Hello <b>PrintPro</b></p><ul><li>4 banners</li><li>2 posters</li></ul>")

	assert.Contains(t, text, "Hello PrintPro")
	assert.Contains(t, text, "- 4 banners")
	assert.Contains(t, text, "- 2 posters")
	assert.NotContains(t, text, "<p>")
}

func TestValidateTemplate(t *testing.T) {
	es := &EmailService{}

	assert.NoError(t, es.ValidateTemplate("Hello {{supplier_name}}, see {{portal_url}}"))
	assert.Error(t, es.ValidateTemplate("Hello {{supplier_name}"))
	assert.Error(t, es.ValidateTemplate("Hello {{who_is_this}}"))
}

func TestSendEmail_DisabledWithoutSMTPHost(t *testing.T) {
	es := &EmailService{enabled: false}

	err := es.sendEmail("a@b.example", "subject", "body", nil, nil)
	assert.Error(t, err)
}
