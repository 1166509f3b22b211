package services

import (
	"database/sql"
	"fmt"
	"net/smtp"
	"os"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/ProdBay-app/ProdBay-sub001/models"
)

// convertHTMLToText converts HTML content to plain text for email sending
func convertHTMLToText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		// If parsing fails, return the original content
		return htmlContent
	}

	var text strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "p", "div", "br", "h1", "h2", "h3", "h4", "h5", "h6":
				text.WriteString("\n")
			case "li":
				text.WriteString("- ")
			case "table", "tr":
				text.WriteString("\n")
			case "td", "th":
				text.WriteString(" | ")
			}
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			extractText(child)
		}
	}

	extractText(doc)

	result := text.String()
	result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	result = strings.TrimSpace(result)

	return result
}

// EmailService handles email operations with template support
type EmailService struct {
	db       *sql.DB
	host     string
	port     string
	username string
	password string
	from     string
	enabled  bool
}

// NewEmailService creates a new email service instance. SMTP settings come
// from the environment; with no SMTP_HOST the service is disabled and send
// calls report a degraded (non-fatal) error.
func NewEmailService(db *sql.DB) *EmailService {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USERNAME")
	}

	return &EmailService{
		db:       db,
		host:     host,
		port:     port,
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     from,
		enabled:  host != "",
	}
}

// Enabled reports whether SMTP is configured.
func (es *EmailService) Enabled() bool {
	return es.enabled
}

// defaultQuoteRequestTemplate is used when the database holds no template
// for the quote_request type.
var defaultQuoteRequestTemplate = models.EmailTemplate{
	Subject: "Quote request: {{asset_name}} for {{project_name}}",
	Body: "Hello {{supplier_name}},\n\n" +
		"We are looking for a quote for {{asset_name}} ({{asset_specs}}) " +
		"on project {{project_name}}.\n" +
		"Deadline: {{deadline}}\n\n" +
		"Please submit your offer here: {{portal_url}}\n\n" +
		"Regards,\n{{producer_name}}",
	TemplateType: "quote_request",
}

// SendQuoteRequestEmail sends a quote request to a supplier. A custom
// subject/body in emailData overrides the template; otherwise the default
// template (or the stored one selected by customTemplateID) is used.
func (es *EmailService) SendQuoteRequestEmail(emailData models.EmailData, customTemplateID *int) error {
	template, err := es.resolveTemplate("quote_request", customTemplateID)
	if err != nil {
		return err
	}

	subjectTemplate := template.Subject
	bodyTemplate := template.Body
	if emailData.CustomSubject != "" {
		subjectTemplate = emailData.CustomSubject
	}
	if emailData.CustomBody != "" {
		bodyTemplate = emailData.CustomBody
	}

	subject := es.processTemplate(subjectTemplate, emailData)
	body := es.processTemplate(bodyTemplate, emailData)

	// Stored templates may be HTML; deliver plain text
	plainTextBody := convertHTMLToText(body)

	return es.sendEmail(emailData.Email, subject, plainTextBody, template.CC, template.BCC)
}

// resolveTemplate picks the template for a type: an explicit ID wins, then
// the stored default, then the built-in fallback.
func (es *EmailService) resolveTemplate(templateType string, customTemplateID *int) (*models.EmailTemplate, error) {
	if customTemplateID != nil {
		template, err := models.GetTemplateByID(es.db, *customTemplateID)
		if err != nil {
			return nil, fmt.Errorf("failed to get custom template (ID: %d): %v", *customTemplateID, err)
		}
		if template.TemplateType != templateType {
			return nil, fmt.Errorf("custom template type mismatch: expected %s, got %s", templateType, template.TemplateType)
		}
		return template, nil
	}

	template, err := models.GetDefaultTemplate(es.db, templateType)
	if err != nil {
		if err == sql.ErrNoRows {
			fallback := defaultQuoteRequestTemplate
			return &fallback, nil
		}
		return nil, fmt.Errorf("failed to get default template for type '%s': %v", templateType, err)
	}
	return template, nil
}

// processTemplate substitutes {{variable}} placeholders with emailData values.
func (es *EmailService) processTemplate(templateStr string, data models.EmailData) string {
	variables := map[string]string{
		"project_name":  data.ProjectName,
		"client_name":   data.ClientName,
		"producer_name": data.ProducerName,
		"supplier_name": data.SupplierName,
		"asset_name":    data.AssetName,
		"asset_specs":   data.AssetSpecs,
		"deadline":      data.Deadline,
		"portal_url":    data.PortalURL,
		"email":         data.Email,
		"support_email": data.SupportEmail,
	}

	result := templateStr
	for key, value := range variables {
		placeholder := fmt.Sprintf("{{%s}}", key)
		result = strings.ReplaceAll(result, placeholder, value)
	}

	return result
}

// PreviewEmailAsText renders a template with variables and converts it to
// plain text, so the frontend can show how the email will read.
func (es *EmailService) PreviewEmailAsText(htmlContent string, emailData models.EmailData) string {
	return convertHTMLToText(es.processTemplate(htmlContent, emailData))
}

// sendEmail sends an email using SMTP with optional CC and BCC
func (es *EmailService) sendEmail(to, subject, body string, cc, bcc []string) error {
	if !es.enabled {
		return fmt.Errorf("email sending is not configured (SMTP_HOST is empty)")
	}

	auth := smtp.PlainAuth("", es.username, es.password, es.host)

	toList := []string{to}
	if len(cc) > 0 {
		toList = append(toList, cc...)
	}
	if len(bcc) > 0 {
		toList = append(toList, bcc...)
	}

	headers := []string{
		"From: " + es.from,
		"To: " + to,
	}
	if len(cc) > 0 {
		headers = append(headers, "Cc: "+strings.Join(cc, ", "))
	}
	headers = append(headers,
		"Subject: "+subject,
		"",
		body,
	)

	msg := []byte(strings.Join(headers, "\r\n") + "\r\n")

	return smtp.SendMail(
		es.host+":"+es.port,
		auth,
		es.from,
		toList,
		msg,
	)
}

var templateVariableRe = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// ValidateTemplate validates a template string for syntax errors
func (es *EmailService) ValidateTemplate(templateStr string) error {
	openBraces := strings.Count(templateStr, "{{")
	closeBraces := strings.Count(templateStr, "}}")

	if openBraces != closeBraces {
		return fmt.Errorf("unmatched braces in template")
	}

	validVariables := map[string]bool{
		"project_name":  true,
		"client_name":   true,
		"producer_name": true,
		"supplier_name": true,
		"asset_name":    true,
		"asset_specs":   true,
		"deadline":      true,
		"portal_url":    true,
		"email":         true,
		"support_email": true,
	}

	for _, match := range templateVariableRe.FindAllStringSubmatch(templateStr, -1) {
		name := strings.TrimSpace(match[1])
		if !validVariables[name] {
			return fmt.Errorf("unknown template variable: %s", name)
		}
	}

	return nil
}
