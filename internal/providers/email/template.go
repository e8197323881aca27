package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

const TemplateInviteMember = "invite_member"

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

func render(name string, data map[string]any) (string, string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name+".html", data); err != nil {
		return "", "", fmt.Errorf("render email template %s: %w", name, err)
	}
	return subjectFor(name, data), body.String(), nil
}

func subjectFor(name string, data map[string]any) string {
	if subject, ok := data["subject"].(string); ok && subject != "" {
		return subject
	}
	switch name {
	case TemplateInviteMember:
		if agency, ok := data["agency_name"].(string); ok && agency != "" {
			return fmt.Sprintf("You're invited to join %s", agency)
		}
		return "You're invited to join an agency"
	default:
		return "Notification"
	}
}
