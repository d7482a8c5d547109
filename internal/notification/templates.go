package notification

import (
	"bytes"
	"html/template"
)

var emailTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <p>Hi {{.Name}},</p>
  <h2 style="margin: 0 0 12px;">{{.Title}}</h2>
  <p>{{.Message}}</p>
  {{if .ActionURL}}<p><a href="{{.ActionURL}}" style="color: #2563eb;">Open in GHX</a></p>{{end}}
  <p style="font-size: 12px; color: #6b7280;">You receive this email because you are a member of the GHX innovation exchange.</p>
</body>
</html>`))

type emailData struct {
	Name      string
	Title     string
	Message   string
	ActionURL string
}

func renderEmail(d emailData) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}
