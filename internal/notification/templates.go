package notification

import (
	"bytes"
	"fmt"
	"html/template"
)

var tmpl = template.Must(template.New("email").Parse(`
{{define "application_received"}}
<h2>New application for {{.JobTitle}}</h2>
<p>{{.ApplicantName}} has applied to your posting <strong>{{.JobTitle}}</strong>.</p>
<p>Open your dashboard to review the application and the attached CV.</p>
{{end}}

{{define "application_confirmation"}}
<h2>Application sent</h2>
<p>Your application for <strong>{{.JobTitle}}</strong> has been submitted.</p>
<p>The employer will be in touch if your profile is a match.</p>
{{end}}

{{define "application_status_update"}}
<h2>Update on your application</h2>
<p>The status of your application for <strong>{{.JobTitle}}</strong> changed
from <em>{{.OldStatus}}</em> to <em>{{.NewStatus}}</em>.</p>
{{end}}

{{define "job_published"}}
<h2>{{.JobTitle}} is live</h2>
<p>Your posting <strong>{{.JobTitle}}</strong> has been published and is now
visible to job seekers. It stays live for 30 days.</p>
{{end}}
`))

type templateData struct {
	JobTitle      string
	ApplicantName string
	OldStatus     string
	NewStatus     string
}

func render(name string, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
