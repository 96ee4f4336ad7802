package smtpclient

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
)

const submissionNotificationTemplate = `
<h2>Questionário respondido</h2>
<p><strong>{{.Company}}</strong> concluiu o questionário <strong>{{.TemplateSlug}}</strong>.</p>
<table>
	<tr><td>Enviado por</td><td>{{.SubmittedBy}}</td></tr>
	<tr><td>Enviado em</td><td>{{.SubmittedAt}}</td></tr>
	{{if .IsTest}}<tr><td colspan="2"><em>Envio de teste — o CRM não foi atualizado.</em></td></tr>{{end}}
</table>
<p><a href="{{.AdminURL}}">Abrir no painel</a></p>
`

var submissionTmpl = template.Must(template.New("submission-notification").Parse(submissionNotificationTemplate))

// BuildSubmissionNotification renders the internal email sent to the
// brokerage team when a client submits a questionnaire.
func BuildSubmissionNotification(
	instance formTypes.FormInstance,
	templateSlug string,
	adminBaseURL string,
) (subject string, htmlContent string, err error) {
	subject = fmt.Sprintf("Questionário respondido: %s", instance.Company)
	if instance.IsTestSubmission {
		subject = "[TESTE] " + subject
	}

	submittedAt := instance.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now()
	}

	data := map[string]interface{}{
		"Company":      instance.Company,
		"TemplateSlug": templateSlug,
		"SubmittedBy":  instance.SubmittedByEmail,
		"SubmittedAt":  submittedAt.Format("02/01/2006 15:04"),
		"IsTest":       instance.IsTestSubmission,
		"AdminURL":     fmt.Sprintf("%s/form-instances/%s", adminBaseURL, instance.ID.Hex()),
	}

	var buf bytes.Buffer
	if err := submissionTmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("error during executing template submission-notification: %v", err)
	}
	return subject, buf.String(), nil
}
