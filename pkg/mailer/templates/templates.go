package templates

import (
	"bytes"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"
)

// ---- Template names ----

const (
	ConfirmInstructions = "confirm_instructions"
	ResetInstructions   = "reset_instructions"
	LoginNotification   = "login_notification"
)

type templateSet struct {
	subject string
	text    string
	html    string
}

var templateSets = map[string]templateSet{
	ConfirmInstructions: {
		subject: `{{if .AppName}}{{.AppName}}: {{end}}Please confirm your email`,
		text: `Hi {{if .Name}}{{.Name}}{{else}}there{{end}},

Please confirm your email address by opening the link below:

{{.ConfirmURL}}
{{if .ExpiresAtText}}
This link expires at {{.ExpiresAtText}} (UTC unless noted).
{{end}}
If you did not create an account, you can ignore this email.

{{.CompanyName}}
{{.CompanyAddress}}`,
		html: `<p>Hi {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
<p>Please confirm your email address:</p>
<p><a href="{{.ConfirmURL}}">Confirm my email</a></p>
{{if .ExpiresAtText}}<p>This link expires at {{.ExpiresAtText}}.</p>{{end}}
<p>If you did not create an account, you can ignore this email.</p>
<p>{{.CompanyName}}<br>{{.CompanyAddress}}</p>`,
	},
	ResetInstructions: {
		subject: `{{if .AppName}}{{.AppName}}: {{end}}Reset your password`,
		text: `Hi {{if .Name}}{{.Name}}{{else}}there{{end}},

Someone requested a password reset for {{.RecipientEmail}}. Open the link
below to choose a new password:

{{.ResetURL}}
{{if .ExpiresAtText}}
This link expires at {{.ExpiresAtText}}.
{{end}}
If this was not you, no action is needed; your password is unchanged.

{{.CompanyName}}`,
		html: `<p>Hi {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
<p>Someone requested a password reset for {{.RecipientEmail}}.</p>
<p><a href="{{.ResetURL}}">Choose a new password</a></p>
{{if .ExpiresAtText}}<p>This link expires at {{.ExpiresAtText}}.</p>{{end}}
<p>If this was not you, no action is needed; your password is unchanged.</p>
<p>{{.CompanyName}}</p>`,
	},
	LoginNotification: {
		subject: `{{if .AppName}}{{.AppName}}: {{end}}New login to your account`,
		text: `Hi {{if .Name}}{{.Name}}{{else}}there{{end}},

Your account was just signed in to.
{{if .Time}}Time: {{.Time}}
{{end}}{{if .IP}}IP address: {{.IP}}
{{end}}{{if .Location}}Location: {{.Location}}
{{end}}{{if .UserAgent}}Device: {{.UserAgent}}
{{end}}
If this was you, no action is needed. Otherwise reset your password
immediately{{if .SupportURL}} and contact support: {{.SupportURL}}{{end}}.

{{.CompanyName}}`,
		html: `<p>Hi {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
<p>Your account was just signed in to.</p>
<ul>
{{if .Time}}<li>Time: {{.Time}}</li>{{end}}
{{if .IP}}<li>IP address: {{.IP}}</li>{{end}}
{{if .Location}}<li>Location: {{.Location}}</li>{{end}}
{{if .UserAgent}}<li>Device: {{.UserAgent}}</li>{{end}}
</ul>
<p>If this was you, no action is needed. Otherwise reset your password
immediately{{if .SupportURL}} and <a href="{{.SupportURL}}">contact support</a>{{end}}.</p>
<p>{{.CompanyName}}</p>`,
	},
}

func renderText(name, src string, data any) (string, error) {
	tpl, err := texttpl.New(name).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse text %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}

func renderHTML(name, src string, data any) (string, error) {
	tpl, err := htmpl.New(name).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse html %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}

// Render produces subject, text and html bodies for the named template.
func Render(name string, data any) (subject, text, html string, err error) {
	set, ok := templateSets[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown template %q", name)
	}
	if subject, err = renderText(name+".subject", set.subject, data); err != nil {
		return "", "", "", err
	}
	if text, err = renderText(name+".text", set.text, data); err != nil {
		return "", "", "", err
	}
	if html, err = renderHTML(name+".html", set.html, data); err != nil {
		return "", "", "", err
	}
	return subject, text, html, nil
}

// Known reports whether name is a registered template.
func Known(name string) bool {
	_, ok := templateSets[name]
	return ok
}
