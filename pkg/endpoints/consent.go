// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package endpoints

import (
	"bytes"
	"html/template"

	"github.com/stacklok/authfront/pkg/engine"
	"github.com/stacklok/authfront/pkg/users"
)

// ConsentPage is the model of the page asking the end user to authorize a client.
type ConsentPage struct {
	ClientName   string
	Scopes       []engine.Scope
	Claims       []string
	LoginHint    string
	User         *users.User
	DecisionPath string
}

// ConsentRenderer renders the consent page.
type ConsentRenderer interface {
	Render(page *ConsentPage) (string, error)
}

// TemplateRenderer renders the consent page with html/template.
type TemplateRenderer struct {
	tmpl         *template.Template
	decisionPath string
}

// Compile-time interface check.
var _ ConsentRenderer = (*TemplateRenderer)(nil)

var consentTemplate = template.Must(template.New("consent").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Authorization</title>
</head>
<body>
<h1>{{if .ClientName}}{{.ClientName}}{{else}}A client{{end}} requests access</h1>
{{- if .Scopes}}
<h2>Permissions</h2>
<dl>
{{- range .Scopes}}
<dt>{{.Name}}</dt>{{if .Description}}<dd>{{.Description}}</dd>{{end}}
{{- end}}
</dl>
{{- end}}
{{- if .Claims}}
<h2>Requested claims</h2>
<ul>
{{- range .Claims}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- end}}
<form method="post" action="{{.DecisionPath}}">
{{- if .User}}
<p>Signed in as {{if .User.Name}}{{.User.Name}}{{else}}{{.User.LoginID}}{{end}}.</p>
{{- else}}
<label>Login ID <input type="text" name="loginId" value="{{.LoginHint}}" autocomplete="username"></label>
<label>Password <input type="password" name="password" autocomplete="current-password"></label>
{{- end}}
<button type="submit" name="authorized" value="true">Authorize</button>
<button type="submit" name="denied" value="true">Deny</button>
</form>
</body>
</html>
`))

// NewTemplateRenderer creates the default renderer posting decisions to decisionPath.
func NewTemplateRenderer(decisionPath string) *TemplateRenderer {
	return &TemplateRenderer{tmpl: consentTemplate, decisionPath: decisionPath}
}

// Render implements ConsentRenderer.
func (t *TemplateRenderer) Render(page *ConsentPage) (string, error) {
	p := *page
	if p.DecisionPath == "" {
		p.DecisionPath = t.decisionPath
	}
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, &p); err != nil {
		return "", err
	}
	return buf.String(), nil
}
