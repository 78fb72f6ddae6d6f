package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"io"
	texttemplate "text/template"
)

type MentionEmailData struct {
	RecipientName string
	ProjectName   string
	CommenterName string
	Excerpt       string
	DeepLink      string
	// Context describes the file, version or timestamp the comment is anchored to
	Context string
}

type DigestItem struct {
	ProjectName   string
	CommenterName string
	Excerpt       string
	DeepLink      string
	Context       string
}

type DigestEmailData struct {
	RecipientName string
	Items         []DigestItem
}

var (
	mentionHTMLTemplate = htmltemplate.Must(htmltemplate.New("mention_html").Parse(mentionEmailHTML))
	mentionTextTemplate = texttemplate.Must(texttemplate.New("mention_text").Parse(mentionEmailText))
	digestHTMLTemplate  = htmltemplate.Must(htmltemplate.New("digest_html").Parse(digestEmailHTML))
	digestTextTemplate  = texttemplate.Must(texttemplate.New("digest_text").Parse(digestEmailText))
)

type executor interface {
	Execute(wr io.Writer, data any) error
}

func RenderMentionEmail(data *MentionEmailData) (*Message, error) {
	htmlBody, err := render(mentionHTMLTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("render mention template: %w", err)
	}

	textBody, err := render(mentionTextTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("render mention template: %w", err)
	}

	return &Message{
		Subject:  fmt.Sprintf("%s mentioned you in %s", data.CommenterName, data.ProjectName),
		HTMLBody: htmlBody,
		TextBody: textBody,
	}, nil
}

func RenderDigestEmail(data *DigestEmailData) (*Message, error) {
	htmlBody, err := render(digestHTMLTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("render digest template: %w", err)
	}

	textBody, err := render(digestTextTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("render digest template: %w", err)
	}

	subject := "You have 1 new mention"
	if len(data.Items) != 1 {
		subject = fmt.Sprintf("You have %d new mentions", len(data.Items))
	}

	return &Message{
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	}, nil
}

func render(tmpl executor, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

const mentionEmailHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.CommenterName}} mentioned you</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #222; max-width: 600px; margin: 0 auto; padding: 20px; }
        .quote { border-left: 3px solid #7c3aed; padding: 8px 12px; margin: 16px 0; background: #f7f5ff; }
        .context { font-size: 13px; color: #666; }
        .button { display: inline-block; padding: 10px 20px; background: #7c3aed; color: white; text-decoration: none; border-radius: 4px; }
        .footer { margin-top: 30px; padding-top: 16px; border-top: 1px solid #eee; font-size: 12px; color: #888; }
    </style>
</head>
<body>
    <p>Hi {{.RecipientName}},</p>

    <p><strong>{{.CommenterName}}</strong> mentioned you in <strong>{{.ProjectName}}</strong>:</p>

    <div class="quote">{{.Excerpt}}</div>
    {{if .Context}}<p class="context">{{.Context}}</p>{{end}}

    <p><a href="{{.DeepLink}}" class="button">View comment</a></p>

    <div class="footer">
        <p>You can change how often you receive these emails in your notification preferences.</p>
    </div>
</body>
</html>`

const mentionEmailText = `Hi {{.RecipientName}},

{{.CommenterName}} mentioned you in {{.ProjectName}}:

"{{.Excerpt}}"
{{if .Context}}{{.Context}}
{{end}}
View comment: {{.DeepLink}}
`

const digestEmailHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Your mentions digest</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #222; max-width: 600px; margin: 0 auto; padding: 20px; }
        .item { padding: 12px 0; border-bottom: 1px solid #eee; }
        .quote { border-left: 3px solid #7c3aed; padding: 6px 10px; margin: 8px 0; background: #f7f5ff; }
        .context { font-size: 13px; color: #666; }
        .footer { margin-top: 30px; font-size: 12px; color: #888; }
    </style>
</head>
<body>
    <p>Hi {{.RecipientName}}, here is what you missed:</p>
    {{range .Items}}
    <div class="item">
        <p><strong>{{.CommenterName}}</strong> in <strong>{{.ProjectName}}</strong></p>
        <div class="quote">{{.Excerpt}}</div>
        {{if .Context}}<p class="context">{{.Context}}</p>{{end}}
        <a href="{{.DeepLink}}">View comment</a>
    </div>
    {{end}}
    <div class="footer">
        <p>You receive this digest once a day. Switch to instant emails or turn them off in your notification preferences.</p>
    </div>
</body>
</html>`

const digestEmailText = `Hi {{.RecipientName}}, here is what you missed:
{{range .Items}}
{{.CommenterName}} in {{.ProjectName}}:
"{{.Excerpt}}"
{{if .Context}}{{.Context}}
{{end}}{{.DeepLink}}
{{end}}`
