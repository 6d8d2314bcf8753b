package services

import (
	"bytes"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"os"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
)

const (
	EMAIL_SVC = "email_svc"
	appName   = "Brushy"

	templateWelcome    = "welcome"
	templatePinChanged = "pin_changed"
)

// Mailer sends the account notifications.
type Mailer interface {
	SendWelcomeEmail(email, firstName string) error
	SendPinChangedEmail(email, firstName string) error
}

// EmailService delivers HTML notifications over SMTP. Without SMTP_HOST every
// send is a no-op.
type EmailService struct {
	context.DefaultService

	host     string
	port     string
	username string
	password string
	from     mail.Address

	templates map[string]*template.Template
}

type WelcomeEmailData struct {
	AppName   string
	FirstName string
}

type PinChangedEmailData struct {
	AppName   string
	FirstName string
}

const layoutHTML = `{{define "layout"}}<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{template "title" .}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #0EA5E9; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background-color: #f9f9f9; }
        .footer { padding: 20px; text-align: center; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>{{template "title" .}}</h1></div>
        <div class="content">
            <h2>Hi {{.FirstName}},</h2>
            {{template "body" .}}
        </div>
        <div class="footer"><p>&copy; {{.AppName}}</p></div>
    </div>
</body>
</html>{{end}}`

// mailTemplates maps a template name to its title and body blocks.
var mailTemplates = map[string]struct{ title, body string }{
	templateWelcome: {
		title: `Welcome to {{.AppName}}!`,
		body: `<p>Your account is ready. Brush in the morning and in the evening to grow your streak and level up your character.</p>
            <p>Set a parent PIN in the app to keep the settings safe.</p>`,
	},
	templatePinChanged: {
		title: `Parent PIN updated`,
		body: `<p>The parent PIN on your {{.AppName}} account was just set or changed.</p>
            <p>If this wasn't you, sign in and set a new PIN right away.</p>`,
	},
}

func (svc EmailService) Id() string {
	return EMAIL_SVC
}

func (svc *EmailService) Configure(ctx *context.Context) error {
	svc.host = os.Getenv("SMTP_HOST")
	svc.port = getEnv("SMTP_PORT", "587")
	svc.username = os.Getenv("SMTP_USERNAME")
	svc.password = os.Getenv("SMTP_PASSWORD")
	svc.from = mail.Address{Name: getEnv("FROM_NAME", appName), Address: os.Getenv("FROM_EMAIL")}

	return svc.DefaultService.Configure(ctx)
}

func (svc *EmailService) Start() error {
	if err := svc.loadTemplates(); err != nil {
		log.WithError(err).Error("Failed to load email templates")
		return err
	}

	if svc.host == "" {
		log.Warn("SMTP not configured, notification emails are disabled")
	}
	return nil
}

func (svc *EmailService) loadTemplates() error {
	svc.templates = make(map[string]*template.Template, len(mailTemplates))

	for name, blocks := range mailTemplates {
		tmpl := template.New(name)
		for _, part := range []string{
			layoutHTML,
			`{{define "title"}}` + blocks.title + `{{end}}`,
			`{{define "body"}}` + blocks.body + `{{end}}`,
		} {
			if _, err := tmpl.Parse(part); err != nil {
				return fmt.Errorf("failed to parse %s email template: %w", name, err)
			}
		}
		svc.templates[name] = tmpl
	}
	return nil
}

func (svc *EmailService) SendWelcomeEmail(email, firstName string) error {
	return svc.send(email, "Welcome to "+appName, templateWelcome, WelcomeEmailData{AppName: appName, FirstName: firstName})
}

func (svc *EmailService) SendPinChangedEmail(email, firstName string) error {
	return svc.send(email, "Parent PIN updated - "+appName, templatePinChanged, PinChangedEmailData{AppName: appName, FirstName: firstName})
}

func (svc *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, ok := svc.templates[name]
	if !ok {
		return "", fmt.Errorf("template %s not found", name)
	}

	var body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&body, "layout", data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", name, err)
	}
	return body.String(), nil
}

func (svc *EmailService) send(to, subject, templateName string, data interface{}) error {
	fields := log.Fields{"to": to, "template": templateName}
	if svc.host == "" {
		log.WithFields(fields).Debug("SMTP not configured, skipping email")
		return nil
	}

	body, err := svc.renderTemplate(templateName, data)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if svc.username != "" {
		auth = smtp.PlainAuth("", svc.username, svc.password, svc.host)
	}

	addr := net.JoinHostPort(svc.host, svc.port)
	if err := smtp.SendMail(addr, auth, svc.from.Address, []string{to}, svc.message(to, subject, body)); err != nil {
		log.WithError(err).WithFields(fields).Error("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.WithFields(fields).Info("Email sent")
	return nil
}

func (svc *EmailService) message(to, subject, body string) []byte {
	var msg strings.Builder
	headers := [][2]string{
		{"From", svc.from.String()},
		{"To", to},
		{"Subject", mime.QEncoding.Encode("utf-8", subject)},
		{"Date", time.Now().Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}
	for _, h := range headers {
		msg.WriteString(h[0] + ": " + h[1] + "\r\n")
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)
	return []byte(msg.String())
}
