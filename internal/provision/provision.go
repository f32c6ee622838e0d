// Package provision creates a spreadsheet and shares it with one user.
package provision

import (
	"context"
	"log/slog"
	"strings"
)

const (
	DefaultTitleTemplate = "[Triggerator] Master doc for {project}"
	ProjectPlaceholder   = "{project}"

	MainSheet = "Main"

	RoleWriter = "writer"
	TypeUser   = "user"
)

// Document is the create request: a title and the sheet titles in order.
type Document struct {
	Title  string
	Sheets []string
}

// Created is what the create call returned.
type Created struct {
	ID  string
	URL string
}

// Grant is an access-control entry to add to a document.
type Grant struct {
	DocumentID            string
	EmailAddress          string
	Role                  string
	Type                  string
	SendNotificationEmail bool
}

// Backend performs the two remote calls.
type Backend interface {
	CreateDocument(ctx context.Context, doc Document) (Created, error)
	GrantPermission(ctx context.Context, grant Grant) (string, error)
}

type Result struct {
	SpreadsheetID  string `json:"spreadsheetId"`
	SpreadsheetURL string `json:"spreadsheetUrl,omitempty"`
	PermissionID   string `json:"permissionId,omitempty"`
	Title          string `json:"title"`
}

type Provisioner struct {
	backend       Backend
	titleTemplate string
	projectID     string
}

type Option func(*Provisioner)

// WithTitleTemplate sets the title policy. Empty keeps the default.
func WithTitleTemplate(tmpl string) Option {
	return func(p *Provisioner) {
		if strings.TrimSpace(tmpl) != "" {
			p.titleTemplate = tmpl
		}
	}
}

func WithProjectID(id string) Option {
	return func(p *Provisioner) {
		p.projectID = strings.TrimSpace(id)
	}
}

func New(backend Backend, opts ...Option) *Provisioner {
	p := &Provisioner{
		backend:       backend,
		titleTemplate: DefaultTitleTemplate,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Provision creates a new spreadsheet with a single "Main" sheet and grants
// targetEmail writer access without notifying them. Every successful call
// creates a brand new document.
func (p *Provisioner) Provision(ctx context.Context, targetEmail string) (Result, error) {
	email := strings.TrimSpace(targetEmail)
	if email == "" {
		return Result{}, ErrEmptyEmail
	}

	title, err := RenderTitle(p.titleTemplate, p.projectID)
	if err != nil {
		return Result{}, &ProvisioningError{Err: err}
	}

	slog.Debug("creating spreadsheet", "title", title)
	created, err := p.backend.CreateDocument(ctx, Document{
		Title:  title,
		Sheets: []string{MainSheet},
	})
	if err != nil {
		return Result{}, &ProvisioningError{Title: title, Err: err}
	}
	id := strings.TrimSpace(created.ID)
	if id == "" {
		return Result{}, &ProvisioningError{Title: title, Err: errNoSpreadsheetID}
	}

	slog.Debug("granting access", "spreadsheet", id, "email", email, "role", RoleWriter)
	permID, err := p.backend.GrantPermission(ctx, Grant{
		DocumentID:            id,
		EmailAddress:          email,
		Role:                  RoleWriter,
		Type:                  TypeUser,
		SendNotificationEmail: false,
	})
	if err != nil {
		slog.Warn("spreadsheet created but not shared", "spreadsheet", id)
		return Result{}, &PermissionGrantError{SpreadsheetID: id, EmailAddress: email, Err: err}
	}

	return Result{
		SpreadsheetID:  id,
		SpreadsheetURL: created.URL,
		PermissionID:   permID,
		Title:          title,
	}, nil
}

// RenderTitle expands {project} in tmpl. An empty template means the default.
func RenderTitle(tmpl, projectID string) (string, error) {
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultTitleTemplate
	}
	if !strings.Contains(tmpl, ProjectPlaceholder) {
		return tmpl, nil
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return "", errProjectUnknown
	}
	return strings.ReplaceAll(tmpl, ProjectPlaceholder, projectID), nil
}
