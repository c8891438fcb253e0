// Package models defines the core domain models for client onboarding automation.
package models

import "time"

// ProjectType classifies the kind of engagement a client is onboarding for.
type ProjectType string

const (
	ProjectTypeWebDevelopment ProjectType = "web_development"
	ProjectTypeMobileApp      ProjectType = "mobile_app"
	ProjectTypeDesign         ProjectType = "design"
	ProjectTypeMarketing      ProjectType = "marketing"
	ProjectTypeConsulting     ProjectType = "consulting"
	ProjectTypeOther          ProjectType = "other"
)

// ClientStatus represents the overall lifecycle state of a client's onboarding.
type ClientStatus string

const (
	ClientStatusPending    ClientStatus = "pending"
	ClientStatusInProgress ClientStatus = "in_progress"
	ClientStatusCompleted  ClientStatus = "completed"
	ClientStatusFailed     ClientStatus = "failed"
)

// ClientInput is the intake form submitted to start onboarding.
type ClientInput struct {
	Name            string      `json:"name"                       validate:"required,min=2,max=100"`
	Email           string      `json:"email"                      validate:"required,email"`
	Company         string      `json:"company,omitempty"          validate:"omitempty,max=100"`
	Phone           string      `json:"phone,omitempty"`
	ProjectType     ProjectType `json:"project_type"               validate:"required,oneof=web_development mobile_app design marketing consulting other"`
	ProjectScope    string      `json:"project_scope"              validate:"required,min=10,max=1000"`
	BudgetRange     string      `json:"budget_range,omitempty"`
	Timeline        string      `json:"timeline,omitempty"`
	AdditionalNotes string      `json:"additional_notes,omitempty" validate:"omitempty,max=500"`
}

// ClientResources holds the provider identifiers produced by completed steps.
// Each field is populated exactly once, when the corresponding step finishes.
type ClientResources struct {
	DriveFolderID    *string `json:"drive_folder_id,omitempty"`
	ContractDocID    *string `json:"contract_doc_id,omitempty"`
	SlackChannelID   *string `json:"slack_channel_id,omitempty"`
	GithubRepoURL    *string `json:"github_repo_url,omitempty"`
	NotionBoardID    *string `json:"notion_board_id,omitempty"`
	StripeCustomerID *string `json:"stripe_customer_id,omitempty"`
	InvoiceID        *string `json:"invoice_id,omitempty"`
}

// Client is the persisted intake record plus onboarding tracking state.
// It is created on intake and mutated only by the orchestration engine.
type Client struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Company         string          `json:"company,omitempty"`
	Phone           string          `json:"phone,omitempty"`
	ProjectType     ProjectType     `json:"project_type"`
	ProjectScope    string          `json:"project_scope"`
	BudgetRange     string          `json:"budget_range,omitempty"`
	Timeline        string          `json:"timeline,omitempty"`
	AdditionalNotes string          `json:"additional_notes,omitempty"`
	Status          ClientStatus    `json:"status"`
	Resources       ClientResources `json:"resources"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewClient builds a Client record from validated intake data.
func NewClient(id string, input ClientInput, now time.Time) *Client {
	return &Client{
		ID:              id,
		Name:            input.Name,
		Email:           input.Email,
		Company:         input.Company,
		Phone:           input.Phone,
		ProjectType:     input.ProjectType,
		ProjectScope:    input.ProjectScope,
		BudgetRange:     input.BudgetRange,
		Timeline:        input.Timeline,
		AdditionalNotes: input.AdditionalNotes,
		Status:          ClientStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Clone returns a deep copy of the client record.
func (c *Client) Clone() *Client {
	clone := *c
	clone.Resources = ClientResources{
		DriveFolderID:    cloneString(c.Resources.DriveFolderID),
		ContractDocID:    cloneString(c.Resources.ContractDocID),
		SlackChannelID:   cloneString(c.Resources.SlackChannelID),
		GithubRepoURL:    cloneString(c.Resources.GithubRepoURL),
		NotionBoardID:    cloneString(c.Resources.NotionBoardID),
		StripeCustomerID: cloneString(c.Resources.StripeCustomerID),
		InvoiceID:        cloneString(c.Resources.InvoiceID),
	}

	return &clone
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}

	v := *s

	return &v
}
