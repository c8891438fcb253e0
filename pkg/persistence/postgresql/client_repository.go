package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aegisflow/aegis/pkg/models"
	"github.com/aegisflow/aegis/pkg/persistence"
)

// ClientRepository handles client-related database operations.
type ClientRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewClientRepository creates a new client repository.
func NewClientRepository(db *sql.DB, logger *slog.Logger) *ClientRepository {
	return &ClientRepository{db: db, logger: logger}
}

// Save upserts a client record.
func (r *ClientRepository) Save(ctx context.Context, client *models.Client) error {
	resources, err := json.Marshal(client.Resources)
	if err != nil {
		return fmt.Errorf("failed to marshal client resources: %w", err)
	}

	query := `
		INSERT INTO clients (
			id, name, email, company, phone, project_type, project_scope,
			budget_range, timeline, additional_notes, status, resources,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			company = EXCLUDED.company,
			phone = EXCLUDED.phone,
			project_type = EXCLUDED.project_type,
			project_scope = EXCLUDED.project_scope,
			budget_range = EXCLUDED.budget_range,
			timeline = EXCLUDED.timeline,
			additional_notes = EXCLUDED.additional_notes,
			status = EXCLUDED.status,
			resources = EXCLUDED.resources,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		client.ID, client.Name, client.Email, client.Company, client.Phone,
		client.ProjectType, client.ProjectScope, client.BudgetRange,
		client.Timeline, client.AdditionalNotes, client.Status, resources,
		client.CreatedAt, client.UpdatedAt,
	)
	if err != nil {
		return persistence.NewClientError("Save", client.ID, err)
	}

	return nil
}

// GetByID returns a client by its identifier.
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	row := r.db.QueryRowContext(ctx, selectClients+" WHERE id = $1", id)

	client, err := scanClient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewClientError("GetByID", id, persistence.ErrClientNotFound)
		}

		return nil, fmt.Errorf("failed to scan client: %w", err)
	}

	return client, nil
}

// List returns a page of clients, newest first, with an optional status filter.
func (r *ClientRepository) List(ctx context.Context, opts persistence.ListClientsOptions) (*persistence.ListClientsResult, error) {
	args := []any{}
	where := ""

	if opts.Status != nil {
		where = " WHERE status = $1"

		args = append(args, string(*opts.Status))
	}

	var total int

	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM clients"+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count clients: %w", err)
	}

	query := selectClients + where + " ORDER BY created_at DESC, id"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)

		args = append(args, opts.Limit)
	}

	query += fmt.Sprintf(" OFFSET $%d", len(args)+1)
	args = append(args, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	clients := make([]*models.Client, 0)

	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}

		clients = append(clients, client)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	return &persistence.ListClientsResult{Clients: clients, Total: total}, nil
}

// Delete removes a client; onboarding progress is removed by cascade.
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM clients WHERE id = $1", id)
	if err != nil {
		return persistence.NewClientError("Delete", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewClientError("Delete", id, err)
	}

	if affected == 0 {
		return persistence.NewClientError("Delete", id, persistence.ErrClientNotFound)
	}

	return nil
}

const selectClients = `
	SELECT
		id
	  , name
	  , email
	  , company
	  , phone
	  , project_type
	  , project_scope
	  , budget_range
	  , timeline
	  , additional_notes
	  , status
	  , resources
	  , created_at
	  , updated_at
	FROM clients
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*models.Client, error) {
	var (
		client                                       models.Client
		company, phone, budgetRange, timeline, notes sql.NullString
		resources                                    []byte
	)

	err := row.Scan(
		&client.ID, &client.Name, &client.Email, &company, &phone,
		&client.ProjectType, &client.ProjectScope, &budgetRange, &timeline,
		&notes, &client.Status, &resources, &client.CreatedAt, &client.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	client.Company = company.String
	client.Phone = phone.String
	client.BudgetRange = budgetRange.String
	client.Timeline = timeline.String
	client.AdditionalNotes = notes.String

	err = json.Unmarshal(resources, &client.Resources)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal client resources: %w", err)
	}

	return &client, nil
}
