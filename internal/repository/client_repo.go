package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andy/studioledger/internal/db"
	"github.com/andy/studioledger/internal/domain"
	"github.com/google/uuid"
)

// ClientRepo is a SQLite implementation of ClientRepository
type ClientRepo struct {
	db *db.DB
}

// NewClientRepo creates a new ClientRepo
func NewClientRepo(database *db.DB) *ClientRepo {
	return &ClientRepo{db: database}
}

const clientColumns = `id, studio_id, name, email, notes, is_archived, created_at, updated_at`

// Create inserts a new client into the database
func (r *ClientRepo) Create(ctx context.Context, client *domain.Client) error {
	if err := client.Validate(); err != nil {
		return fmt.Errorf("invalid client: %w", err)
	}
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}

	query := `INSERT INTO clients (` + clientColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		client.ID.String(),
		client.StudioID.String(),
		client.Name,
		client.Email,
		client.Notes,
		client.IsArchived,
		formatTime(client.CreatedAt),
		formatTime(client.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// GetByID retrieves a client by ID
func (r *ClientRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = ?`
	return r.getOne(ctx, query, id.String())
}

// GetByName retrieves a studio's client by name
func (r *ClientRepo) GetByName(ctx context.Context, studioID uuid.UUID, name string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE studio_id = ? AND name = ? COLLATE NOCASE`
	return r.getOne(ctx, query, studioID.String(), name)
}

func (r *ClientRepo) getOne(ctx context.Context, query string, args ...any) (*domain.Client, error) {
	client, err := scanClient(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("client: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

// List retrieves a studio's clients, optionally including archived ones
func (r *ClientRepo) List(ctx context.Context, studioID uuid.UUID, includeArchived bool) ([]*domain.Client, error) {
	query := `
		SELECT ` + clientColumns + `
		FROM clients
		WHERE studio_id = ? AND (is_archived = 0 OR ? = 1)
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query, studioID.String(), includeArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	clients := make([]*domain.Client, 0)
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, client)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	return clients, nil
}

// Update updates an existing client
func (r *ClientRepo) Update(ctx context.Context, client *domain.Client) error {
	if err := client.Validate(); err != nil {
		return fmt.Errorf("invalid client: %w", err)
	}

	query := `
		UPDATE clients
		SET name = ?, email = ?, notes = ?, is_archived = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		client.Name,
		client.Email,
		client.Notes,
		client.IsArchived,
		formatTime(client.UpdatedAt),
		client.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	return expectOneRow(result, "client")
}

// Archive marks a client as archived
func (r *ClientRepo) Archive(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE clients
		SET is_archived = 1, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, formatTime(time.Now()), id.String())
	if err != nil {
		return fmt.Errorf("failed to archive client: %w", err)
	}
	return expectOneRow(result, "client")
}

func scanClient(row scanner) (*domain.Client, error) {
	client := &domain.Client{}
	var id, studioID, createdAt, updatedAt string

	err := row.Scan(
		&id,
		&studioID,
		&client.Name,
		&client.Email,
		&client.Notes,
		&client.IsArchived,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if client.ID, err = parseUUID("id", id); err != nil {
		return nil, err
	}
	if client.StudioID, err = parseUUID("studio_id", studioID); err != nil {
		return nil, err
	}
	if client.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if client.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return client, nil
}

func expectOneRow(result sql.Result, what string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
