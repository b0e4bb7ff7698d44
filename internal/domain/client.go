package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Client struct {
	ID         uuid.UUID
	StudioID   uuid.UUID
	Name       string
	Email      string
	Notes      string
	IsArchived bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewClient creates a new client with required fields
func NewClient(studioID uuid.UUID, name, email string, now time.Time) *Client {
	return &Client{
		ID:        uuid.New(),
		StudioID:  studioID,
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate returns an error if the client is invalid
func (c *Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("client name is required")
	}
	if c.StudioID == uuid.Nil {
		return errors.New("studio ID is required")
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return errors.New("client email is not a valid address")
		}
	}
	return nil
}
