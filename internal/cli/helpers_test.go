package cli

import (
	"testing"
	"time"

	"github.com/andy/studioledger/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchClientPrefix(t *testing.T) {
	studio := uuid.New()
	nord := domain.NewClient(studio, "Atelier Nord", "", time.Now())
	nord.ID = uuid.MustParse("3f2a9c10-0000-4000-8000-000000000001")
	verte := domain.NewClient(studio, "Maison Verte", "", time.Now())
	verte.ID = uuid.MustParse("3f2b0000-0000-4000-8000-000000000002")
	clients := []*domain.Client{nord, verte}

	got, err := matchClientPrefix(clients, nord.ID.String()[:8])
	require.NoError(t, err)
	assert.Equal(t, nord.ID, got.ID)

	got, err = matchClientPrefix(clients, "3F2B")
	require.NoError(t, err)
	assert.Equal(t, verte.ID, got.ID)

	_, err = matchClientPrefix(clients, "3f2")
	assert.Error(t, err, "too short to match")

	_, err = matchClientPrefix(clients, "3f2a9c10-0000-4000-8000-00000000000")
	assert.NoError(t, err)

	_, err = matchClientPrefix(clients, "ffff")
	assert.ErrorContains(t, err, "not found")

	verte.ID = uuid.MustParse("3f2a9c10-0000-4000-8000-000000000002")
	_, err = matchClientPrefix(clients, "3f2a9c10")
	assert.ErrorContains(t, err, "ambiguous")
}
