package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concertlog/internal/concert"
)

func TestMemoryConcertLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	older := sampleConcert()
	older.Date, older.Year = "2017-06-14", 2017
	stored, err := m.CreateConcerts(ctx, []concert.Record{older})
	require.NoError(t, err)
	require.Len(t, stored, 1)

	newer, err := m.CreateConcert(ctx, sampleConcert())
	require.NoError(t, err)
	assert.NotEmpty(t, newer.ID)

	list, err := m.ListConcerts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)

	newer.City = "Milano"
	_, err = m.UpdateConcert(ctx, newer)
	require.NoError(t, err)
	got, err := m.GetConcert(ctx, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Milano", got.City)

	list[0].City = "mutated"
	got, _ = m.GetConcert(ctx, newer.ID)
	assert.Equal(t, "Milano", got.City)

	require.NoError(t, m.DeleteConcert(ctx, newer.ID))
	assert.ErrorIs(t, m.DeleteConcert(ctx, newer.ID), ErrConcertNotFound)
	_, err = m.UpdateConcert(ctx, newer)
	assert.ErrorIs(t, err, ErrConcertNotFound)

	n, err := m.CountConcerts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryEmptyListIsNotNil(t *testing.T) {
	list, err := NewMemory().ListConcerts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestMemoryUsers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	u, err := m.CreateUser(ctx, "Me@Example.com", "secret")
	require.NoError(t, err)

	_, err = m.CreateUser(ctx, "me@example.com", "other")
	assert.ErrorIs(t, err, ErrUserExists)

	got, err := m.Authenticate(ctx, "me@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = m.Authenticate(ctx, "me@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = m.Authenticate(ctx, "who@example.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	got, err = m.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	_, err = m.GetUser(ctx, "nope")
	assert.True(t, errors.Is(err, ErrUserNotFound))
}

func TestMemoryConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.CreateConcert(ctx, sampleConcert())
			_, _ = m.ListConcerts(ctx)
		}()
	}
	wg.Wait()

	n, err := m.CountConcerts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, n)
}
