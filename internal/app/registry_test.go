package app

import (
	"context"
	"sync"
	"testing"

	"github.com/SscSPs/billed/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ReusesSessionForSameIdentity(t *testing.T) {
	reg, err := NewRegistry(4, seededStore(), nil)
	require.NoError(t, err)

	first := reg.Get(context.Background(), "s1", employee)
	second := reg.Get(context.Background(), "s1", employee)

	assert.Same(t, first, second)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_ConcurrentGetBuildsOneSession(t *testing.T) {
	reg, err := NewRegistry(4, seededStore(), nil)
	require.NoError(t, err)

	const workers = 32
	got := make([]*Session, workers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			got[i] = reg.Get(context.Background(), "s1", employee)
		}()
	}
	close(start)
	wg.Wait()

	for _, s := range got[1:] {
		assert.Same(t, got[0], s)
	}
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_RebuildsOnIdentityChange(t *testing.T) {
	reg, err := NewRegistry(4, seededStore(), nil)
	require.NoError(t, err)

	first := reg.Get(context.Background(), "s1", employee)
	other := reg.Get(context.Background(), "s1", domain.User{Type: domain.UserTypeEmployee, Email: "b@b"})

	assert.NotSame(t, first, other)
	assert.Equal(t, "b@b", other.User().Email)
}

func TestRegistry_EvictsLeastRecentlyUsed(t *testing.T) {
	reg, err := NewRegistry(2, seededStore(), nil)
	require.NoError(t, err)

	s1 := reg.Get(context.Background(), "s1", employee)
	reg.Get(context.Background(), "s2", employee)
	reg.Get(context.Background(), "s1", employee)
	reg.Get(context.Background(), "s3", employee)

	assert.Equal(t, 2, reg.Len())
	assert.Same(t, s1, reg.Get(context.Background(), "s1", employee))
}

func TestRegistry_Remove(t *testing.T) {
	reg, err := NewRegistry(2, seededStore(), nil)
	require.NoError(t, err)

	first := reg.Get(context.Background(), "s1", employee)
	reg.Remove("s1")

	assert.Equal(t, 0, reg.Len())
	assert.NotSame(t, first, reg.Get(context.Background(), "s1", employee))
}

func TestRegistry_AnonymousIsNotStored(t *testing.T) {
	reg, err := NewRegistry(2, seededStore(), nil)
	require.NoError(t, err)

	s := reg.Anonymous(context.Background())

	assert.Nil(t, s.User())
	assert.Equal(t, domain.RouteLogin, s.Current())
	assert.Equal(t, 0, reg.Len())
}

func TestNewRegistry_InvalidSize(t *testing.T) {
	_, err := NewRegistry(0, nil, nil)
	assert.Error(t, err)
}
