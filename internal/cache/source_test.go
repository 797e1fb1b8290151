package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
)

type memStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return nil, false, errors.New("store down")
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type countingOrigin struct {
	fieldCalls  int
	optionCalls int
	err         error
}

func (o *countingOrigin) Fields(_ context.Context, templateID string) ([]domain.FieldDefinition, error) {
	o.fieldCalls++
	if o.err != nil {
		return nil, o.err
	}
	return []domain.FieldDefinition{
		{ID: "f1", TemplateID: templateID, Name: "unit_kerja", Type: domain.FieldTypeDropdown, Options: []domain.FieldOption{{Value: "kcu", Label: "KCU"}}},
		{ID: "f2", TemplateID: templateID, Name: "notes", Type: domain.FieldTypeTextarea, SortOrder: 1},
	}, nil
}

func (o *countingOrigin) Options(_ context.Context, fieldName string) ([]domain.MasterDataOption, error) {
	o.optionCalls++
	if o.err != nil {
		return nil, o.err
	}
	return []domain.MasterDataOption{{Value: "1", Label: "Cabang Utama"}}, nil
}

func TestFieldsReadThrough(t *testing.T) {
	origin := &countingOrigin{}
	src := NewCachedSource(origin, origin, newMemStore(), time.Minute, zap.NewNop())
	ctx := context.Background()

	first, err := src.Fields(ctx, "tpl-1")
	require.NoError(t, err)
	second, err := src.Fields(ctx, "tpl-1")
	require.NoError(t, err)

	assert.Equal(t, 1, origin.fieldCalls)
	assert.Equal(t, first, second)
	assert.Equal(t, "KCU", second[0].Options[0].Label)
}

func TestInvalidateTemplateForcesReload(t *testing.T) {
	origin := &countingOrigin{}
	src := NewCachedSource(origin, origin, newMemStore(), time.Minute, zap.NewNop())
	ctx := context.Background()

	_, err := src.Fields(ctx, "tpl-1")
	require.NoError(t, err)
	require.NoError(t, src.InvalidateTemplate(ctx, "tpl-1"))
	_, err = src.Fields(ctx, "tpl-1")
	require.NoError(t, err)

	assert.Equal(t, 2, origin.fieldCalls)
}

func TestOptionsCachedPerField(t *testing.T) {
	origin := &countingOrigin{}
	src := NewCachedSource(origin, origin, newMemStore(), time.Minute, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		opts, err := src.Options(ctx, "branch")
		require.NoError(t, err)
		assert.Equal(t, "Cabang Utama", opts[0].DisplayLabel())
	}
	_, err := src.Options(ctx, "division")
	require.NoError(t, err)
	assert.Equal(t, 2, origin.optionCalls)

	require.NoError(t, src.InvalidateOptions(ctx, "branch"))
	_, err = src.Options(ctx, "branch")
	require.NoError(t, err)
	assert.Equal(t, 3, origin.optionCalls)
}

func TestOriginErrorsAreNotCached(t *testing.T) {
	origin := &countingOrigin{err: errors.New("unreachable")}
	store := newMemStore()
	src := NewCachedSource(origin, origin, store, time.Minute, zap.NewNop())

	_, err := src.Fields(context.Background(), "tpl-1")
	require.Error(t, err)
	assert.Empty(t, store.data)
}

func TestStoreFailureFallsThrough(t *testing.T) {
	origin := &countingOrigin{}
	store := newMemStore()
	store.failGet = true
	src := NewCachedSource(origin, origin, store, time.Minute, zap.NewNop())

	defs, err := src.Fields(context.Background(), "tpl-1")
	require.NoError(t, err)
	assert.Len(t, defs, 2)
}
