package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
)

// FieldSource loads the field schema of a template.
type FieldSource interface {
	Fields(ctx context.Context, templateID string) ([]domain.FieldDefinition, error)
}

// OptionSource loads master-data options for a field.
type OptionSource interface {
	Options(ctx context.Context, fieldName string) ([]domain.MasterDataOption, error)
}

// CachedSource is a read-through cache in front of schema and master-data
// lookups. Store failures are logged and fall through to the origin; origin
// errors are returned unchanged and never cached.
type CachedSource struct {
	fields  FieldSource
	options OptionSource
	store   Store
	ttl     time.Duration
	logger  *zap.Logger
}

// NewCachedSource wraps the origins. Either origin may be nil when unused.
func NewCachedSource(fields FieldSource, options OptionSource, store Store, ttl time.Duration, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{fields: fields, options: options, store: store, ttl: ttl, logger: logger}
}

func fieldsKey(templateID string) string { return "fields:" + templateID }

func optionsKey(fieldName string) string { return "master-data:" + fieldName }

// Fields returns the cached schema or loads it from the origin.
func (c *CachedSource) Fields(ctx context.Context, templateID string) ([]domain.FieldDefinition, error) {
	var defs []domain.FieldDefinition
	if c.lookup(ctx, fieldsKey(templateID), &defs) {
		return defs, nil
	}
	defs, err := c.fields.Fields(ctx, templateID)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, fieldsKey(templateID), defs)
	return defs, nil
}

// Options returns the cached options or loads them from the origin.
func (c *CachedSource) Options(ctx context.Context, fieldName string) ([]domain.MasterDataOption, error) {
	var opts []domain.MasterDataOption
	if c.lookup(ctx, optionsKey(fieldName), &opts) {
		return opts, nil
	}
	opts, err := c.options.Options(ctx, fieldName)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, optionsKey(fieldName), opts)
	return opts, nil
}

// InvalidateTemplate drops the cached schema of one template.
func (c *CachedSource) InvalidateTemplate(ctx context.Context, templateID string) error {
	return c.store.Delete(ctx, fieldsKey(templateID))
}

// InvalidateOptions drops the cached options of the named fields.
func (c *CachedSource) InvalidateOptions(ctx context.Context, fieldNames ...string) error {
	keys := make([]string, len(fieldNames))
	for i, name := range fieldNames {
		keys[i] = optionsKey(name)
	}
	return c.store.Delete(ctx, keys...)
}

func (c *CachedSource) lookup(ctx context.Context, key string, dest any) bool {
	if c.store == nil {
		return false
	}
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CachedSource) fill(ctx context.Context, key string, value any) {
	if c.store == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
