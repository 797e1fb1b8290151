package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
)

// TemplateRepository reads the service catalog templates and their fields.
type TemplateRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Template, error)
	Fields(ctx context.Context, templateID string) ([]domain.FieldDefinition, error)
}

type templateRepository struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository builds repository.
func NewTemplateRepository(pool *pgxpool.Pool) TemplateRepository {
	return &templateRepository{pool: pool}
}

func (r *templateRepository) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	const query = `
        SELECT id, name, category_name, service_name, item_id, service_id, requires_approval, is_active
        FROM templates WHERE id=$1`

	var tpl domain.Template
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&tpl.ID,
		&tpl.Name,
		&tpl.CategoryName,
		&tpl.ServiceName,
		&tpl.ItemID,
		&tpl.ServiceID,
		&tpl.RequiresApproval,
		&tpl.IsActive,
	); err != nil {
		return nil, noRowsOnMalformedID(err)
	}
	return &tpl, nil
}

// Fields returns the raw field rows; an unknown template yields pgx.ErrNoRows.
func (r *templateRepository) Fields(ctx context.Context, templateID string) ([]domain.FieldDefinition, error) {
	if _, err := r.GetByID(ctx, templateID); err != nil {
		return nil, err
	}

	const query = `
        SELECT id, template_id, name, label, field_type, required, options, placeholder, help_text, max_length, sort_order
        FROM template_fields WHERE template_id=$1 ORDER BY sort_order ASC, name ASC`
	rows, err := r.pool.Query(ctx, query, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	defs := []domain.FieldDefinition{}
	for rows.Next() {
		var def domain.FieldDefinition
		if err := rows.Scan(
			&def.ID,
			&def.TemplateID,
			&def.Name,
			&def.Label,
			&def.Type,
			&def.Required,
			&def.Options,
			&def.Placeholder,
			&def.HelpText,
			&def.MaxLength,
			&def.SortOrder,
		); err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}
