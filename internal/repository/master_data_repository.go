package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
)

// MasterDataRepository reads option lists for master-data backed fields.
type MasterDataRepository interface {
	Options(ctx context.Context, fieldName string) ([]domain.MasterDataOption, error)
}

type masterDataRepository struct {
	pool *pgxpool.Pool
}

// NewMasterDataRepository builds repository.
func NewMasterDataRepository(pool *pgxpool.Pool) MasterDataRepository {
	return &masterDataRepository{pool: pool}
}

func (r *masterDataRepository) Options(ctx context.Context, fieldName string) ([]domain.MasterDataOption, error) {
	const query = `
        SELECT value, label, display_name, name
        FROM master_data_options WHERE field_name=$1 ORDER BY sort_order ASC, value ASC`
	rows, err := r.pool.Query(ctx, query, fieldName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	opts := []domain.MasterDataOption{}
	for rows.Next() {
		var opt domain.MasterDataOption
		if err := rows.Scan(&opt.Value, &opt.Label, &opt.DisplayName, &opt.Name); err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	return opts, rows.Err()
}
