package photo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

// rangeColumns whitelists the columns RangeByField may query.
var rangeColumns = map[string]string{
	FieldAnimalName:    "animal_name",
	FieldSanctuaryName: "sanctuary_name",
}

// PostgresRepository is the pgx-backed metadata store, selected with
// SANCTUARYPICS_METADATA_BACKEND=postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository builds a repository over an established pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a record; id and upload_date come from the database.
func (r *PostgresRepository) Create(ctx context.Context, p Photo) (Photo, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
INSERT INTO photos (id, filename, animal_name, sanctuary_name, upload_date)
VALUES (gen_random_uuid(), $1, $2, $3, now())
RETURNING id, filename, animal_name, sanctuary_name, upload_date;`

	var stored Photo
	err := r.pool.QueryRow(ctx, query, p.Filename, p.AnimalName, p.SanctuaryName).Scan(
		&stored.ID,
		&stored.Filename,
		&stored.AnimalName,
		&stored.SanctuaryName,
		&stored.UploadDate,
	)
	if err != nil {
		return Photo{}, fmt.Errorf("create photo record: %w", err)
	}
	return stored, nil
}

// All returns every stored record.
func (r *PostgresRepository) All(ctx context.Context) ([]Photo, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT id, filename, animal_name, sanctuary_name, upload_date
FROM photos;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list photo records: %w", err)
	}
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ID, &p.Filename, &p.AnimalName, &p.SanctuaryName, &p.UploadDate); err != nil {
			return nil, fmt.Errorf("scan photo record: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photo records: %w", err)
	}
	return photos, nil
}

// RangeByField returns records whose field value lies in [lower, upper],
// bounds inclusive. Values are compared as stored, no case folding.
func (r *PostgresRepository) RangeByField(ctx context.Context, field, lower, upper string) ([]Photo, error) {
	column, ok := rangeColumns[field]
	if !ok {
		return nil, fmt.Errorf("field %q is not range-queryable", field)
	}

	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := fmt.Sprintf(`
SELECT id, filename, animal_name, sanctuary_name, upload_date
FROM photos
WHERE %s >= $1 AND %s <= $2;`, column, column)

	rows, err := r.pool.Query(ctx, query, lower, upper)
	if err != nil {
		return nil, fmt.Errorf("range %s records: %w", field, err)
	}
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ID, &p.Filename, &p.AnimalName, &p.SanctuaryName, &p.UploadDate); err != nil {
			return nil, fmt.Errorf("scan photo record: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photo records: %w", err)
	}
	return photos, nil
}
