package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/outcome-content/pkg/itemstore"
)

// Schema creates the item tables if they do not exist.
//
//go:embed schema.sql
var Schema string

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	Begin(context.Context) (pgx.Tx, error)
}

// Repository implements itemstore.Store using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Migrate applies Schema.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return r.handlePostgresError("migrate", err)
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "version") {
				return fmt.Errorf("%w: duplicate version", itemstore.ErrInvalidItem)
			}
			return fmt.Errorf("duplicate entry")
		case "23503": // foreign_key_violation
			return fmt.Errorf("referenced record not found")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "23514": // check_violation
			return fmt.Errorf("%w: %s", itemstore.ErrInvalidItem, pgErr.Message)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return itemstore.ErrItemNotFound
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

func (r *Repository) GetItem(ctx context.Context, id uuid.UUID) (*itemstore.Item, error) {
	return r.getItem(ctx, r.db, id)
}

func (r *Repository) getItem(ctx context.Context, db DBTX, id uuid.UUID) (*itemstore.Item, error) {
	query := `
		SELECT id, template_id, parent_id, name, created_at, updated_at
		FROM items WHERE id = $1`

	var item itemstore.Item
	var parentID *uuid.UUID
	err := db.QueryRow(ctx, query, id).Scan(
		&item.ID, &item.TemplateID, &parentID, &item.Name, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, itemstore.ErrItemNotFound
		}
		return nil, r.handlePostgresError("get item", err)
	}
	if parentID != nil {
		item.ParentID = *parentID
	}

	shared, err := r.loadSharedFields(ctx, db, id)
	if err != nil {
		return nil, err
	}
	item.SharedFields = shared

	versions, err := r.loadVersions(ctx, db, id)
	if err != nil {
		return nil, err
	}
	item.Versions = versions

	return &item, nil
}

func (r *Repository) loadSharedFields(ctx context.Context, db DBTX, itemID uuid.UUID) (map[itemstore.FieldID]string, error) {
	rows, err := db.Query(ctx, `SELECT field_id, value FROM item_shared_fields WHERE item_id = $1`, itemID)
	if err != nil {
		return nil, r.handlePostgresError("get shared fields", err)
	}
	defer rows.Close()

	fields := make(map[itemstore.FieldID]string)
	for rows.Next() {
		var fieldID uuid.UUID
		var value string
		if err := rows.Scan(&fieldID, &value); err != nil {
			return nil, r.handlePostgresError("scan shared field", err)
		}
		fields[itemstore.FieldID(fieldID)] = value
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("get shared fields", err)
	}
	return fields, nil
}

func (r *Repository) loadVersions(ctx context.Context, db DBTX, itemID uuid.UUID) ([]*itemstore.Version, error) {
	query := `
		SELECT culture, number, workflow_state, updated_at
		FROM item_versions WHERE item_id = $1
		ORDER BY culture, number`

	rows, err := db.Query(ctx, query, itemID)
	if err != nil {
		return nil, r.handlePostgresError("get versions", err)
	}
	defer rows.Close()

	type versionKey struct {
		culture string
		number  int
	}
	var versions []*itemstore.Version
	byKey := make(map[versionKey]*itemstore.Version)
	for rows.Next() {
		var culture, state string
		v := &itemstore.Version{Fields: make(map[itemstore.FieldID]string)}
		if err := rows.Scan(&culture, &v.Number, &state, &v.UpdatedAt); err != nil {
			return nil, r.handlePostgresError("scan version", err)
		}
		v.Culture = itemstore.Culture(culture)
		v.State = itemstore.WorkflowState(state)
		versions = append(versions, v)
		byKey[versionKey{culture, v.Number}] = v
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("get versions", err)
	}
	rows.Close()

	fieldRows, err := db.Query(ctx,
		`SELECT culture, number, field_id, value FROM item_version_fields WHERE item_id = $1`, itemID)
	if err != nil {
		return nil, r.handlePostgresError("get version fields", err)
	}
	defer fieldRows.Close()

	for fieldRows.Next() {
		var culture, value string
		var number int
		var fieldID uuid.UUID
		if err := fieldRows.Scan(&culture, &number, &fieldID, &value); err != nil {
			return nil, r.handlePostgresError("scan version field", err)
		}
		if v, ok := byKey[versionKey{culture, number}]; ok {
			v.Fields[itemstore.FieldID(fieldID)] = value
		}
	}
	if err := fieldRows.Err(); err != nil {
		return nil, r.handlePostgresError("get version fields", err)
	}

	return versions, nil
}

func (r *Repository) ListItemsByTemplate(ctx context.Context, templateID uuid.UUID) ([]*itemstore.Item, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM items WHERE template_id = $1 ORDER BY name, id`, templateID)
	if err != nil {
		return nil, r.handlePostgresError("list items", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, r.handlePostgresError("list items", err)
	}

	items := make([]*itemstore.Item, 0, len(ids))
	for _, id := range ids {
		item, err := r.getItem(ctx, r.db, id)
		if err != nil {
			// Deleted between the listing and the load.
			if errors.Is(err, itemstore.ErrItemNotFound) {
				continue
			}
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// SaveItem replaces the item row, its shared fields and all versions in one
// transaction.
func (r *Repository) SaveItem(ctx context.Context, item *itemstore.Item) error {
	if err := itemstore.Validate(item); err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return r.handlePostgresError("begin save item", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var parentID *uuid.UUID
	if item.ParentID != uuid.Nil {
		parentID = &item.ParentID
	}

	upsert := `
		INSERT INTO items (id, template_id, parent_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE SET
			template_id = EXCLUDED.template_id,
			parent_id = EXCLUDED.parent_id,
			name = EXCLUDED.name,
			updated_at = NOW()`
	createdAt := item.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	if _, err := tx.Exec(ctx, upsert, item.ID, item.TemplateID, parentID, item.Name, createdAt); err != nil {
		return r.handlePostgresError("save item", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM item_shared_fields WHERE item_id = $1`, item.ID); err != nil {
		return r.handlePostgresError("clear shared fields", err)
	}
	for fieldID, value := range item.SharedFields {
		if _, err := tx.Exec(ctx,
			`INSERT INTO item_shared_fields (item_id, field_id, value) VALUES ($1, $2, $3)`,
			item.ID, uuid.UUID(fieldID), value); err != nil {
			return r.handlePostgresError("save shared field", err)
		}
	}

	// Field rows cascade with their version.
	if _, err := tx.Exec(ctx, `DELETE FROM item_versions WHERE item_id = $1`, item.ID); err != nil {
		return r.handlePostgresError("clear versions", err)
	}
	for _, v := range item.Versions {
		if _, err := tx.Exec(ctx, `
			INSERT INTO item_versions (item_id, culture, number, workflow_state, updated_at)
			VALUES ($1, $2, $3, $4, NOW())`,
			item.ID, string(v.Culture), v.Number, string(v.State)); err != nil {
			return r.handlePostgresError("save version", err)
		}
		for fieldID, value := range v.Fields {
			if _, err := tx.Exec(ctx, `
				INSERT INTO item_version_fields (item_id, culture, number, field_id, value)
				VALUES ($1, $2, $3, $4, $5)`,
				item.ID, string(v.Culture), v.Number, uuid.UUID(fieldID), value); err != nil {
				return r.handlePostgresError("save version field", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return r.handlePostgresError("commit save item", err)
	}
	return nil
}

func (r *Repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete item", err)
	}
	if tag.RowsAffected() == 0 {
		return itemstore.ErrItemNotFound
	}
	return nil
}
