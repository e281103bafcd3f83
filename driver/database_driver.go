package driver

import (
	"context"
	_ "embed"
	"errors"
	"strconv"
	"strings"

	"cms-search/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned by store drivers when a row does not exist.
var ErrNotFound = errors.New("not found")

// ContentListOptions narrows ListContents. Empty fields are not filtered.
type ContentListOptions struct {
	Type   string
	Status string
	Locale string
	Limit  int
}

type DatabaseDriver struct {
	pool *pgxpool.Pool
}

func NewDatabaseDriver(pool *pgxpool.Pool) *DatabaseDriver {
	return &DatabaseDriver{
		pool: pool,
	}
}

// NewDatabaseDriverFromURL connects a pool and verifies it with a ping.
func NewDatabaseDriverFromURL(ctx context.Context, dbURL string) (*DatabaseDriver, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, &DriverError{
			Op:  "NewDatabaseDriverFromURL",
			Err: "failed to parse database URL: " + err.Error(),
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, &DriverError{
			Op:  "NewDatabaseDriverFromURL",
			Err: "failed to create database pool: " + err.Error(),
		}
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &DriverError{
			Op:  "NewDatabaseDriverFromURL",
			Err: "failed to ping database: " + err.Error(),
		}
	}

	logger.Logger.Info("Database connected successfully")
	return &DatabaseDriver{pool: pool}, nil
}

// EnsureSchema creates the content tables when they do not exist.
func (d *DatabaseDriver) EnsureSchema(ctx context.Context) error {
	if _, err := d.pool.Exec(ctx, schemaSQL); err != nil {
		return &DriverError{Op: "EnsureSchema", Err: err.Error()}
	}
	return nil
}

// Close closes the database connection pool
func (d *DatabaseDriver) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
}

const organizationColumns = `id, slug, name, default_locale, supported_locales`

func scanOrganization(row pgx.Row) (*OrganizationRow, error) {
	var org OrganizationRow
	if err := row.Scan(&org.ID, &org.Slug, &org.Name, &org.DefaultLocale, &org.SupportedLocales); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (d *DatabaseDriver) GetOrganizationByID(ctx context.Context, orgID string) (*OrganizationRow, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE id = $1`, orgID)
	return scanOrganization(row)
}

func (d *DatabaseDriver) GetOrganizationBySlug(ctx context.Context, slug string) (*OrganizationRow, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE slug = $1`, slug)
	return scanOrganization(row)
}

func (d *DatabaseDriver) ListOrganizationIDs(ctx context.Context) ([]string, error) {
	rows, err := d.pool.Query(ctx, `SELECT id FROM organizations ORDER BY id`)
	if err != nil {
		return nil, &DriverError{Op: "ListOrganizationIDs", Err: err.Error()}
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, &DriverError{Op: "ListOrganizationIDs", Err: err.Error()}
	}
	return ids, nil
}

const contentColumns = `id, org_id, type, status, locale, translation_group_id, title, slug,
	excerpt, seo_description, blocks, author_id, category_id, tag_ids,
	published_at, publish_at, unpublish_at, updated_at`

func scanContent(row pgx.Row) (*ContentRow, error) {
	var c ContentRow
	err := row.Scan(
		&c.ID, &c.OrgID, &c.Type, &c.Status, &c.Locale, &c.TranslationGroupID, &c.Title, &c.Slug,
		&c.Excerpt, &c.SEODescription, &c.Blocks, &c.AuthorID, &c.CategoryID, &c.TagIDs,
		&c.PublishedAt, &c.PublishAt, &c.UnpublishAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (d *DatabaseDriver) GetContent(ctx context.Context, orgID, contentType, id string) (*ContentRow, error) {
	row := d.pool.QueryRow(ctx,
		`SELECT `+contentColumns+` FROM contents WHERE org_id = $1 AND type = $2 AND id = $3`,
		orgID, contentType, id,
	)
	return scanContent(row)
}

// ListContents returns the organization's contents, most recently published first.
func (d *DatabaseDriver) ListContents(ctx context.Context, orgID string, opts ContentListOptions) ([]*ContentRow, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + contentColumns + ` FROM contents WHERE org_id = $1`)
	args := []any{orgID}

	addFilter := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		sb.WriteString(" AND " + column + " = $" + strconv.Itoa(len(args)))
	}
	addFilter("type", opts.Type)
	addFilter("status", opts.Status)
	addFilter("locale", opts.Locale)

	sb.WriteString(` ORDER BY COALESCE(published_at, updated_at) DESC, id DESC`)
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}

	rows, err := d.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, &DriverError{Op: "ListContents", Err: err.Error()}
	}
	defer rows.Close()

	var contents []*ContentRow
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, &DriverError{Op: "ListContents", Err: err.Error()}
		}
		contents = append(contents, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &DriverError{Op: "ListContents", Err: err.Error()}
	}

	return contents, nil
}

func (d *DatabaseDriver) UpsertContent(ctx context.Context, c *ContentRow) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO contents (`+contentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (org_id, type, id) DO UPDATE SET
			status = EXCLUDED.status,
			locale = EXCLUDED.locale,
			translation_group_id = EXCLUDED.translation_group_id,
			title = EXCLUDED.title,
			slug = EXCLUDED.slug,
			excerpt = EXCLUDED.excerpt,
			seo_description = EXCLUDED.seo_description,
			blocks = EXCLUDED.blocks,
			author_id = EXCLUDED.author_id,
			category_id = EXCLUDED.category_id,
			tag_ids = EXCLUDED.tag_ids,
			published_at = EXCLUDED.published_at,
			publish_at = EXCLUDED.publish_at,
			unpublish_at = EXCLUDED.unpublish_at,
			updated_at = EXCLUDED.updated_at`,
		c.ID, c.OrgID, c.Type, c.Status, c.Locale, c.TranslationGroupID, c.Title, c.Slug,
		c.Excerpt, c.SEODescription, c.Blocks, c.AuthorID, c.CategoryID, c.TagIDs,
		c.PublishedAt, c.PublishAt, c.UnpublishAt, c.UpdatedAt,
	)
	if err != nil {
		return &DriverError{Op: "UpsertContent", Err: err.Error()}
	}
	return nil
}

// DeleteContent is idempotent; deleting a missing row is not an error.
func (d *DatabaseDriver) DeleteContent(ctx context.Context, orgID, contentType, id string) error {
	_, err := d.pool.Exec(ctx,
		`DELETE FROM contents WHERE org_id = $1 AND type = $2 AND id = $3`,
		orgID, contentType, id,
	)
	if err != nil {
		return &DriverError{Op: "DeleteContent", Err: err.Error()}
	}
	return nil
}

// findTaxon matches by id first, then by slug.
func (d *DatabaseDriver) findTaxon(ctx context.Context, table, orgID, idOrSlug string) (*TaxonRow, error) {
	var t TaxonRow
	err := d.pool.QueryRow(ctx,
		`SELECT id, org_id, name, slug FROM `+table+`
		 WHERE org_id = $1 AND (id = $2 OR slug = $2)
		 ORDER BY (id = $2) DESC
		 LIMIT 1`,
		orgID, idOrSlug,
	).Scan(&t.ID, &t.OrgID, &t.Name, &t.Slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &DriverError{Op: "findTaxon", Err: err.Error()}
	}
	return &t, nil
}

func (d *DatabaseDriver) FindCategory(ctx context.Context, orgID, idOrSlug string) (*TaxonRow, error) {
	return d.findTaxon(ctx, "categories", orgID, idOrSlug)
}

func (d *DatabaseDriver) FindTag(ctx context.Context, orgID, idOrSlug string) (*TaxonRow, error) {
	return d.findTaxon(ctx, "tags", orgID, idOrSlug)
}
