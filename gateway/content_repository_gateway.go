package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cms-search/domain"
	"cms-search/driver"
	"cms-search/port"
)

// ContentStoreDriver is satisfied by the Postgres and in-memory store drivers.
type ContentStoreDriver interface {
	GetOrganizationByID(ctx context.Context, orgID string) (*driver.OrganizationRow, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (*driver.OrganizationRow, error)
	GetContent(ctx context.Context, orgID, contentType, id string) (*driver.ContentRow, error)
	ListContents(ctx context.Context, orgID string, opts driver.ContentListOptions) ([]*driver.ContentRow, error)
	UpsertContent(ctx context.Context, c *driver.ContentRow) error
	DeleteContent(ctx context.Context, orgID, contentType, id string) error
	ListOrganizationIDs(ctx context.Context) ([]string, error)
	FindCategory(ctx context.Context, orgID, idOrSlug string) (*driver.TaxonRow, error)
	FindTag(ctx context.Context, orgID, idOrSlug string) (*driver.TaxonRow, error)
}

// ContentRepositoryGateway implements the content, organization and taxonomy ports.
type ContentRepositoryGateway struct {
	driver ContentStoreDriver
}

var (
	_ port.ContentRepository      = (*ContentRepositoryGateway)(nil)
	_ port.OrganizationRepository = (*ContentRepositoryGateway)(nil)
	_ port.TaxonomyRepository     = (*ContentRepositoryGateway)(nil)
	_ port.OrganizationLister     = (*ContentRepositoryGateway)(nil)
)

func NewContentRepositoryGateway(driver ContentStoreDriver) *ContentRepositoryGateway {
	return &ContentRepositoryGateway{
		driver: driver,
	}
}

func (g *ContentRepositoryGateway) GetOrganizationByID(ctx context.Context, orgID string) (*domain.Organization, error) {
	row, err := g.driver.GetOrganizationByID(ctx, orgID)
	if err != nil {
		return nil, mapStoreError("GetOrganizationByID", err, domain.ErrOrgNotFound)
	}
	return convertOrganization(row), nil
}

func (g *ContentRepositoryGateway) ListOrganizationIDs(ctx context.Context) ([]string, error) {
	ids, err := g.driver.ListOrganizationIDs(ctx)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "ListOrganizationIDs", Err: err.Error()}
	}
	return ids, nil
}

func (g *ContentRepositoryGateway) GetOrganizationBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	row, err := g.driver.GetOrganizationBySlug(ctx, slug)
	if err != nil {
		return nil, mapStoreError("GetOrganizationBySlug", err, domain.ErrOrgNotFound)
	}
	return convertOrganization(row), nil
}

func (g *ContentRepositoryGateway) GetContent(ctx context.Context, orgID string, contentType domain.ContentType, id string) (*domain.Content, error) {
	row, err := g.driver.GetContent(ctx, orgID, string(contentType), id)
	if err != nil {
		return nil, mapStoreError("GetContent", err, domain.ErrContentNotFound)
	}
	content, err := convertContentRow(row)
	if err != nil {
		return nil, &domain.RepositoryError{
			Op:  "GetContent",
			Err: err.Error(),
		}
	}
	return content, nil
}

func (g *ContentRepositoryGateway) ListContents(ctx context.Context, orgID string, filter port.ContentFilter) ([]*domain.Content, error) {
	rows, err := g.driver.ListContents(ctx, orgID, driver.ContentListOptions{
		Type:   string(filter.Type),
		Status: string(filter.Status),
		Locale: filter.Locale,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, &domain.RepositoryError{
			Op:  "ListContents",
			Err: err.Error(),
		}
	}

	contents := make([]*domain.Content, 0, len(rows))
	for _, row := range rows {
		content, err := convertContentRow(row)
		if err != nil {
			return nil, &domain.RepositoryError{
				Op:  "ListContents",
				Err: fmt.Sprintf("content %s: %v", row.ID, err),
			}
		}
		contents = append(contents, content)
	}
	return contents, nil
}

func (g *ContentRepositoryGateway) SaveContent(ctx context.Context, content *domain.Content) error {
	row, err := convertToContentRow(content)
	if err != nil {
		return &domain.RepositoryError{
			Op:  "SaveContent",
			Err: err.Error(),
		}
	}
	if err := g.driver.UpsertContent(ctx, row); err != nil {
		return &domain.RepositoryError{
			Op:  "SaveContent",
			Err: err.Error(),
		}
	}
	return nil
}

func (g *ContentRepositoryGateway) DeleteContent(ctx context.Context, orgID string, contentType domain.ContentType, id string) error {
	if err := g.driver.DeleteContent(ctx, orgID, string(contentType), id); err != nil {
		return &domain.RepositoryError{
			Op:  "DeleteContent",
			Err: err.Error(),
		}
	}
	return nil
}

// FindCategory returns nil without error when nothing matches.
func (g *ContentRepositoryGateway) FindCategory(ctx context.Context, orgID, idOrSlug string) (*domain.Taxon, error) {
	row, err := g.driver.FindCategory(ctx, orgID, idOrSlug)
	return convertTaxon("FindCategory", row, err)
}

// FindTag returns nil without error when nothing matches.
func (g *ContentRepositoryGateway) FindTag(ctx context.Context, orgID, idOrSlug string) (*domain.Taxon, error) {
	row, err := g.driver.FindTag(ctx, orgID, idOrSlug)
	return convertTaxon("FindTag", row, err)
}

func mapStoreError(op string, err error, notFound error) error {
	if errors.Is(err, driver.ErrNotFound) {
		return notFound
	}
	return &domain.RepositoryError{
		Op:  op,
		Err: err.Error(),
	}
}

func convertTaxon(op string, row *driver.TaxonRow, err error) (*domain.Taxon, error) {
	if errors.Is(err, driver.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.RepositoryError{Op: op, Err: err.Error()}
	}
	if row == nil {
		return nil, nil
	}
	return &domain.Taxon{
		ID:    row.ID,
		OrgID: row.OrgID,
		Name:  row.Name,
		Slug:  row.Slug,
	}, nil
}

func convertOrganization(row *driver.OrganizationRow) *domain.Organization {
	return &domain.Organization{
		ID:               row.ID,
		Slug:             row.Slug,
		Name:             row.Name,
		DefaultLocale:    row.DefaultLocale,
		SupportedLocales: row.SupportedLocales,
	}
}

func convertContentRow(row *driver.ContentRow) (*domain.Content, error) {
	var blocks []domain.Block
	if len(row.Blocks) > 0 {
		if err := json.Unmarshal(row.Blocks, &blocks); err != nil {
			return nil, fmt.Errorf("decode blocks: %w", err)
		}
	}

	return &domain.Content{
		ID:                 row.ID,
		OrgID:              row.OrgID,
		Type:               domain.ContentType(row.Type),
		Status:             domain.ContentStatus(row.Status),
		Locale:             row.Locale,
		TranslationGroupID: derefString(row.TranslationGroupID),
		Title:              row.Title,
		Slug:               row.Slug,
		Blocks:             blocks,
		SEODescription:     derefString(row.SEODescription),
		Excerpt:            derefString(row.Excerpt),
		PublishedAt:        row.PublishedAt,
		AuthorID:           derefString(row.AuthorID),
		CategoryID:         derefString(row.CategoryID),
		TagIDs:             row.TagIDs,
		Schedule: domain.Schedule{
			PublishAt:   row.PublishAt,
			UnpublishAt: row.UnpublishAt,
		},
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func convertToContentRow(c *domain.Content) (*driver.ContentRow, error) {
	blocks := json.RawMessage("[]")
	if len(c.Blocks) > 0 {
		encoded, err := json.Marshal(c.Blocks)
		if err != nil {
			return nil, fmt.Errorf("encode blocks: %w", err)
		}
		blocks = encoded
	}

	tagIDs := c.TagIDs
	if tagIDs == nil {
		tagIDs = []string{}
	}

	return &driver.ContentRow{
		ID:                 c.ID,
		OrgID:              c.OrgID,
		Type:               string(c.Type),
		Status:             string(c.Status),
		Locale:             c.Locale,
		TranslationGroupID: optionalString(c.TranslationGroupID),
		Title:              c.Title,
		Slug:               c.Slug,
		Excerpt:            optionalString(c.Excerpt),
		SEODescription:     optionalString(c.SEODescription),
		Blocks:             blocks,
		AuthorID:           optionalString(c.AuthorID),
		CategoryID:         optionalString(c.CategoryID),
		TagIDs:             tagIDs,
		PublishedAt:        c.PublishedAt,
		PublishAt:          c.Schedule.PublishAt,
		UnpublishAt:        c.Schedule.UnpublishAt,
		UpdatedAt:          c.UpdatedAt,
	}, nil
}
