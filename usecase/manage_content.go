package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cms-search/domain"
	"cms-search/port"
)

// ContentIndexer schedules index updates without blocking the caller.
type ContentIndexer interface {
	SyncAsync(org *domain.Organization, content *domain.Content)
	DeleteAsync(ref domain.DocumentRef)
}

// SaveContentInput is the editable state of a page or an article.
type SaveContentInput struct {
	Status             string         `json:"status"`
	Locale             string         `json:"locale"`
	TranslationGroupID string         `json:"translationGroupId"`
	Title              string         `json:"title"`
	Slug               string         `json:"slug"`
	Blocks             []domain.Block `json:"blocks"`
	SEODescription     string         `json:"seoDescription"`
	Excerpt            string         `json:"excerpt"`
	PublishedAt        string         `json:"publishedAt"`
	AuthorID           string         `json:"authorId"`
	CategoryID         string         `json:"categoryId"`
	TagIDs             []string       `json:"tagIds"`
	PublishAt          string         `json:"publishAt"`
	UnpublishAt        string         `json:"unpublishAt"`
}

// ManageContentUsecase is the write path: persist first, then index in the background.
type ManageContentUsecase struct {
	orgs     port.OrganizationRepository
	contents port.ContentRepository
	indexer  ContentIndexer
	now      func() time.Time
}

func NewManageContentUsecase(orgs port.OrganizationRepository, contents port.ContentRepository, indexer ContentIndexer) *ManageContentUsecase {
	return &ManageContentUsecase{
		orgs:     orgs,
		contents: contents,
		indexer:  indexer,
		now:      time.Now,
	}
}

func (u *ManageContentUsecase) Save(ctx context.Context, orgID string, contentType domain.ContentType, id string, in SaveContentInput) (*domain.Content, error) {
	if !contentType.Valid() {
		return nil, &domain.ValidationError{Field: "type", Message: "must be article or page"}
	}

	org, err := u.orgs.GetOrganizationByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	publishAt, unpublishAt, err := domain.ValidateSchedulingDates(in.PublishAt, in.UnpublishAt)
	if err != nil {
		return nil, err
	}

	status := domain.ContentStatus(strings.TrimSpace(in.Status))
	if status == "" {
		status = domain.StatusDraft
	}

	locale := strings.TrimSpace(in.Locale)
	if locale != "" && len(org.SupportedLocales) > 0 && !org.SupportsLocale(locale) {
		return nil, &domain.ValidationError{Field: "locale", Message: "locale not supported by this organization"}
	}

	content := &domain.Content{
		ID:                 id,
		OrgID:              org.ID,
		Type:               contentType,
		Status:             status,
		Locale:             locale,
		TranslationGroupID: in.TranslationGroupID,
		Title:              strings.TrimSpace(in.Title),
		Slug:               strings.TrimSpace(in.Slug),
		Blocks:             in.Blocks,
		SEODescription:     in.SEODescription,
		Schedule:           domain.Schedule{PublishAt: publishAt, UnpublishAt: unpublishAt},
		UpdatedAt:          u.now().UTC(),
	}

	if contentType == domain.ContentTypeArticle {
		content.Excerpt = in.Excerpt
		content.AuthorID = strings.TrimSpace(in.AuthorID)
		content.CategoryID = strings.TrimSpace(in.CategoryID)
		content.TagIDs = in.TagIDs

		if raw := strings.TrimSpace(in.PublishedAt); raw != "" {
			t, err := domain.ParseDateTime(raw)
			if err != nil {
				return nil, &domain.ValidationError{Field: "publishedAt", Message: "invalid date"}
			}
			content.PublishedAt = &t
		} else if status == domain.StatusPublished {
			published := content.UpdatedAt
			if publishAt != nil {
				published = *publishAt
			}
			content.PublishedAt = &published
		}
	}

	if err := content.Validate(); err != nil {
		return nil, err
	}

	if err := u.contents.SaveContent(ctx, content); err != nil {
		return nil, fmt.Errorf("save %s %s: %w", contentType, id, err)
	}

	u.indexer.SyncAsync(org, content)
	return content, nil
}

// Delete is idempotent: a missing row still clears any stale index entry.
func (u *ManageContentUsecase) Delete(ctx context.Context, orgID string, contentType domain.ContentType, id string) error {
	if !contentType.Valid() {
		return &domain.ValidationError{Field: "type", Message: "must be article or page"}
	}

	if _, err := u.orgs.GetOrganizationByID(ctx, orgID); err != nil {
		return err
	}

	if err := u.contents.DeleteContent(ctx, orgID, contentType, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", contentType, id, err)
	}

	u.indexer.DeleteAsync(domain.DocumentRef{ID: id, OrgID: orgID})
	return nil
}
