package driver

import (
	"context"
	"sort"
	"sync"
)

// MemoryContentDriver is an in-memory content store used when no database is configured.
type MemoryContentDriver struct {
	mu         sync.RWMutex
	orgs       map[string]OrganizationRow
	contents   map[string]ContentRow
	categories map[string][]TaxonRow
	tags       map[string][]TaxonRow
}

func NewMemoryContentDriver() *MemoryContentDriver {
	return &MemoryContentDriver{
		orgs:       make(map[string]OrganizationRow),
		contents:   make(map[string]ContentRow),
		categories: make(map[string][]TaxonRow),
		tags:       make(map[string][]TaxonRow),
	}
}

func contentKey(orgID, contentType, id string) string {
	return orgID + "/" + contentType + "/" + id
}

func (m *MemoryContentDriver) PutOrganization(org OrganizationRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orgs[org.ID] = org
}

func (m *MemoryContentDriver) PutCategory(t TaxonRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[t.OrgID] = append(m.categories[t.OrgID], t)
}

func (m *MemoryContentDriver) PutTag(t TaxonRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tags[t.OrgID] = append(m.tags[t.OrgID], t)
}

func (m *MemoryContentDriver) GetOrganizationByID(_ context.Context, orgID string) (*OrganizationRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	org, ok := m.orgs[orgID]
	if !ok {
		return nil, ErrNotFound
	}
	return &org, nil
}

// ListOrganizationIDs returns every organization id in ascending order.
func (m *MemoryContentDriver) ListOrganizationIDs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.orgs))
	for id := range m.orgs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MemoryContentDriver) GetOrganizationBySlug(_ context.Context, slug string) (*OrganizationRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, org := range m.orgs {
		if org.Slug == slug {
			return &org, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryContentDriver) GetContent(_ context.Context, orgID, contentType, id string) (*ContentRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.contents[contentKey(orgID, contentType, id)]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

// ListContents orders like the database driver: published or updated time descending, then id.
func (m *MemoryContentDriver) ListContents(_ context.Context, orgID string, opts ContentListOptions) ([]*ContentRow, error) {
	m.mu.RLock()
	result := make([]*ContentRow, 0)
	for _, c := range m.contents {
		if c.OrgID != orgID {
			continue
		}
		if opts.Type != "" && c.Type != opts.Type {
			continue
		}
		if opts.Status != "" && c.Status != opts.Status {
			continue
		}
		if opts.Locale != "" && c.Locale != opts.Locale {
			continue
		}
		row := c
		result = append(result, &row)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		ti, tj := result[i].UpdatedAt, result[j].UpdatedAt
		if result[i].PublishedAt != nil {
			ti = *result[i].PublishedAt
		}
		if result[j].PublishedAt != nil {
			tj = *result[j].PublishedAt
		}
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return result[i].ID > result[j].ID
	})

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result, nil
}

func (m *MemoryContentDriver) UpsertContent(_ context.Context, c *ContentRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contents[contentKey(c.OrgID, c.Type, c.ID)] = *c
	return nil
}

func (m *MemoryContentDriver) DeleteContent(_ context.Context, orgID, contentType, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.contents, contentKey(orgID, contentType, id))
	return nil
}

func findTaxonRow(rows []TaxonRow, idOrSlug string) (*TaxonRow, error) {
	for _, t := range rows {
		if t.ID == idOrSlug {
			return &t, nil
		}
	}
	for _, t := range rows {
		if t.Slug == idOrSlug {
			return &t, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryContentDriver) FindCategory(_ context.Context, orgID, idOrSlug string) (*TaxonRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return findTaxonRow(m.categories[orgID], idOrSlug)
}

func (m *MemoryContentDriver) FindTag(_ context.Context, orgID, idOrSlug string) (*TaxonRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return findTaxonRow(m.tags[orgID], idOrSlug)
}
