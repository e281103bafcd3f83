package driver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/meilisearch/meilisearch-go"
)

// taskPollInterval is how often enqueued engine tasks are polled.
const taskPollInterval = 50 * time.Millisecond

// indexNotFoundCode is the engine error code for operations on a missing index.
const indexNotFoundCode = "index_not_found"

// errIndexNotFound marks a task that failed only because its index does not exist.
var errIndexNotFound = errors.New(indexNotFoundCode)

// isIndexNotFound matches both a failed task and a request rejected up front.
func isIndexNotFound(err error) bool {
	if errors.Is(err, errIndexNotFound) {
		return true
	}
	var apiErr *meilisearch.Error
	return errors.As(err, &apiErr) && apiErr.MeilisearchApiError.Code == indexNotFoundCode
}

// MeilisearchDriver performs raw operations against named Meilisearch indexes.
type MeilisearchDriver struct {
	client      meilisearch.ServiceManager
	taskTimeout time.Duration
}

func NewMeilisearchDriver(client meilisearch.ServiceManager, taskTimeout time.Duration) *MeilisearchDriver {
	if taskTimeout <= 0 {
		taskTimeout = 15 * time.Second
	}
	return &MeilisearchDriver{
		client:      client,
		taskTimeout: taskTimeout,
	}
}

// EncodeDocumentID turns the composite "{orgId}:{id}" key into an engine-safe identifier.
// Meilisearch ids only allow [A-Za-z0-9_-], which the raw URL base64 alphabet satisfies.
func EncodeDocumentID(orgID, id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(orgID + ":" + id))
}

// DecodeDocumentID returns the bare content id carried by a wire id.
func DecodeDocumentID(wireID string) string {
	composite := wireID
	if raw, err := base64.RawURLEncoding.DecodeString(wireID); err == nil && strings.Contains(string(raw), ":") {
		composite = string(raw)
	}
	if _, id, ok := strings.Cut(composite, ":"); ok {
		return id
	}
	return composite
}

func (d *MeilisearchDriver) waitForTask(ctx context.Context, task *meilisearch.TaskInfo) error {
	if task == nil {
		return nil
	}
	waitCtx, cancel := context.WithTimeout(ctx, d.taskTimeout)
	defer cancel()

	done, err := d.client.WaitForTaskWithContext(waitCtx, task.TaskUID, taskPollInterval)
	if err != nil {
		return err
	}
	if done.Status == meilisearch.TaskStatusFailed {
		if done.Error.Code == indexNotFoundCode {
			return errIndexNotFound
		}
		return &DriverError{Op: "waitForTask", Err: done.Error.Message}
	}
	return nil
}

// EnsureIndex creates the index when missing and applies settings.
func (d *MeilisearchDriver) EnsureIndex(ctx context.Context, indexName string, settings IndexSettings) error {
	index := d.client.Index(indexName)

	if _, err := index.FetchInfoWithContext(ctx); err != nil {
		task, err := d.client.CreateIndexWithContext(ctx, &meilisearch.IndexConfig{
			Uid:        indexName,
			PrimaryKey: settings.PrimaryKey,
		})
		if err != nil {
			return &DriverError{
				Op:  "EnsureIndex",
				Err: "failed to create index: " + err.Error(),
			}
		}
		if err := d.waitForTask(ctx, task); err != nil {
			return &DriverError{
				Op:  "EnsureIndex",
				Err: "failed to wait for index creation: " + err.Error(),
			}
		}
	}

	searchable := settings.Searchable
	if _, err := index.UpdateSearchableAttributesWithContext(ctx, &searchable); err != nil {
		return &DriverError{
			Op:  "EnsureIndex",
			Err: "failed to set searchable attributes: " + err.Error(),
		}
	}

	filterable := make([]interface{}, len(settings.Filterable))
	for i, f := range settings.Filterable {
		filterable[i] = f
	}
	if _, err := index.UpdateFilterableAttributesWithContext(ctx, &filterable); err != nil {
		return &DriverError{
			Op:  "EnsureIndex",
			Err: "failed to set filterable attributes: " + err.Error(),
		}
	}

	sortable := settings.Sortable
	task, err := index.UpdateSortableAttributesWithContext(ctx, &sortable)
	if err != nil {
		return &DriverError{
			Op:  "EnsureIndex",
			Err: "failed to set sortable attributes: " + err.Error(),
		}
	}
	// Settings tasks run in order, so waiting on the last one covers all three.
	if err := d.waitForTask(ctx, task); err != nil {
		return &DriverError{
			Op:  "EnsureIndex",
			Err: "failed to wait for settings update: " + err.Error(),
		}
	}

	return nil
}

func (d *MeilisearchDriver) IndexDocuments(ctx context.Context, indexName string, docs []MeiliDocument) error {
	if len(docs) == 0 {
		return nil
	}

	task, err := d.client.Index(indexName).AddDocumentsWithContext(ctx, docs, nil)
	if err != nil {
		return &DriverError{
			Op:  "IndexDocuments",
			Err: err.Error(),
		}
	}

	if err := d.waitForTask(ctx, task); err != nil {
		return &DriverError{
			Op:  "IndexDocuments",
			Err: "failed to wait for indexing task: " + err.Error(),
		}
	}

	return nil
}

// DeleteDocuments is idempotent: deleting from a missing index succeeds.
func (d *MeilisearchDriver) DeleteDocuments(ctx context.Context, indexName string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	task, err := d.client.Index(indexName).DeleteDocumentsWithContext(ctx, ids, nil)
	if isIndexNotFound(err) {
		return nil
	}
	if err != nil {
		return &DriverError{
			Op:  "DeleteDocuments",
			Err: err.Error(),
		}
	}

	if err := d.waitForTask(ctx, task); err != nil && !isIndexNotFound(err) {
		return &DriverError{
			Op:  "DeleteDocuments",
			Err: "failed to wait for deletion task: " + err.Error(),
		}
	}

	return nil
}

// DeleteAllDocuments treats a missing index as already empty.
func (d *MeilisearchDriver) DeleteAllDocuments(ctx context.Context, indexName string) error {
	task, err := d.client.Index(indexName).DeleteAllDocumentsWithContext(ctx, nil)
	if isIndexNotFound(err) {
		return nil
	}
	if err != nil {
		return &DriverError{
			Op:  "DeleteAllDocuments",
			Err: err.Error(),
		}
	}

	if err := d.waitForTask(ctx, task); err != nil && !isIndexNotFound(err) {
		return &DriverError{
			Op:  "DeleteAllDocuments",
			Err: "failed to wait for clear task: " + err.Error(),
		}
	}

	return nil
}

func (d *MeilisearchDriver) Search(ctx context.Context, indexName string, req MeiliSearchRequest) (*MeiliSearchResponse, error) {
	searchRequest := &meilisearch.SearchRequest{
		Query:                 req.Query,
		Limit:                 req.Limit,
		Offset:                req.Offset,
		Sort:                  req.Sort,
		AttributesToHighlight: req.HighlightFields,
		HighlightPreTag:       req.HighlightPreTag,
		HighlightPostTag:      req.HighlightPostTag,
		ShowRankingScore:      true,
	}

	// Only add filter if it's not empty
	if len(req.Filter) > 0 {
		searchRequest.Filter = req.Filter
	}

	result, err := d.client.Index(indexName).SearchWithContext(ctx, req.Query, searchRequest)
	if err != nil {
		return nil, &DriverError{
			Op:  "Search",
			Err: err.Error(),
		}
	}

	hits, err := decodeHits(result.Hits)
	if err != nil {
		return nil, &DriverError{
			Op:  "Search",
			Err: "failed to decode hits: " + err.Error(),
		}
	}

	return &MeiliSearchResponse{
		Hits:               hits,
		EstimatedTotalHits: result.EstimatedTotalHits,
	}, nil
}

// Health returns the engine's reported status string.
func (d *MeilisearchDriver) Health(ctx context.Context) (string, error) {
	health, err := d.client.HealthWithContext(ctx)
	if err != nil {
		return "", &DriverError{
			Op:  "Health",
			Err: err.Error(),
		}
	}
	return health.Status, nil
}

func decodeHits(raw meilisearch.Hits) ([]MeiliHit, error) {
	hits := make([]MeiliHit, 0, len(raw))
	for _, hit := range raw {
		buf, err := json.Marshal(hit)
		if err != nil {
			return nil, err
		}
		var decoded MeiliHit
		if err := json.Unmarshal(buf, &decoded); err != nil {
			return nil, err
		}
		hits = append(hits, decoded)
	}
	return hits, nil
}
