package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"cms-search/domain"
	"cms-search/port"
	"cms-search/usecase"
	appOtel "cms-search/utils/otel"
)

const (
	batchFlushSize     = 10
	batchFlushInterval = 2 * time.Second
	flushTimeout       = 2 * time.Minute
)

const (
	EventContentSaved     = "ContentSaved"
	EventContentDeleted   = "ContentDeleted"
	EventReindexRequested = "ReindexRequested"
)

// ContentEventPayload identifies one page or article.
type ContentEventPayload struct {
	OrgID       string `json:"org_id"`
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id"`
}

type ReindexPayload struct {
	OrgID string `json:"org_id"`
}

// ContentSyncer applies one content change to the active provider.
type ContentSyncer interface {
	Sync(ctx context.Context, org *domain.Organization, content *domain.Content) error
	Delete(ctx context.Context, ref domain.DocumentRef) error
}

type OrgReindexer interface {
	Execute(ctx context.Context, orgID string) (*usecase.ReindexResult, error)
}

type pendingKind int

const (
	pendingSync pendingKind = iota
	pendingDelete
	pendingReindex
)

type pendingItem struct {
	kind        pendingKind
	orgID       string
	contentType domain.ContentType
	contentID   string
}

func (p pendingItem) key() string {
	if p.kind == pendingReindex {
		return "reindex:" + p.orgID
	}
	return p.orgID + "/" + string(p.contentType) + "/" + p.contentID
}

// ContentEventHandler buffers mutation events and applies them in batches.
// Within a batch the latest event per (org, type, id) wins.
type ContentEventHandler struct {
	orgs     port.OrganizationRepository
	contents port.ContentRepository
	syncer   ContentSyncer
	reindex  OrgReindexer
	logger   *slog.Logger

	mu      sync.Mutex
	order   []string
	buffer  map[string]pendingItem
	timer   *time.Timer
	flushed chan struct{} // signalled after each flush for testing
}

func NewContentEventHandler(
	orgs port.OrganizationRepository,
	contents port.ContentRepository,
	syncer ContentSyncer,
	reindex OrgReindexer,
	logger *slog.Logger,
) *ContentEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentEventHandler{
		orgs:     orgs,
		contents: contents,
		syncer:   syncer,
		reindex:  reindex,
		logger:   logger,
		buffer:   make(map[string]pendingItem),
		flushed:  make(chan struct{}, 1),
	}
}

// Stop cancels the flush timer and applies whatever is still buffered.
func (h *ContentEventHandler) Stop() {
	h.mu.Lock()
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.mu.Unlock()
	h.flush()
}

// HandleEvent validates and buffers one event. Unknown event types are skipped.
// A nil return acks the message, so delivery is at-most-once once an event is buffered:
// apply failures are logged and repaired by the next save or reindex.
func (h *ContentEventHandler) HandleEvent(ctx context.Context, event Event) error {
	switch event.EventType {
	case EventContentSaved, EventContentDeleted:
		return h.handleContentEvent(event)
	case EventReindexRequested:
		return h.handleReindex(event)
	default:
		h.logger.Warn("unknown event type, skipping",
			"event_type", event.EventType,
			"event_id", event.EventID,
		)
		return nil
	}
}

func (h *ContentEventHandler) handleContentEvent(event Event) error {
	var payload ContentEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		h.logger.Error("failed to unmarshal content event payload",
			"event_id", event.EventID,
			"event_type", event.EventType,
			"error", err,
		)
		return err
	}

	contentType := domain.ContentType(strings.TrimSpace(payload.ContentType))
	if payload.OrgID == "" || payload.ContentID == "" || !contentType.Valid() {
		return fmt.Errorf("invalid %s payload: org_id, content_type and content_id are required", event.EventType)
	}

	kind := pendingSync
	if event.EventType == EventContentDeleted {
		kind = pendingDelete
	}

	h.enqueue(pendingItem{
		kind:        kind,
		orgID:       payload.OrgID,
		contentType: contentType,
		contentID:   payload.ContentID,
	})
	return nil
}

func (h *ContentEventHandler) handleReindex(event Event) error {
	var payload ReindexPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		h.logger.Error("failed to unmarshal ReindexRequested payload",
			"event_id", event.EventID,
			"error", err,
		)
		return err
	}
	if payload.OrgID == "" {
		return errors.New("invalid ReindexRequested payload: org_id is required")
	}

	h.enqueue(pendingItem{kind: pendingReindex, orgID: payload.OrgID})
	return nil
}

// enqueue starts the flush timer on the first buffered item and flushes early at batchFlushSize.
func (h *ContentEventHandler) enqueue(item pendingItem) {
	h.mu.Lock()
	key := item.key()
	if _, exists := h.buffer[key]; !exists {
		h.order = append(h.order, key)
	}
	h.buffer[key] = item
	size := len(h.order)

	if h.timer == nil {
		h.timer = time.AfterFunc(batchFlushInterval, h.flush)
	}
	h.mu.Unlock()

	if size >= batchFlushSize {
		h.flush()
	}
}

func (h *ContentEventHandler) flush() {
	h.mu.Lock()
	if len(h.order) == 0 {
		h.mu.Unlock()
		return
	}
	items := make([]pendingItem, 0, len(h.order))
	for _, key := range h.order {
		items = append(items, h.buffer[key])
	}
	h.order = nil
	h.buffer = make(map[string]pendingItem)
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	h.logger.Info("flushing batch", "count", len(items))
	failed := 0
	for _, item := range items {
		if err := h.apply(ctx, item); err != nil {
			failed++
			appOtel.Metrics.RecordError(ctx, "event_apply")
			h.logger.Error("failed to apply content event",
				"org_id", item.orgID,
				"content_type", item.contentType,
				"content_id", item.contentID,
				"error", err,
			)
		}
	}
	h.logger.Info("batch applied", "applied", len(items)-failed, "failed", failed)

	select {
	case h.flushed <- struct{}{}:
	default:
	}
}

func (h *ContentEventHandler) apply(ctx context.Context, item pendingItem) error {
	switch item.kind {
	case pendingReindex:
		_, err := h.reindex.Execute(ctx, item.orgID)
		return err
	case pendingDelete:
		return h.syncer.Delete(ctx, domain.DocumentRef{ID: item.contentID, OrgID: item.orgID})
	}

	org, err := h.orgs.GetOrganizationByID(ctx, item.orgID)
	if err != nil {
		return err
	}
	content, err := h.contents.GetContent(ctx, item.orgID, item.contentType, item.contentID)
	if errors.Is(err, domain.ErrContentNotFound) {
		return h.syncer.Delete(ctx, domain.DocumentRef{ID: item.contentID, OrgID: item.orgID})
	}
	if err != nil {
		return err
	}
	return h.syncer.Sync(ctx, org, content)
}
