package mail

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/tracing"
)

// LocalDraftStore keeps drafts in memory and, when dir is set, writes each
// one as <id>.json. It never sends anything.
type LocalDraftStore struct {
	log logger.Logger
	dir string

	mu     sync.RWMutex
	drafts map[string]*models.DraftReply
}

var _ interfaces.DraftStore = (*LocalDraftStore)(nil)

func NewLocalDraftStore(log logger.Logger, dir string) *LocalDraftStore {
	return &LocalDraftStore{
		log:    log,
		dir:    dir,
		drafts: make(map[string]*models.DraftReply),
	}
}

func (s *LocalDraftStore) CreateDraft(ctx context.Context, draft *models.DraftReply) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "LocalDraftStore.CreateDraft")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if draft == nil {
		return "", errors.New("draft is nil")
	}
	id := uuid.New().String()
	stored := *draft
	stored.DraftID = id

	if s.dir != "" {
		data, err := json.MarshalIndent(&stored, "", "  ")
		if err != nil {
			tracing.TraceErr(span, err)
			return "", errors.Wrap(err, "failed to encode draft")
		}
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			tracing.TraceErr(span, err)
			return "", errors.Wrap(err, "failed to create draft directory")
		}
		if err := os.WriteFile(filepath.Join(s.dir, id+".json"), data, 0o600); err != nil {
			tracing.TraceErr(span, err)
			return "", errors.Wrap(err, "failed to write draft")
		}
	}

	s.mu.Lock()
	s.drafts[id] = &stored
	s.mu.Unlock()

	tracing.TagEntity(span, id)
	s.log.Debugf("draft %s stored for %v", id, draft.Recipients)
	return id, nil
}

func (s *LocalDraftStore) Get(id string) (*models.DraftReply, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[id]
	return d, ok
}

func (s *LocalDraftStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}
