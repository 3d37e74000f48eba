package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"verifyapi/internal/catalog"
	"verifyapi/internal/identity"
	"verifyapi/internal/model"
	"verifyapi/internal/notify"
	"verifyapi/internal/repository"
	"verifyapi/internal/storage"
)

// SubmitInput is a farm's upload against a document type. File is optional;
// when nil only the record is created.
type SubmitInput struct {
	FarmID         string
	DocumentTypeID int
	File           io.Reader
	Filename       string
	ContentType    string
	Size           int64
	Note           string
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// DocumentService runs the document review state machine:
// PENDING -> APPROVED | REJECTED, with no way out of a terminal state.
type DocumentService interface {
	// Submit stores the file, then records a new PENDING document. If the
	// record cannot be saved the stored object is removed again.
	Submit(ctx context.Context, in SubmitInput) (*model.Document, error)

	// Review applies an administrator's decision to a PENDING document.
	Review(ctx context.Context, id string, decision model.Decision, comment string) (*model.Document, error)

	// LatestFor returns the newest document for the pair, or nil when none exists.
	// Reads, downloads included, are limited to administrators and the
	// farm's applicant; ListPending to administrators.
	LatestFor(ctx context.Context, farmID string, typeID int) (*model.Document, error)

	Get(ctx context.Context, id string) (*model.Document, error)
	ListByFarm(ctx context.Context, farmID string) ([]model.Document, error)
	ListPending(ctx context.Context, limit, offset int) (*DocumentListResult, error)

	// DownloadURL returns a time-limited URL for the document's file.
	DownloadURL(ctx context.Context, id string) (string, error)
	// Open streams the document's file.
	Open(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error)
}

type documentService struct {
	repo    repository.DocumentRepository
	farms   repository.FarmRepository
	catalog catalog.Provider
	store   storage.Storage
	access  farmAccess
	options
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(
	repo repository.DocumentRepository,
	farms repository.FarmRepository,
	grants repository.RoleGrantRepository,
	cat catalog.Provider,
	store storage.Storage,
	opts ...Option,
) DocumentService {
	return &documentService{
		repo:    repo,
		farms:   farms,
		catalog: cat,
		store:   store,
		access:  farmAccess{grants: grants},
		options: buildOptions(opts),
	}
}

func (s *documentService) Submit(ctx context.Context, in SubmitInput) (_ *model.Document, err error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Submit", trace.WithAttributes(
		attribute.String("farm.id", in.FarmID),
		attribute.Int("document_type.id", in.DocumentTypeID),
	))
	defer func() { finish(span, err) }()

	if err := s.authorizeFarm(ctx, in.FarmID); err != nil {
		return nil, err
	}

	dt, err := s.catalog.Get(ctx, in.DocumentTypeID)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownType) {
			return nil, invalidInput("document_type", strconv.Itoa(in.DocumentTypeID), "unknown document type")
		}
		return nil, fmt.Errorf("load document type: %w", err)
	}

	var ref *model.FileRef
	if in.File != nil {
		ref, err = s.storeFile(ctx, in)
		if err != nil {
			return nil, err
		}
	}

	doc := &model.Document{
		ID:             uuid.NewString(),
		FarmID:         in.FarmID,
		DocumentTypeID: dt.ID,
		File:           ref,
		Status:         model.StatusPending,
		Note:           strings.TrimSpace(in.Note),
		SubmittedAt:    s.now(),
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		if ref != nil {
			if delErr := s.store.Delete(ctx, ref.Path); delErr != nil {
				s.log(ctx).Error("orphaned upload after failed insert",
					zap.String("key", ref.Path), zap.Error(delErr))
				return nil, fmt.Errorf("save document: %v; rollback delete failed: %v", err, delErr)
			}
		}
		return nil, fmt.Errorf("save document: %w", err)
	}

	s.metrics.DocumentSubmitted(dt.Name)
	s.log(ctx).Info("document submitted",
		zap.String("document_id", stored.ID),
		zap.String("farm_id", stored.FarmID),
		zap.Int("document_type_id", stored.DocumentTypeID),
	)
	return stored, nil
}

func (s *documentService) storeFile(ctx context.Context, in SubmitInput) (*model.FileRef, error) {
	ct := in.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	size := in.Size
	if size <= 0 {
		size = -1
	}
	key := storage.DocumentKey(in.FarmID, in.Filename)
	info, err := s.store.Put(ctx, key, in.File, storage.PutObjectOptions{
		Size:        size,
		ContentType: ct,
		Metadata: map[string]string{
			"original-filename": in.Filename,
			"farm-id":           in.FarmID,
			"document-type-id":  strconv.Itoa(in.DocumentTypeID),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}
	return &model.FileRef{
		Path:         info.Key,
		OriginalName: in.Filename,
		Size:         info.Size,
		ContentType:  ct,
	}, nil
}

// authorizeFarm requires a known farm the actor may submit documents for.
func (s *documentService) authorizeFarm(ctx context.Context, farmID string) error {
	if _, ok := identity.FromContext(ctx); !ok {
		return unauthenticated()
	}
	if strings.TrimSpace(farmID) == "" {
		return invalidInput("farm", "", "farm id is required")
	}
	if _, err := s.farms.FindByID(ctx, farmID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalidInput("farm", farmID, "unknown farm")
		}
		return fmt.Errorf("load farm: %w", err)
	}
	return s.access.check(ctx, farmID, "submit documents")
}

func (s *documentService) Review(ctx context.Context, id string, decision model.Decision, comment string) (_ *model.Document, err error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Review", trace.WithAttributes(
		attribute.String("document.id", id),
		attribute.String("decision", string(decision)),
	))
	defer func() { finish(span, err) }()

	actor, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if !decision.Valid() {
		return nil, invalidInput("decision", string(decision), "must be APPROVE or REJECT")
	}

	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("document", id)
		}
		return nil, fmt.Errorf("load document: %w", err)
	}
	if doc.Status != model.StatusPending {
		return nil, invalidTransition("document", id, doc.Status)
	}

	comment = strings.TrimSpace(comment)
	if decision == model.DecisionReject && comment == "" {
		return nil, validation("document", id, "a rejection requires a comment")
	}

	at := s.now()
	reviewed, err := s.repo.Review(ctx, id, repository.DocumentReview{
		Status:     decision.Target(),
		Comment:    comment,
		ReviewerID: actor.UserID,
		At:         at,
	})
	switch {
	case errors.Is(err, repository.ErrStaleState):
		return nil, invalidTransition("document", id, "")
	case errors.Is(err, repository.ErrNotFound):
		return nil, notFound("document", id)
	case err != nil:
		return nil, fmt.Errorf("review document: %w", err)
	}

	s.metrics.DocumentReviewed(string(reviewed.Status))
	s.log(ctx).Info("document reviewed",
		zap.String("document_id", id),
		zap.String("status", string(reviewed.Status)),
		zap.String("reviewer_id", actor.UserID),
	)

	ev := notify.DocumentApproved
	if reviewed.Status == model.StatusRejected {
		ev = notify.DocumentRejected
	}
	s.emit(ctx, notify.Event{
		Type:     ev,
		EntityID: reviewed.ID,
		FarmID:   reviewed.FarmID,
		ActorID:  actor.UserID,
		Comment:  reviewed.Comment,
		At:       at,
		Attrs:    map[string]string{"document_type_id": strconv.Itoa(reviewed.DocumentTypeID)},
	})
	return reviewed, nil
}

func (s *documentService) LatestFor(ctx context.Context, farmID string, typeID int) (*model.Document, error) {
	if err := s.access.check(ctx, farmID, "read its documents"); err != nil {
		return nil, err
	}
	doc, err := s.repo.LatestFor(ctx, farmID, typeID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest document: %w", err)
	}
	return doc, nil
}

func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, invalidInput("document", "", "id is required")
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("document", id)
		}
		return nil, err
	}
	if err := s.access.check(ctx, doc.FarmID, "read its documents"); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *documentService) ListByFarm(ctx context.Context, farmID string) ([]model.Document, error) {
	if _, err := s.farms.FindByID(ctx, farmID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("farm", farmID)
		}
		return nil, err
	}
	if err := s.access.check(ctx, farmID, "read its documents"); err != nil {
		return nil, err
	}
	return s.repo.ListByFarm(ctx, farmID)
}

// ListPending returns the review queue, oldest submission first.
func (s *documentService) ListPending(ctx context.Context, limit, offset int) (*DocumentListResult, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.ListPending(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) DownloadURL(ctx context.Context, id string) (string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if doc.File == nil {
		return "", notFound("document file", id)
	}
	u, err := s.store.PresignGet(ctx, doc.File.Path, doc.File.OriginalName, s.urlTTL)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return "", notFound("document file", id)
		}
		return "", fmt.Errorf("presign download: %w", err)
	}
	return u, nil
}

func (s *documentService) Open(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	if doc.File == nil {
		return nil, storage.ObjectInfo{}, notFound("document file", id)
	}
	rc, info, err := s.store.Get(ctx, doc.File.Path)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, storage.ObjectInfo{}, notFound("document file", id)
		}
		return nil, storage.ObjectInfo{}, fmt.Errorf("open stored file: %w", err)
	}
	if info.ContentType == "" {
		info.ContentType = doc.File.ContentType
	}
	return rc, info, nil
}
