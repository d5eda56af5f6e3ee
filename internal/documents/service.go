package documents

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/channelworks/partnerhub-backend/internal/notifications"
	"github.com/channelworks/partnerhub-backend/internal/partners"
	"github.com/channelworks/partnerhub-backend/pkg/db/models"
	"github.com/channelworks/partnerhub-backend/pkg/enums"
	pkgerrors "github.com/channelworks/partnerhub-backend/pkg/errors"
	"github.com/channelworks/partnerhub-backend/pkg/logger"
)

type documentsRepository interface {
	Create(ctx context.Context, document *models.PartnerDocument) (*models.PartnerDocument, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.PartnerDocument, error)
	List(ctx context.Context, partnerID uuid.UUID) ([]models.PartnerDocument, error)
	Verify(ctx context.Context, id, verifiedBy uuid.UUID, at time.Time) (*models.PartnerDocument, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type partnersFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Partner, error)
}

type gcsClient interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
	ObjectExists(ctx context.Context, bucket, object string) (bool, error)
	DeleteObject(ctx context.Context, bucket, object string) error
}

type eventDispatcher interface {
	Dispatch(ctx context.Context, event notifications.Event)
}

// UploadURLInput describes the blob a client wants to upload.
type UploadURLInput struct {
	DocumentType enums.DocumentType `json:"document_type" validate:"required"`
	FileName     string             `json:"file_name" validate:"required"`
	ContentType  string             `json:"content_type" validate:"required"`
	FileSize     int64              `json:"file_size" validate:"required,gt=0"`
}

// UploadTicket is a presigned PUT grant plus the key the client must confirm.
type UploadTicket struct {
	UploadURL  string    `json:"upload_url"`
	StorageKey string    `json:"storage_key"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ConfirmUploadInput registers a blob that was uploaded with an UploadTicket.
type ConfirmUploadInput struct {
	DocumentType enums.DocumentType `json:"document_type" validate:"required"`
	FileName     string             `json:"file_name" validate:"required"`
	ContentType  string             `json:"content_type" validate:"required"`
	FileSize     int64              `json:"file_size" validate:"required,gt=0"`
	StorageKey   string             `json:"storage_key" validate:"required"`
}

// DocumentView is a document row with a short-lived read URL.
type DocumentView struct {
	models.PartnerDocument
	DownloadURL string `json:"download_url"`
}

// Service exposes the partner document flow: presign, confirm, verify, list.
type Service interface {
	CreateUploadURL(ctx context.Context, actor partners.Actor, partnerID uuid.UUID, input UploadURLInput) (*UploadTicket, error)
	ConfirmUpload(ctx context.Context, actor partners.Actor, partnerID uuid.UUID, input ConfirmUploadInput) (*models.PartnerDocument, error)
	ListDocuments(ctx context.Context, actor partners.Actor, partnerID uuid.UUID) ([]DocumentView, error)
	VerifyDocument(ctx context.Context, actor partners.Actor, documentID uuid.UUID) (*models.PartnerDocument, error)
	DeleteDocument(ctx context.Context, actor partners.Actor, documentID uuid.UUID) error
}

type service struct {
	repo        documentsRepository
	partnerRepo partnersFinder
	gcs         gcsClient
	events      eventDispatcher
	logg        *logger.Logger
	bucket      string
	uploadTTL   time.Duration
	downloadTTL time.Duration
	maxBytes    int64
	now         func() time.Time
}

// NewService builds the document service backed by the provided repositories
// and GCS signer.
func NewService(repo documentsRepository, partnerRepo partnersFinder, gcs gcsClient, events eventDispatcher, logg *logger.Logger, bucket string, uploadTTL, downloadTTL time.Duration, maxBytes int64) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("document repository required")
	}
	if partnerRepo == nil {
		return nil, fmt.Errorf("partner repository required")
	}
	if gcs == nil {
		return nil, fmt.Errorf("gcs client required")
	}
	if events == nil {
		return nil, fmt.Errorf("event dispatcher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("gcs bucket required")
	}
	if uploadTTL <= 0 || downloadTTL <= 0 {
		return nil, fmt.Errorf("signed url ttls must be positive")
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	return &service{
		repo:        repo,
		partnerRepo: partnerRepo,
		gcs:         gcs,
		events:      events,
		logg:        logg,
		bucket:      bucket,
		uploadTTL:   uploadTTL,
		downloadTTL: downloadTTL,
		maxBytes:    maxBytes,
		now:         time.Now,
	}, nil
}

func (s *service) CreateUploadURL(ctx context.Context, actor partners.Actor, partnerID uuid.UUID, input UploadURLInput) (*UploadTicket, error) {
	partner, err := s.loadPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if err := s.requireWriteAccess(actor, partner); err != nil {
		return nil, err
	}
	if err := validateUpload(input.DocumentType, input.FileName, input.ContentType, input.FileSize, s.maxBytes); err != nil {
		return nil, err
	}

	key := storageKey(partnerID, input.FileName)
	url, err := s.gcs.SignedURL(s.bucket, key, input.ContentType, s.uploadTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "generate signed upload url")
	}

	return &UploadTicket{
		UploadURL:  url,
		StorageKey: key,
		ExpiresAt:  s.now().Add(s.uploadTTL),
	}, nil
}

func (s *service) ConfirmUpload(ctx context.Context, actor partners.Actor, partnerID uuid.UUID, input ConfirmUploadInput) (*models.PartnerDocument, error) {
	partner, err := s.loadPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if err := s.requireWriteAccess(actor, partner); err != nil {
		return nil, err
	}
	if err := validateUpload(input.DocumentType, input.FileName, input.ContentType, input.FileSize, s.maxBytes); err != nil {
		return nil, err
	}
	key := strings.TrimSpace(input.StorageKey)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "storage_key is required")
	}
	if !strings.HasPrefix(key, keyPrefix(partnerID)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "storage_key does not belong to this partner")
	}

	// The metadata row only exists once the blob is actually there.
	exists, err := s.gcs.ObjectExists(ctx, s.bucket, key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check uploaded object")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "object not found in storage, upload it first")
	}

	document := &models.PartnerDocument{
		PartnerID:    partnerID,
		DocumentType: input.DocumentType,
		DocumentName: strings.TrimSpace(input.FileName),
		StorageKey:   key,
		FileSize:     input.FileSize,
		MimeType:     strings.TrimSpace(input.ContentType),
		UploadedBy:   actor.ID,
	}
	created, err := s.repo.Create(ctx, document)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create document")
	}
	return created, nil
}

func (s *service) ListDocuments(ctx context.Context, actor partners.Actor, partnerID uuid.UUID) ([]DocumentView, error) {
	partner, err := s.loadPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if !partners.CanRead(actor, partner) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no access to this partner")
	}

	rows, err := s.repo.List(ctx, partnerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list documents")
	}

	views := make([]DocumentView, len(rows))
	for i, row := range rows {
		url, err := s.gcs.SignedReadURL(s.bucket, row.StorageKey, s.downloadTTL)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "generate signed read url")
		}
		views[i] = DocumentView{PartnerDocument: row, DownloadURL: url}
	}
	return views, nil
}

func (s *service) VerifyDocument(ctx context.Context, actor partners.Actor, documentID uuid.UUID) (*models.PartnerDocument, error) {
	if err := partners.RequireCapability(actor, partners.CapabilityManage); err != nil {
		return nil, err
	}
	if documentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "document id is required")
	}

	verified, err := s.repo.Verify(ctx, documentID, actor.ID, s.now().UTC())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "document not found")
		}
		if errors.Is(err, ErrAlreadyVerified) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "document already verified")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify document")
	}

	partner, err := s.partnerRepo.FindByID(ctx, verified.PartnerID)
	if err != nil {
		// The verification itself committed; only the notice is lost.
		s.logg.Error(ctx, "lookup partner for verified document notice", err)
		return verified, nil
	}
	s.events.Dispatch(ctx, notifications.Event{
		Type:            enums.NotificationTypeDocumentVerified,
		PartnerID:       verified.PartnerID,
		RecipientUserID: partner.OwnerUserID,
		Title:           "Document verified",
		Message:         fmt.Sprintf("%s was verified.", verified.DocumentName),
	})
	return verified, nil
}

func (s *service) DeleteDocument(ctx context.Context, actor partners.Actor, documentID uuid.UUID) error {
	if documentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "document id is required")
	}
	document, err := s.repo.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "document not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup document")
	}
	partner, err := s.loadPartner(ctx, document.PartnerID)
	if err != nil {
		return err
	}
	if err := s.requireWriteAccess(actor, partner); err != nil {
		return err
	}
	if document.Verified {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "verified documents cannot be deleted")
	}

	if err := s.repo.Delete(ctx, documentID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete document")
	}
	// Blob removal is best effort; an orphan blob is harmless.
	_ = s.gcs.DeleteObject(ctx, s.bucket, document.StorageKey)
	return nil
}

func (s *service) requireWriteAccess(actor partners.Actor, partner *models.Partner) error {
	if partners.Owns(actor, partner) {
		return nil
	}
	return partners.RequireCapability(actor, partners.CapabilityManage)
}

func (s *service) loadPartner(ctx context.Context, partnerID uuid.UUID) (*models.Partner, error) {
	if partnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partner id is required")
	}
	partner, err := s.partnerRepo.FindByID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "partner not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup partner")
	}
	return partner, nil
}

func validateUpload(docType enums.DocumentType, fileName, contentType string, size, maxBytes int64) error {
	if !docType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid document type")
	}
	if strings.TrimSpace(fileName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}
	if strings.TrimSpace(contentType) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "content type is required")
	}
	if size <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "file size must be positive")
	}
	if size > maxBytes {
		return pkgerrors.New(pkgerrors.CodeValidation, "file exceeds the upload size limit")
	}
	return nil
}

func keyPrefix(partnerID uuid.UUID) string {
	return "partners/" + partnerID.String() + "/documents/"
}

func storageKey(partnerID uuid.UUID, fileName string) string {
	base := path.Base(strings.TrimSpace(fileName))
	return keyPrefix(partnerID) + uuid.NewString() + "-" + base
}
