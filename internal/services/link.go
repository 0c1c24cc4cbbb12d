package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docvault/docvault/internal/models"
	"github.com/docvault/docvault/internal/pkg"
	"github.com/docvault/docvault/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const linkTokenBytes = 16

// SignedURLIssuer is the narrow object-store surface the link service needs.
// StorageService satisfies it.
type SignedURLIssuer interface {
	GetPresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// LinkService orchestrates the link lifecycle: creation, gating, visitor
// logging and signed-URL issuance.
type LinkService struct {
	linkRepo     repository.LinkRepository
	visitorRepo  repository.VisitorRepository
	documentRepo repository.DocumentRepository
	analytics    *AnalyticsService
	issuer       SignedURLIssuer
	logger       *zap.Logger

	baseURL        string
	defaultLinkTTL time.Duration
	signedURLTTL   time.Duration
}

// LinkServiceConfig carries link service tunables
type LinkServiceConfig struct {
	BaseURL        string
	DefaultLinkTTL time.Duration
	SignedURLTTL   time.Duration
}

// NewLinkService creates a new link service
func NewLinkService(
	linkRepo repository.LinkRepository,
	visitorRepo repository.VisitorRepository,
	documentRepo repository.DocumentRepository,
	analytics *AnalyticsService,
	issuer SignedURLIssuer,
	logger *zap.Logger,
	cfg LinkServiceConfig,
) *LinkService {
	return &LinkService{
		linkRepo:       linkRepo,
		visitorRepo:    visitorRepo,
		documentRepo:   documentRepo,
		analytics:      analytics,
		issuer:         issuer,
		logger:         logger,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		defaultLinkTTL: cfg.DefaultLinkTTL,
		signedURLTTL:   cfg.SignedURLTTL,
	}
}

// CreateLinkRequest represents link creation request
type CreateLinkRequest struct {
	DocumentID    primitive.ObjectID `json:"documentId" validate:"required"`
	Alias         string             `json:"alias,omitempty" validate:"omitempty,alias"`
	IsPublic      bool               `json:"isPublic"`
	Password      string             `json:"password,omitempty"`
	ExpiresAt     *time.Time         `json:"expiresAt,omitempty"`
	VisitorFields []string           `json:"visitorFields,omitempty"`
}

// LinkResponse represents a created link plus its shareable URL
type LinkResponse struct {
	*models.Link
	LinkURL string `json:"linkUrl"`
}

// SignedFile is a short-lived descriptor for a stored document
type SignedFile struct {
	SignedURL  string             `json:"signedUrl"`
	FileName   string             `json:"fileName"`
	Size       int64              `json:"size"`
	FileType   string             `json:"fileType"`
	DocumentID primitive.ObjectID `json:"documentId"`
}

// LinkMeta is the gate-decision payload for a link. For fully public links
// the signed file descriptor is issued inline.
type LinkMeta struct {
	IsPasswordProtected bool     `json:"isPasswordProtected"`
	VisitorFields       []string `json:"visitorFields"`
	*SignedFile
}

// VisitorInfo is the gate submission supplied by a visitor
type VisitorInfo struct {
	FirstName string                 `json:"firstName,omitempty"`
	LastName  string                 `json:"lastName,omitempty"`
	Email     string                 `json:"email,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// ValidateOptions tunes ValidateLinkAccess
type ValidateOptions struct {
	SkipPasswordCheck bool
}

// CreateLink creates a new link for a document the owner controls.
// Ownership failures are reported as LINK_NOT_FOUND so outsiders cannot
// distinguish "doesn't exist" from "not yours".
func (s *LinkService) CreateLink(ctx context.Context, ownerID primitive.ObjectID, req *CreateLinkRequest) (*LinkResponse, error) {
	if errs := pkg.DefaultValidator.Validate(req); errs != nil {
		return nil, pkg.ErrValidationFailed.WithDetails(map[string]interface{}{
			"errors": errs,
		})
	}

	doc, err := s.documentRepo.GetByID(ctx, req.DocumentID)
	if err != nil {
		return nil, pkg.ErrLinkNotFound
	}
	if doc.UserID != ownerID {
		return nil, pkg.ErrLinkNotFound
	}

	now := time.Now()
	expiresAt := now.Add(s.defaultLinkTTL)
	if req.ExpiresAt != nil {
		if req.ExpiresAt.Before(now) {
			return nil, pkg.ErrInvalidExpiration
		}
		expiresAt = *req.ExpiresAt
	}

	token, err := pkg.GenerateSecureToken(linkTokenBytes)
	if err != nil {
		return nil, pkg.ErrInternalServer.WithCause(err)
	}

	link := &models.Link{
		Token:         token,
		DocumentID:    req.DocumentID,
		CreatedBy:     ownerID,
		Alias:         req.Alias,
		IsPublic:      req.IsPublic,
		ExpiresAt:     expiresAt,
		VisitorFields: normalizeVisitorFields(req.VisitorFields),
	}

	if req.Password != "" {
		hashed, err := pkg.HashPassword(req.Password)
		if err != nil {
			return nil, pkg.ErrInternalServer.WithCause(err)
		}
		link.Password = hashed
	}

	if err := s.linkRepo.Create(ctx, link); err != nil {
		return nil, err
	}

	s.analytics.Emit(&models.AnalyticsEvent{
		EventType:  models.EventLinkCreated,
		LinkID:     link.ID,
		DocumentID: link.DocumentID,
	})

	return &LinkResponse{
		Link:    link,
		LinkURL: s.linkURL(link.Token),
	}, nil
}

// GetLinkMeta resolves a link token into its gating flags. Fully public
// links short-circuit: the signed URL is issued in the same call so ungated
// access needs no second round trip.
func (s *LinkService) GetLinkMeta(ctx context.Context, token string) (*LinkMeta, error) {
	link, err := s.resolveLink(ctx, token)
	if err != nil {
		return nil, err
	}

	meta := &LinkMeta{
		IsPasswordProtected: link.HasPassword(),
		VisitorFields:       link.VisitorFields,
	}

	if link.IsFullyPublic() {
		file, err := s.signedFileForLink(ctx, link)
		if err != nil {
			return nil, err
		}
		meta.SignedFile = file

		s.bumpViewCount(ctx, link)
		s.analytics.Emit(&models.AnalyticsEvent{
			EventType:  models.EventLinkViewed,
			LinkID:     link.ID,
			DocumentID: link.DocumentID,
		})
	}

	return meta, nil
}

// ValidateLinkAccess checks the gate for a link without issuing a signed URL
// or logging the visitor, so callers can probe validity cheaply.
func (s *LinkService) ValidateLinkAccess(ctx context.Context, token, password string, opts *ValidateOptions) (*models.Link, error) {
	link, err := s.resolveLink(ctx, token)
	if err != nil {
		return nil, err
	}

	if opts != nil && opts.SkipPasswordCheck {
		return link, nil
	}

	if link.HasPassword() {
		if password == "" || !pkg.VerifyPassword(password, link.Password) {
			return nil, pkg.ErrInvalidLinkPassword
		}
	}

	return link, nil
}

// GetSignedFileFromLink re-resolves the link and issues a signed URL whose
// TTL never outlives the link itself. Expiration is re-checked here: the gap
// since any earlier metadata call is accepted, not hidden.
func (s *LinkService) GetSignedFileFromLink(ctx context.Context, token string) (*SignedFile, error) {
	link, err := s.resolveLink(ctx, token)
	if err != nil {
		return nil, err
	}

	return s.signedFileForLink(ctx, link)
}

// AccessLink is the full gated access path: password check, required visitor
// fields, visitor logging and signed-URL issuance. Visitor-log failures are
// logged but never block the access decision.
func (s *LinkService) AccessLink(ctx context.Context, token, password string, visitor *VisitorInfo) (*SignedFile, error) {
	link, err := s.ValidateLinkAccess(ctx, token, password, nil)
	if err != nil {
		return nil, err
	}

	if missing := missingVisitorFields(link.VisitorFields, visitor); len(missing) > 0 {
		return nil, pkg.ErrValidationFailed.WithDetails(map[string]interface{}{
			"missingFields": missing,
		})
	}

	if _, err := s.logVisitor(ctx, link, visitor); err != nil {
		s.logger.Warn("failed to log link visitor",
			zap.String("link_id", link.ID.Hex()),
			zap.Error(err))
	}

	file, err := s.signedFileForLink(ctx, link)
	if err != nil {
		return nil, err
	}

	s.bumpViewCount(ctx, link)
	s.analytics.Emit(&models.AnalyticsEvent{
		EventType:  models.EventFileDownloaded,
		LinkID:     link.ID,
		DocumentID: link.DocumentID,
	})

	return file, nil
}

// LogVisitor records a visitor for a gated link. Fully public links are
// never logged; the visitor trail exists to build a contact record for
// gated shares, not to count anonymous traffic.
func (s *LinkService) LogVisitor(ctx context.Context, token string, visitor *VisitorInfo) (*models.VisitorRecord, error) {
	link, err := s.resolveLink(ctx, token)
	if err != nil {
		return nil, err
	}

	return s.logVisitor(ctx, link, visitor)
}

// ListDocumentLinks lists all links the owner created for a document
func (s *LinkService) ListDocumentLinks(ctx context.Context, ownerID, documentID primitive.ObjectID) ([]*LinkResponse, error) {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, pkg.ErrLinkNotFound
	}
	if doc.UserID != ownerID {
		return nil, pkg.ErrLinkNotFound
	}

	links, err := s.linkRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	responses := make([]*LinkResponse, 0, len(links))
	for _, link := range links {
		responses = append(responses, &LinkResponse{
			Link:    link,
			LinkURL: s.linkURL(link.Token),
		})
	}

	return responses, nil
}

// ListLinkVisitors lists a link's visitor log for its owner. Tokens of
// expired links still resolve here: the visitor trail outlives the link's
// usable lifetime.
func (s *LinkService) ListLinkVisitors(ctx context.Context, ownerID primitive.ObjectID, token string, params *pkg.PaginationParams) ([]*models.VisitorRecord, int64, error) {
	link, err := s.linkRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, 0, err
	}
	if link.CreatedBy != ownerID {
		return nil, 0, pkg.ErrLinkNotFound
	}

	return s.visitorRepo.ListByLink(ctx, link.ID, params)
}

// DeleteLink deletes a link and its visitor log. The cascade is an explicit
// two-step contract: dependent visitor records first, then the link.
// Expired links remain deletable.
func (s *LinkService) DeleteLink(ctx context.Context, ownerID primitive.ObjectID, token string) error {
	link, err := s.linkRepo.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	if link.CreatedBy != ownerID {
		return pkg.ErrLinkNotFound
	}

	if _, err := s.visitorRepo.DeleteByLink(ctx, link.ID); err != nil {
		return err
	}

	if err := s.linkRepo.Delete(ctx, link.ID); err != nil {
		return err
	}

	s.analytics.Emit(&models.AnalyticsEvent{
		EventType:  models.EventLinkDeleted,
		LinkID:     link.ID,
		DocumentID: link.DocumentID,
	})

	return nil
}

// DeleteDocumentLinks removes every link for a document with each link's
// visitor cascade. Used when the document itself is deleted.
func (s *LinkService) DeleteDocumentLinks(ctx context.Context, documentID primitive.ObjectID) error {
	links, err := s.linkRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return err
	}

	for _, link := range links {
		if _, err := s.visitorRepo.DeleteByLink(ctx, link.ID); err != nil {
			return err
		}
		if err := s.linkRepo.Delete(ctx, link.ID); err != nil {
			return err
		}
	}

	return nil
}

// Helper methods

func (s *LinkService) resolveLink(ctx context.Context, token string) (*models.Link, error) {
	link, err := s.linkRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if link.IsExpired(time.Now()) {
		return nil, pkg.ErrLinkExpired
	}

	return link, nil
}

func (s *LinkService) signedFileForLink(ctx context.Context, link *models.Link) (*SignedFile, error) {
	doc, err := s.documentRepo.GetByID(ctx, link.DocumentID)
	if err != nil {
		return nil, pkg.ErrLinkNotFound
	}

	remaining := time.Until(link.ExpiresAt)
	if remaining <= 0 {
		return nil, pkg.ErrLinkExpired
	}

	ttl := s.signedURLTTL
	if remaining < ttl {
		ttl = remaining
	}

	url, err := s.issuer.GetPresignedURL(ctx, doc.StoragePath, ttl)
	if err != nil {
		return nil, err
	}

	return &SignedFile{
		SignedURL:  url,
		FileName:   doc.Name,
		Size:       doc.Size,
		FileType:   doc.MimeType,
		DocumentID: doc.ID,
	}, nil
}

func (s *LinkService) logVisitor(ctx context.Context, link *models.Link, visitor *VisitorInfo) (*models.VisitorRecord, error) {
	if link.IsFullyPublic() {
		return nil, nil
	}

	record := &models.VisitorRecord{
		LinkID: link.ID,
	}
	if visitor != nil {
		record.FirstName = visitor.FirstName
		record.LastName = visitor.LastName
		record.Email = visitor.Email
		record.Metadata = visitor.Metadata
	}

	if err := s.visitorRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

func (s *LinkService) bumpViewCount(ctx context.Context, link *models.Link) {
	if err := s.linkRepo.IncrementViewCount(ctx, link.ID); err != nil {
		s.logger.Warn("failed to increment link view count",
			zap.String("link_id", link.ID.Hex()),
			zap.Error(err))
	}
}

func (s *LinkService) linkURL(token string) string {
	return fmt.Sprintf("%s/links/%s", s.baseURL, token)
}

func normalizeVisitorFields(fields []string) []string {
	out := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// missingVisitorFields returns the configured field keys the submission did
// not satisfy. "name" accepts either first or last name; unknown keys are
// matched against the metadata blob.
func missingVisitorFields(required []string, visitor *VisitorInfo) []string {
	var missing []string
	for _, field := range required {
		if !visitorFieldSatisfied(field, visitor) {
			missing = append(missing, field)
		}
	}
	return missing
}

func visitorFieldSatisfied(field string, visitor *VisitorInfo) bool {
	if visitor == nil {
		return false
	}

	switch field {
	case "email":
		return visitor.Email != ""
	case "name":
		return visitor.FirstName != "" || visitor.LastName != ""
	case "firstname", "first_name":
		return visitor.FirstName != ""
	case "lastname", "last_name":
		return visitor.LastName != ""
	default:
		value, ok := visitor.Metadata[field]
		if !ok {
			return false
		}
		str, isString := value.(string)
		return !isString || str != ""
	}
}
