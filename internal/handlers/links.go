package handlers

import (
	"net/http"
	"time"

	"github.com/docvault/docvault/internal/pkg"
	"github.com/docvault/docvault/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LinkHandler handles link lifecycle and visitor access operations
type LinkHandler struct {
	linkService *services.LinkService
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(linkService *services.LinkService) *LinkHandler {
	return &LinkHandler{
		linkService: linkService,
	}
}

// CreateLink creates a new share link for an owned document
func (h *LinkHandler) CreateLink(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	type createLinkRequest struct {
		DocumentID    string     `json:"documentId" binding:"required"`
		Alias         string     `json:"alias"`
		IsPublic      bool       `json:"isPublic"`
		Password      string     `json:"password"`
		ExpiresAt     *time.Time `json:"expiresAt"`
		VisitorFields []string   `json:"visitorFields"`
	}

	var req createLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		pkg.BadRequestResponse(c, "Invalid request data")
		return
	}

	documentID, err := primitive.ObjectIDFromHex(req.DocumentID)
	if err != nil {
		pkg.BadRequestResponse(c, "Invalid document ID")
		return
	}

	link, err := h.linkService.CreateLink(c.Request.Context(), ownerID, &services.CreateLinkRequest{
		DocumentID:    documentID,
		Alias:         req.Alias,
		IsPublic:      req.IsPublic,
		Password:      req.Password,
		ExpiresAt:     req.ExpiresAt,
		VisitorFields: req.VisitorFields,
	})
	if err != nil {
		respondError(c, err, "Failed to create link")
		return
	}

	pkg.CreatedResponse(c, "Link created successfully", link)
}

// GetLinkMeta returns the gating flags for a link token. Fully public links
// get their signed file descriptor in the same response.
func (h *LinkHandler) GetLinkMeta(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		pkg.BadRequestResponse(c, "Link token is required")
		return
	}

	meta, err := h.linkService.GetLinkMeta(c.Request.Context(), token)
	if err != nil {
		respondError(c, err, "Failed to resolve link")
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Link resolved successfully", meta)
}

// AccessLink submits a gate payload and returns a signed file descriptor
func (h *LinkHandler) AccessLink(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		pkg.BadRequestResponse(c, "Link token is required")
		return
	}

	type accessRequest struct {
		Password    string                 `json:"password"`
		VisitorInfo map[string]interface{} `json:"visitorInfo"`
	}

	var req accessRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		pkg.BadRequestResponse(c, "Invalid request data")
		return
	}

	file, err := h.linkService.AccessLink(c.Request.Context(), token, req.Password, visitorInfoFromMap(req.VisitorInfo))
	if err != nil {
		respondError(c, err, "Failed to access link")
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Access granted", file)
}

// ListLinkVisitors returns a link's visitor log for its owner
func (h *LinkHandler) ListLinkVisitors(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	token := c.Param("token")
	if token == "" {
		pkg.BadRequestResponse(c, "Link token is required")
		return
	}

	params := pkg.NewPaginationParams(c)
	params.Sort = "visited_at"

	records, total, err := h.linkService.ListLinkVisitors(c.Request.Context(), ownerID, token, params)
	if err != nil {
		respondError(c, err, "Failed to list visitors")
		return
	}

	pkg.PaginatedResponse(c, "Visitors retrieved successfully", pkg.NewPaginationResult(records, total, params))
}

// DeleteLink deletes a link and its visitor log
func (h *LinkHandler) DeleteLink(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	token := c.Param("token")
	if token == "" {
		pkg.BadRequestResponse(c, "Link token is required")
		return
	}

	if err := h.linkService.DeleteLink(c.Request.Context(), ownerID, token); err != nil {
		respondError(c, err, "Failed to delete link")
		return
	}

	pkg.DeletedResponse(c, "Link deleted successfully")
}

// ListDocumentLinks lists the owner's links for a document
func (h *LinkHandler) ListDocumentLinks(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	documentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		pkg.BadRequestResponse(c, "Invalid document ID")
		return
	}

	links, err := h.linkService.ListDocumentLinks(c.Request.Context(), ownerID, documentID)
	if err != nil {
		respondError(c, err, "Failed to list links")
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Links retrieved successfully", links)
}

// Helpers shared across handlers

func ownerFromContext(c *gin.Context) (primitive.ObjectID, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		pkg.UnauthorizedResponse(c, "Authentication required")
		return primitive.NilObjectID, false
	}
	return userID.(primitive.ObjectID), true
}

func respondError(c *gin.Context, err error, fallback string) {
	if appErr, ok := pkg.IsAppError(err); ok {
		pkg.ErrorResponseFromAppError(c, appErr)
		return
	}
	pkg.InternalServerErrorResponse(c, fallback)
}

func visitorInfoFromMap(info map[string]interface{}) *services.VisitorInfo {
	if len(info) == 0 {
		return nil
	}

	visitor := &services.VisitorInfo{Metadata: make(map[string]interface{})}
	for key, value := range info {
		str, _ := value.(string)
		switch key {
		case "firstName", "first_name":
			visitor.FirstName = str
		case "lastName", "last_name":
			visitor.LastName = str
		case "email":
			visitor.Email = str
		default:
			visitor.Metadata[key] = value
		}
	}

	return visitor
}
