package handlers

import (
	"net/http"

	"github.com/docvault/docvault/internal/pkg"
	"github.com/docvault/docvault/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DocumentHandler handles owner-side document operations
type DocumentHandler struct {
	documentService *services.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
	}
}

// Upload stores a new document from a multipart form
func (h *DocumentHandler) Upload(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		pkg.BadRequestResponse(c, "File is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		pkg.InternalServerErrorResponse(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc, err := h.documentService.Upload(c.Request.Context(), ownerID, fileHeader.Filename, file, fileHeader.Size, contentType)
	if err != nil {
		respondError(c, err, "Failed to upload document")
		return
	}

	pkg.CreatedResponse(c, "Document uploaded successfully", doc)
}

// Get retrieves a document record
func (h *DocumentHandler) Get(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	documentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		pkg.BadRequestResponse(c, "Invalid document ID")
		return
	}

	doc, err := h.documentService.Get(c.Request.Context(), ownerID, documentID)
	if err != nil {
		respondError(c, err, "Failed to get document")
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Document retrieved successfully", doc)
}

// List lists the owner's documents
func (h *DocumentHandler) List(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	params := pkg.NewPaginationParams(c)

	docs, total, err := h.documentService.List(c.Request.Context(), ownerID, params)
	if err != nil {
		respondError(c, err, "Failed to list documents")
		return
	}

	pkg.PaginatedResponse(c, "Documents retrieved successfully", pkg.NewPaginationResult(docs, total, params))
}

// Delete removes a document, its links and its stored object
func (h *DocumentHandler) Delete(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	documentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		pkg.BadRequestResponse(c, "Invalid document ID")
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), ownerID, documentID); err != nil {
		respondError(c, err, "Failed to delete document")
		return
	}

	pkg.DeletedResponse(c, "Document deleted successfully")
}
