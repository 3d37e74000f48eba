package handler

import (
	"errors"
	"path"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"verifyapi/internal/catalog"
	"verifyapi/internal/model"
	"verifyapi/internal/service"
)

type reviewRequest struct {
	Decision model.Decision `json:"decision"`
	Comment  string         `json:"comment"`
}

// parsePage reads limit and offset query parameters. ok is false once the
// 400 response has been written.
func parsePage(c *fiber.Ctx) (limit, offset int, ok bool) {
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		return 0, 0, false
	}
	offset, err = strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		return 0, 0, false
	}
	return limit, offset, true
}

// pathID returns the named path parameter when it is a UUID. ok is false
// once the 400 response has been written.
func pathID(c *fiber.Ctx, name string) (id string, ok bool) {
	id = c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		return "", false
	}
	return id, true
}

// ListDocumentTypes returns the configured document type catalog.
//
//	@Summary	Document type catalog
//	@Tags		documents
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	map[string][]model.DocumentType
//	@Router		/document-types [get]
func ListDocumentTypes(cat catalog.Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		types, err := cat.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": types})
	}
}

// SubmitDocument uploads a file against a document type
// (multipart/form-data: file, document_type_id, note).
//
//	@Summary	Submit a farm document
//	@Tags		documents
//	@Accept		multipart/form-data
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id					path		string	true	"Farm ID"
//	@Param		document_type_id	formData	int		true	"Document type"
//	@Param		file				formData	file	false	"Document file"
//	@Param		note				formData	string	false	"Submitter note"
//	@Success	201	{object}	model.Document
//	@Failure	400	{object}	errorPayload
//	@Router		/farms/{id}/documents [post]
func SubmitDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		farmID, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		typeID, err := strconv.Atoi(c.FormValue("document_type_id"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DOCUMENT_TYPE", "document_type_id must be an integer")
		}

		in := service.SubmitInput{
			FarmID:         farmID,
			DocumentTypeID: typeID,
			Note:           c.FormValue("note"),
		}

		fh, err := c.FormFile("file")
		switch {
		case err == nil:
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			defer f.Close()
			in.File = f
			in.Filename = fh.Filename
			in.ContentType = fh.Header.Get("Content-Type")
			in.Size = fh.Size
		case errors.Is(err, fasthttp.ErrMissingFile), errors.Is(err, fasthttp.ErrNoMultipartForm):
		default:
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "invalid multipart body")
		}

		doc, err := svc.Submit(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// ListFarmDocuments returns every document a farm has submitted.
//
//	@Summary	List farm documents
//	@Tags		documents
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Farm ID"
//	@Success	200	{object}	map[string][]model.Document
//	@Router		/farms/{id}/documents [get]
func ListFarmDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		farmID, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		docs, err := svc.ListByFarm(c.UserContext(), farmID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": docs})
	}
}

// ListPendingDocuments returns the review queue, oldest first.
//
//	@Summary	Review queue
//	@Tags		documents
//	@Produce	json
//	@Security	BearerAuth
//	@Param		limit	query		int	false	"Page size"	default(10)
//	@Param		offset	query		int	false	"Offset"	default(0)
//	@Success	200		{object}	service.DocumentListResult
//	@Router		/documents/pending [get]
func ListPendingDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok := parsePage(c)
		if !ok {
			return nil
		}
		res, err := svc.ListPending(c.UserContext(), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetDocument returns one document record.
//
//	@Summary	Get document
//	@Tags		documents
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Document ID"
//	@Success	200	{object}	model.Document
//	@Failure	404	{object}	errorPayload
//	@Router		/documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// ReviewDocument approves or rejects a PENDING document.
//
//	@Summary	Review document
//	@Tags		documents
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string			true	"Document ID"
//	@Param		body	body		reviewRequest	true	"Decision"
//	@Success	200		{object}	model.Document
//	@Failure	409		{object}	errorPayload
//	@Failure	422		{object}	errorPayload
//	@Router		/documents/{id}/review [post]
func ReviewDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		var req reviewRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		req.Decision = model.Decision(strings.ToUpper(strings.TrimSpace(string(req.Decision))))

		doc, err := svc.Review(c.UserContext(), id, req.Decision, req.Comment)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DownloadDocument streams the stored file of a document.
//
//	@Summary	Download document file
//	@Tags		documents
//	@Produce	octet-stream
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Document ID"
//	@Success	200
//	@Failure	404	{object}	errorPayload
//	@Router		/documents/{id}/download [get]
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		rc, info, err := svc.Open(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}

		name := metadataValue(info.Metadata, "original-filename")
		if name == "" {
			name = path.Base(info.Key)
		}
		c.Attachment(name)
		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		size := int(info.Size)
		if size <= 0 {
			size = -1
		}
		return c.SendStream(rc, size)
	}
}

// DocumentDownloadURL returns a presigned URL for the document's file.
//
//	@Summary	Presigned download URL
//	@Tags		documents
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Document ID"
//	@Success	200	{object}	map[string]string
//	@Router		/documents/{id}/download-url [get]
func DocumentDownloadURL(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		u, err := svc.DownloadURL(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"url": u})
	}
}

// metadataValue looks key up case-insensitively; object stores differ in how
// they canonicalize user metadata keys.
func metadataValue(md map[string]string, key string) string {
	for k, v := range md {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
