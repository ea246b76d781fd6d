package httpserver

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/KaityXD/choas-lib/internal/common"
	"github.com/KaityXD/choas-lib/internal/server/registry"
	"github.com/KaityXD/choas-lib/internal/server/services"
	"github.com/gin-gonic/gin"
)

const (
	// multipartOverhead is head room for boundaries and part headers on top
	// of the file cap.
	multipartOverhead = 1 << 20
	multipartMemory   = 32 << 20

	defaultPageSize = 20
	maxPageSize     = 500
)

func (s *HTTPServer) handleHealth(c *gin.Context) {
	r := s.health.Check(c.Request.Context())
	code := http.StatusOK
	if !r.Healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, r)
}

func (s *HTTPServer) handleGUI(c *gin.Context) {
	c.HTML(http.StatusOK, "gui.html", nil)
}

// handleUpload takes one multipart field "file" and answers with its URL.
func (s *HTTPServer) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadSize+multipartOverhead)

	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeError(c, common.ErrPayloadTooLarge)
			return
		}
		badRequest(c, "invalid multipart form")
		return
	}
	defer c.Request.MultipartForm.RemoveAll()

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		badRequest(c, "no file provided")
		return
	}
	defer file.Close()

	data, err := readPart(file, header, s.opts.MaxUploadSize)
	if err != nil {
		writeError(c, err)
		return
	}

	u, err := s.files.Upload(c.Request.Context(), header.Filename, data)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": u})
}

func readPart(f multipart.File, h *multipart.FileHeader, max int64) ([]byte, error) {
	if h.Size > max {
		return nil, common.ErrPayloadTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(f, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, common.ErrPayloadTooLarge
	}
	return data, nil
}

func (s *HTTPServer) handleServe(c *gin.Context) {
	obj, err := s.files.Read(c.Request.Context(), c.Param("filename"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("X-Content-Type-Options", "nosniff")
	if registry.IsActive(obj.Name) {
		c.Header("Content-Security-Policy", "sandbox; default-src 'none'")
		c.Header("Content-Disposition", "attachment")
	} else {
		c.Header("Content-Disposition", "inline")
	}
	if !obj.ModTime.IsZero() {
		c.Header("Last-Modified", obj.ModTime.UTC().Format(http.TimeFormat))
	}
	c.Data(http.StatusOK, obj.ContentType, obj.Data)
}

func (s *HTTPServer) handleDelete(c *gin.Context) {
	if err := s.files.Remove(c.Request.Context(), c.Param("filename")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (s *HTTPServer) handleAPIList(c *gin.Context) {
	q, ok := listQuery(c)
	if !ok {
		return
	}

	page, err := s.files.List(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// listQuery reads page, limit, sort_by and order. Unknown sort keys fall
// back to date/desc; malformed numbers are a 400.
func listQuery(c *gin.Context) (services.ListQuery, bool) {
	q := services.ListQuery{
		Page:     1,
		PageSize: defaultPageSize,
		SortBy:   registry.ParseSortBy(c.Query("sort_by")),
		Order:    registry.ParseOrder(c.Query("order")),
	}

	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequest(c, "invalid page")
			return q, false
		}
		q.Page = n
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxPageSize {
			badRequest(c, "limit must be between 1 and 500")
			return q, false
		}
		q.PageSize = n
	}
	return q, true
}
