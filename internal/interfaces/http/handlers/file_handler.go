package handlers

import (
	"errors"
	"net/http"
	"os"
	"path"
	"time"

	domainerrors "digimarket.backend/internal/domain/errors"
	"digimarket.backend/internal/infrastructure/storage"
	"digimarket.backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

// FileHandler serves stored files behind signed, expiring tokens
type FileHandler struct {
	storage *storage.LocalStorage
	now     func() time.Time
}

func NewFileHandler(s *storage.LocalStorage) *FileHandler {
	return &FileHandler{storage: s, now: time.Now}
}

// Serve streams the file a signed token points to
// GET /files/:token
func (h *FileHandler) Serve(c *gin.Context) {
	ref, err := h.storage.Verify(c.Param("token"), h.now())
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			response.Error(c, domainerrors.Wrap(domainerrors.ErrLinkExpired, "Download-Link abgelaufen"))
			return
		}
		response.Error(c, domainerrors.Forbidden("Ungültiger Download-Link"))
		return
	}

	f, err := h.storage.Open(c.Request.Context(), ref)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			response.Error(c, domainerrors.NotFound("Datei nicht gefunden"))
			return
		}
		response.Error(c, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Cache-Control", "private, no-store")
	c.Header("Content-Disposition", `attachment; filename="`+downloadName(ref)+`"`)
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}

// downloadName strips the uuid prefix added when the file was stored.
func downloadName(ref string) string {
	name := path.Base(ref)
	if len(name) > 37 && name[36] == '-' {
		return name[37:]
	}
	return name
}
