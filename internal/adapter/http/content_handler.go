package http

import (
	"errors"
	"net/http"

	"github.com/carloscruz65/domrealce-site-sub000/internal/content"
	"github.com/carloscruz65/domrealce-site-sub000/internal/logging"
	"github.com/gin-gonic/gin"
)

// ContentHandler backs the visual editor: page documents and the media
// index.
type ContentHandler struct {
	pages *content.Pages
	media *content.Media
}

func NewContentHandler(pages *content.Pages, media *content.Media) *ContentHandler {
	return &ContentHandler{pages: pages, media: media}
}

func (h *ContentHandler) ListPages(c *gin.Context) {
	slugs, err := h.pages.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "erro interno"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "pages": slugs})
}

func (h *ContentHandler) GetPage(c *gin.Context) {
	doc, err := h.pages.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, content.ErrPageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "página não encontrada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "erro interno"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "page": doc})
}

// SavePage accepts the editor's whole document (blocks + styles) and
// persists it flattened. Concurrent saves are last-write-wins.
func (h *ContentHandler) SavePage(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "pedido inválido"})
		return
	}
	if err := h.pages.Save(c.Request.Context(), c.Param("slug"), raw); err != nil {
		if errors.Is(err, content.ErrNotObject) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "documento inválido"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "erro interno"})
		return
	}
	logging.From(c).Info("page saved", "slug", c.Param("slug"))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ContentHandler) GetMedia(c *gin.Context) {
	idx, err := h.media.Index(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "erro interno"})
		return
	}
	if idx == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "index": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "index": idx})
}

type reindexReq struct {
	Objects []content.ObjectInfo `json:"objects"`
}

// Reindex takes the current object-storage listing and rebuilds the media
// index only when the listing hash changed.
func (h *ContentHandler) Reindex(c *gin.Context) {
	var req reindexReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "pedido inválido"})
		return
	}

	idx, changed, err := h.media.Sync(c.Request.Context(), req.Objects)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "erro interno"})
		return
	}
	if changed {
		logging.From(c).Info("media index rebuilt", "entries", len(idx.Entries))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "changed": changed, "index": idx})
}
