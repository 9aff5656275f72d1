package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/iconidentify/bskye/internal/render"
)

var validate = validator.New()

// oembedQuery holds the discovery link parameters, already percent-decoded.
type oembedQuery struct {
	Author   string
	Link     string `validate:"required"`
	Title    string `validate:"required"`
	Provider string
}

// OEmbedHandler serves the oEmbed documents referenced by Discord previews.
type OEmbedHandler struct {
	site render.Site
}

// NewOEmbedHandler creates a new oEmbed handler.
func NewOEmbedHandler(site render.Site) *OEmbedHandler {
	return &OEmbedHandler{site: site}
}

// Get handles GET /oembed.
func (h *OEmbedHandler) Get(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := oembedQuery{
		Author:   params.Get("author"),
		Link:     params.Get("link"),
		Title:    params.Get("title"),
		Provider: params.Get("provider"),
	}
	if err := validate.Struct(q); err != nil {
		writeMessage(w, http.StatusBadRequest, "missing parameters")
		return
	}

	writeJSON(w, http.StatusOK, render.NewOEmbed(h.site, q.Author, q.Link, q.Title, q.Provider))
}
