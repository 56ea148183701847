package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/MrSnakeDoc/savelater/internal/domain"
	"github.com/MrSnakeDoc/savelater/internal/httpserver/deps"
	"github.com/MrSnakeDoc/savelater/internal/hyperlinkdb"
	"github.com/MrSnakeDoc/savelater/internal/logger"
)

// hyperlinkRequest is the body of PUT /api/hyperlinks/{id}.
type hyperlinkRequest struct {
	ID        string    `json:"id" validate:"required,max=64"`
	URL       string    `json:"url" validate:"required,url,max=4096"`
	Title     string    `json:"title" validate:"max=1024"`
	Visited   bool      `json:"visited"`
	CreatedOn time.Time `json:"createdOn"`
	UpdatedOn time.Time `json:"updatedOn"`
	Owner     string    `json:"owner" validate:"required,max=256"`
}

func (req hyperlinkRequest) toHyperlink() domain.Hyperlink {
	return domain.Hyperlink{
		ID:        req.ID,
		URL:       strings.TrimSpace(req.URL),
		Title:     req.Title,
		Visited:   req.Visited,
		CreatedOn: req.CreatedOn,
		UpdatedOn: req.UpdatedOn,
		Owner:     req.Owner,
	}
}

// hyperlinkResponse is the wire form of a stored hyperlink.
type hyperlinkResponse struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title,omitempty"`
	Visited   bool      `json:"visited"`
	CreatedOn time.Time `json:"createdOn"`
	UpdatedOn time.Time `json:"updatedOn"`
	Owner     string    `json:"owner"`
}

func toHyperlinkResponse(h domain.Hyperlink) hyperlinkResponse {
	return hyperlinkResponse{
		ID:        h.ID,
		URL:       h.URL,
		Title:     h.Title,
		Visited:   h.Visited,
		CreatedOn: h.CreatedOn,
		UpdatedOn: h.UpdatedOn,
		Owner:     h.Owner,
	}
}

// ListHyperlinks serves GET /api/hyperlinks?owner=<owner>.
func ListHyperlinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := strings.TrimSpace(r.URL.Query().Get("owner"))
		if owner == "" {
			writeError(w, r, badRequest("The owner query parameter is required."))
			return
		}

		list, err := d.Store.List(r.Context(), owner)
		if err != nil {
			logFailure(d, r, "list hyperlinks failed", err)
			writeError(w, r, serverErrorResponse)
			return
		}

		out := make([]hyperlinkResponse, 0, len(list))
		for _, h := range list {
			out = append(out, toHyperlinkResponse(h))
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, out)
	}
}

// PutHyperlink serves PUT /api/hyperlinks/{id} and answers with the canonical copy.
func PutHyperlink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req hyperlinkRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			if errors.Is(err, io.EOF) {
				writeError(w, r, emptyRequestBodyResponse)
				return
			}
			writeError(w, r, invalidRequestBodyResponse)
			return
		}

		if err := d.Validate.Struct(req); err != nil {
			writeError(w, r, validationErrorResponse(err))
			return
		}

		if id := chi.URLParam(r, "id"); id != req.ID {
			writeError(w, r, badRequest("The body id does not match the path id."))
			return
		}

		h := req.toHyperlink()
		if err := domain.ValidateURL(h.URL); err != nil {
			writeError(w, r, badRequest(err.Error()))
			return
		}

		saved, err := d.Store.Upsert(r.Context(), hyperlinkdb.Canonical(h, d.TimeNow()))
		if err != nil {
			logFailure(d, r, "upsert hyperlink failed", err)
			writeError(w, r, serverErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, toHyperlinkResponse(saved))
	}
}

// DeleteHyperlink serves DELETE /api/hyperlinks/{id}. Deleting twice is fine.
func DeleteHyperlink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := d.Store.Delete(r.Context(), id); err != nil {
			logFailure(d, r, "delete hyperlink failed", err)
			writeError(w, r, serverErrorResponse)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func logFailure(d deps.Deps, r *http.Request, msg string, err error) {
	d.Logger.Error(msg,
		logger.String("path", r.URL.Path),
		logger.String("request_id", middleware.GetReqID(r.Context())),
		logger.Error(err))
}
