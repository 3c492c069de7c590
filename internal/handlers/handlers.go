package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	json "github.com/goccy/go-json"

	"photo-slideshow/internal/geo"
	"photo-slideshow/internal/logging"
	"photo-slideshow/internal/session"
	"photo-slideshow/internal/slideshow"
	"photo-slideshow/internal/startup"
	"photo-slideshow/internal/store"
)

const sessionCookie = "slideshow_session"

// Handlers holds the HTTP handlers and their collaborators.
type Handlers struct {
	config   func() *startup.Config
	store    *store.Store
	sessions *session.Store
	orch     *slideshow.Orchestrator
	trigger  slideshow.Trigger
}

// New creates the handler set.
func New(config func() *startup.Config, st *store.Store, sessions *session.Store, orch *slideshow.Orchestrator, trigger slideshow.Trigger) *Handlers {
	return &Handlers{
		config:   config,
		store:    st,
		sessions: sessions,
		orch:     orch,
		trigger:  trigger,
	}
}

// nextPhotoResponse is the collaborator-facing selection result.
type nextPhotoResponse struct {
	PhotoPath    string            `json:"photoPath"`
	DisplayYear  string            `json:"displayYear"`
	DisplayMonth string            `json:"displayMonth"`
	DisplayLabel string            `json:"displayLabel"`
	Geo          slideshow.Geodata `json:"geo"`
}

// NextPhoto selects the next photo for the caller's browsing session.
// Exhaustion is a user-visible message, not a server failure.
func (h *Handlers) NextPhoto(w http.ResponseWriter, r *http.Request) {
	id, sess := h.loadSession(r)

	photo, err := h.orch.SelectNext(&sess)
	if errors.Is(err, slideshow.ErrNoPhotos) {
		h.saveSession(w, r, id, &sess)
		writeJSONError(w, http.StatusNotFound, "No photos available. Check that playlists are configured and their folders contain photos.")
		return
	}
	if err != nil {
		logging.Error("Selecting next photo: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "selection failed")
		return
	}

	h.saveSession(w, r, id, &sess)
	writeJSON(w, http.StatusOK, nextPhotoResponse{
		PhotoPath:    photo.Path,
		DisplayYear:  photo.Year,
		DisplayMonth: photo.Month,
		DisplayLabel: photo.Label,
		Geo:          photo.Geo,
	})
}

// Image streams the session's current photo. An optional max query
// parameter bounds the longer image dimension in pixels.
func (h *Handlers) Image(w http.ResponseWriter, r *http.Request) {
	_, sess := h.loadSession(r)
	if sess.CurrentPhoto == "" {
		writeJSONError(w, http.StatusNotFound, "no photo selected for this session")
		return
	}
	if !h.underPlaylistRoot(sess.CurrentPhoto) {
		logging.Warn("Refusing to serve %s: outside all playlist roots", sess.CurrentPhoto)
		writeJSONError(w, http.StatusForbidden, "photo path not allowed")
		return
	}

	maxDim := 0
	if raw := r.URL.Query().Get("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSONError(w, http.StatusBadRequest, "max must be a positive integer")
			return
		}
		maxDim = n
	}

	if maxDim == 0 {
		http.ServeFile(w, r, sess.CurrentPhoto)
		return
	}

	img, err := imaging.Open(sess.CurrentPhoto, imaging.AutoOrientation(true))
	if err != nil {
		logging.Error("Opening %s: %v", sess.CurrentPhoto, err)
		writeJSONError(w, http.StatusNotFound, "photo could not be read")
		return
	}
	img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)

	w.Header().Set("Content-Type", "image/jpeg")
	if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		logging.Error("Encoding %s: %v", sess.CurrentPhoto, err)
	}
}

// GeoStatus reports aggregate enrichment progress across every folder's
// picture index.
func (h *Handlers) GeoStatus(w http.ResponseWriter, r *http.Request) {
	files, err := h.store.PictureIndexFiles()
	if err != nil {
		logging.Error("Listing picture indexes: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "could not read index store")
		return
	}

	var total geo.Status
	for _, file := range files {
		total.Merge(geo.StatusOf(h.store.LoadPictureIndexFile(file)))
	}
	writeJSON(w, http.StatusOK, total)
}

// TriggerEnrichment starts a background enrichment pass unless one is
// already running.
func (h *Handlers) TriggerEnrichment(w http.ResponseWriter, r *http.Request) {
	triggered := h.trigger.MaybeStart("api")
	writeJSON(w, http.StatusOK, map[string]bool{"triggered": triggered})
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// loadSession reads the caller's session from the cookie-named store
// entry. A missing or unreadable session starts fresh.
func (h *Handlers) loadSession(r *http.Request) (string, slideshow.Session) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return session.NewID(), slideshow.Session{}
	}

	var sess slideshow.Session
	data, ok, err := h.sessions.Get(r.Context(), cookie.Value)
	if err != nil {
		logging.Warn("Loading session %s: %v", cookie.Value, err)
	}
	if ok {
		if err := json.Unmarshal(data, &sess); err != nil {
			logging.Warn("Corrupt session %s, starting fresh: %v", cookie.Value, err)
			sess = slideshow.Session{}
		}
	}
	return cookie.Value, sess
}

// saveSession persists the mutated session and refreshes the cookie.
func (h *Handlers) saveSession(w http.ResponseWriter, r *http.Request, id string, sess *slideshow.Session) {
	data, err := json.Marshal(sess)
	if err != nil {
		logging.Error("Encoding session %s: %v", id, err)
		return
	}

	ttl := h.config().SessionTTL
	if err := h.sessions.Put(r.Context(), id, data, ttl); err != nil {
		logging.Error("Saving session %s: %v", id, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// underPlaylistRoot reports whether path resolves beneath one of the
// configured playlist roots. Guards the image endpoint against serving
// arbitrary files if a session payload is ever tampered with.
func (h *Handlers) underPlaylistRoot(path string) bool {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return false
	}
	if _, err := os.Stat(abs); err != nil {
		return false
	}

	for _, p := range h.config().Playlists {
		root, err := filepath.Abs(filepath.Clean(p.Path))
		if err != nil {
			continue
		}
		if abs == root || strings.HasPrefix(abs, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
