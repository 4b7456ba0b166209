package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"stardom/internal/game"
	"stardom/internal/metrics"
	"stardom/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxImportBytes = 8 << 20

type Server struct {
	log  *slog.Logger
	game *game.Service
	mux  *chi.Mux
}

func New(logger *slog.Logger, gameSvc *game.Service) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		log:  logger,
		game: gameSvc,
		mux:  chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/features/access", s.handleFeatureAccess)

		r.Get("/games", s.handleListGames)
		r.Post("/games", s.handleNewGame)
		r.Post("/games/import", s.handleImport)

		r.Route("/games/{id}", func(r chi.Router) {
			r.Get("/", s.handleGame)
			r.Get("/export", s.handleExport)
			r.Post("/week", s.handleAdvanceWeek)

			r.Post("/songs", s.handleCreateSong)
			r.Post("/songs/{song_id}/release", s.handleReleaseSong)

			r.Post("/albums", s.handleCreateAlbum)
			r.Post("/albums/{album_id}/deluxe", s.handleCreateDeluxe)
			r.Post("/albums/{album_id}/remix", s.handleCreateRemix)
			r.Post("/albums/{album_id}/release", s.handleReleaseAlbum)

			r.Post("/features", s.handleRequestFeature)
			r.Post("/features/{rapper_id}/respond", s.handleRespondFeature)

			r.Post("/events/{event_id}/resolve", s.handleResolveEvent)
			r.Post("/controversies/{controversy_id}/respond", s.handleRespondControversy)

			r.Post("/hype", s.handleAnnounce)
			r.Post("/hype/{hype_id}/promote", s.handlePromote)

			r.Post("/concerts", s.handleScheduleConcert)
			r.Post("/tours", s.handleStartTour)
			r.Post("/social/{platform}/post", s.handlePostSocial)
			r.Post("/merch", s.handleStockMerch)
		})
	})
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if status >= http.StatusInternalServerError {
			s.log.Error("request failed", "method", r.Method, "route", route, "status", status, "request_id", middleware.GetReqID(r.Context()))
		}
		metrics.ObserveRequest(r.Method, route, status)
	})
}

func (s *Server) handleFeatureAccess(w http.ResponseWriter, r *http.Request) {
	feature := strings.TrimSpace(r.URL.Query().Get("feature"))
	sub := strings.TrimSpace(r.URL.Query().Get("subscription"))
	if feature == "" {
		writeError(w, http.StatusBadRequest, "feature is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"feature":      feature,
		"subscription": sub,
		"allowed":      game.CheckFeatureAccess(feature, sub),
	})
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	ids, err := s.game.ListGames(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": ids})
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var in struct {
		PlayerName       string `json:"player_name"`
		SubscriptionType string `json:"subscription_type"`
		Seed             int64  `json:"seed"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, st, err := s.game.NewGame(r.Context(), game.NewGameInput{
		PlayerName:       in.PlayerName,
		SubscriptionType: in.SubscriptionType,
		Seed:             in.Seed,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "state": st})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, st, err := s.game.LoadGame(r.Context(), strings.TrimSpace(r.URL.Query().Get("id")), data)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "state": st})
}

func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	st, err := s.game.Game(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.game.SaveGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="stardom-save.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleAdvanceWeek(w http.ResponseWriter, r *http.Request) {
	report, err := s.game.AdvanceWeek(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	metrics.ObserveWeek(report)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCreateSong(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title     string   `json:"title"`
		Tier      int      `json:"tier"`
		Featuring []string `json:"featuring"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	song, err := s.game.CreateSong(r.Context(), chi.URLParam(r, "id"), game.CreateSongInput{
		Title:     in.Title,
		Tier:      in.Tier,
		Featuring: in.Featuring,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, song)
}

func (s *Server) handleReleaseSong(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title     string   `json:"title"`
		Icon      string   `json:"icon"`
		Platforms []string `json:"platforms"`
	}
	if err := decodeOptionalJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	mult, err := s.game.ReleaseSong(r.Context(), chi.URLParam(r, "id"), game.ReleaseSongInput{
		SongID:    chi.URLParam(r, "song_id"),
		Title:     in.Title,
		Icon:      in.Icon,
		Platforms: in.Platforms,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hype_multiplier": mult})
}

func (s *Server) handleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title   string   `json:"title"`
		Type    string   `json:"type"`
		SongIDs []string `json:"song_ids"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	albumID, err := s.game.CreateAlbum(r.Context(), chi.URLParam(r, "id"), game.CreateAlbumInput{
		Title:   in.Title,
		Type:    game.AlbumType(in.Type),
		SongIDs: in.SongIDs,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": albumID})
}

func (s *Server) handleCreateDeluxe(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title        string   `json:"title"`
		ExtraSongIDs []string `json:"extra_song_ids"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	albumID, err := s.game.CreateDeluxeAlbum(r.Context(), chi.URLParam(r, "id"), game.CreateDeluxeInput{
		ParentAlbumID: chi.URLParam(r, "album_id"),
		Title:         in.Title,
		ExtraSongIDs:  in.ExtraSongIDs,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": albumID})
}

func (s *Server) handleCreateRemix(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title string `json:"title"`
	}
	if err := decodeOptionalJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	albumID, err := s.game.CreateRemixAlbum(r.Context(), chi.URLParam(r, "id"), game.CreateRemixInput{
		ParentAlbumID: chi.URLParam(r, "album_id"),
		Title:         in.Title,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": albumID})
}

func (s *Server) handleReleaseAlbum(w http.ResponseWriter, r *http.Request) {
	mult, err := s.game.ReleaseAlbum(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "album_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hype_multiplier": mult})
}

func (s *Server) handleRequestFeature(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RapperID string `json:"rapper_id"`
		Tier     int    `json:"tier"`
		Title    string `json:"title"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := s.game.RequestFeature(r.Context(), chi.URLParam(r, "id"), in.RapperID, in.Tier, in.Title)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRespondFeature(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Accept bool `json:"accept"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ev, err := s.game.RespondToFeatureRequest(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "rapper_id"), in.Accept)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleResolveEvent(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Option int `json:"option"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ev, err := s.game.ResolveRandomEvent(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "event_id"), in.Option)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleRespondControversy(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Response int `json:"response"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ev, err := s.game.RespondToControversy(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "controversy_id"), in.Response)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleAnnounce(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Type       string `json:"type"`
		Title      string `json:"title"`
		RelatedID  string `json:"related_id"`
		TargetWeek int    `json:"target_week"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ev, err := s.game.AnnounceRelease(r.Context(), chi.URLParam(r, "id"), game.AnnounceInput{
		Type:       game.HypeType(in.Type),
		Title:      in.Title,
		RelatedID:  in.RelatedID,
		TargetWeek: in.TargetWeek,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func (s *Server) handlePromote(w http.ResponseWriter, r *http.Request) {
	var in struct {
		SpendCents int64 `json:"spend_cents"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ev, err := s.game.PromoteHype(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "hype_id"), in.SpendCents)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleScheduleConcert(w http.ResponseWriter, r *http.Request) {
	var in struct {
		VenueName        string   `json:"venue_name"`
		Capacity         int64    `json:"capacity"`
		TicketPriceCents int64    `json:"ticket_price_cents"`
		Week             int      `json:"week"`
		Setlist          []string `json:"setlist"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := s.game.ScheduleConcert(r.Context(), chi.URLParam(r, "id"), game.ScheduleConcertInput{
		VenueName:        in.VenueName,
		Capacity:         in.Capacity,
		TicketPriceCents: in.TicketPriceCents,
		Week:             in.Week,
		Setlist:          in.Setlist,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleStartTour(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name        string          `json:"name"`
		Stops       []game.TourStop `json:"stops"`
		Setlist     []string        `json:"setlist"`
		HypeEventID string          `json:"hype_event_id"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := s.game.StartTour(r.Context(), chi.URLParam(r, "id"), game.StartTourInput{
		Name:        in.Name,
		Stops:       in.Stops,
		Setlist:     in.Setlist,
		HypeEventID: in.HypeEventID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handlePostSocial(w http.ResponseWriter, r *http.Request) {
	p, err := s.game.PostSocial(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "platform"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleStockMerch(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name       string `json:"name"`
		PriceCents int64  `json:"price_cents"`
		CostCents  int64  `json:"cost_cents"`
		Quantity   int64  `json:"quantity"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := s.game.StockMerch(r.Context(), chi.URLParam(r, "id"), game.StockMerchInput{
		Name:       in.Name,
		PriceCents: in.PriceCents,
		CostCents:  in.CostCents,
		Quantity:   in.Quantity,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrGameNotFound),
		errors.Is(err, game.ErrSongNotFound),
		errors.Is(err, game.ErrAlbumNotFound),
		errors.Is(err, game.ErrRapperNotFound),
		errors.Is(err, game.ErrRequestNotFound),
		errors.Is(err, game.ErrEventNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrFeatureLocked):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, game.ErrAlreadyReleased):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrInsufficientFunds), errors.Is(err, game.ErrInsufficientEnergy):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, game.ErrInvalidInput), errors.Is(err, game.ErrInvalidTier):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrCorrupt):
		writeError(w, http.StatusInternalServerError, "save is corrupt")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

// decodeOptionalJSON accepts an empty body as "all defaults".
func decodeOptionalJSON(r *http.Request, out any) error {
	if err := decodeJSON(r, out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
