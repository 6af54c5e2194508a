package httpapi

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"concertlog/internal/concert"
	"concertlog/internal/pipeline"
)

// concertRow is a record plus the labels the table renders in its date column.
type concertRow struct {
	concert.Record
	Label concert.DateLabel `json:"label"`
}

type concertListResponse struct {
	Query    pipeline.Query  `json:"query"`
	Concerts []concertRow    `json:"concerts"`
	Matched  int             `json:"matched"`
	Total    int             `json:"total"`
	Facets   pipeline.Facets `json:"facets"`
}

type artistConcertRow struct {
	concert.Record
	LongDate string `json:"longDate"`
}

// concertRequest is the body of every concert write. AutoFormat defaults to
// true when omitted.
type concertRequest struct {
	concert.Draft
	AutoFormat *bool `json:"autoFormat,omitempty"`
}

func (req concertRequest) options() concert.WriteOptions {
	opts := concert.DefaultWriteOptions
	if req.AutoFormat != nil {
		opts.AutoFormat = *req.AutoFormat
	}
	return opts
}

func queryFromRequest(r *http.Request) pipeline.Query {
	v := r.URL.Query()
	q := pipeline.DefaultQuery
	q.Search = v.Get("q")
	q.Year = v.Get("year")
	q.EventType = v.Get("type")
	q.Price = v.Get("price")
	q.Artist = v.Get("artist")
	if sort := v.Get("sort"); sort != "" {
		q.Sort = pipeline.SortField(sort)
	}
	if order := v.Get("order"); order != "" {
		q.Order = pipeline.SortOrder(order)
	}
	return q
}

func (s *Server) handleListConcerts(w http.ResponseWriter, r *http.Request) {
	view, err := s.concerts.View(r.Context(), queryFromRequest(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	rows := make([]concertRow, 0, len(view.Concerts))
	for _, c := range view.Concerts {
		rows = append(rows, concertRow{Record: c, Label: concert.LabelDate(c.Date)})
	}

	writeJSON(w, http.StatusOK, concertListResponse{
		Query:    view.Query,
		Concerts: rows,
		Matched:  view.Matched,
		Total:    view.Total,
		Facets:   view.Facets,
	})
}

func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	facets, err := s.concerts.Facets(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, facets)
}

func (s *Server) handleGetConcert(w http.ResponseWriter, r *http.Request) {
	c, err := s.concerts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCreateConcert(w http.ResponseWriter, r *http.Request) {
	var req concertRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := s.concerts.Create(r.Context(), req.Draft, req.options())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleReplaceConcert treats absent fields as empty, so the record is
// validated as a whole.
func (s *Server) handleReplaceConcert(w http.ResponseWriter, r *http.Request) {
	var req concertRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	d := req.Draft
	empty, zero, event := "", 0.0, concert.DefaultEvent
	if d.Band == nil {
		d.Band = &empty
	}
	if d.Date == nil {
		d.Date = &empty
	}
	if d.City == nil {
		d.City = &empty
	}
	if d.Event == nil {
		d.Event = &event
	}
	if d.Cost == nil {
		d.Cost = &zero
	}

	updated, err := s.concerts.Update(r.Context(), chi.URLParam(r, "id"), d, req.options())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handlePatchConcert(w http.ResponseWriter, r *http.Request) {
	var req concertRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := s.concerts.Update(r.Context(), chi.URLParam(r, "id"), req.Draft, req.options())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteConcert(w http.ResponseWriter, r *http.Request) {
	if err := s.concerts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	top := 0
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid top parameter"})
			return
		}
		top = n
	}

	stats, err := s.concerts.Stats(r.Context(), top)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats.Rounded())
}

func (s *Server) handleSuggestArtists(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit parameter"})
			return
		}
		limit = n
	}

	names, err := s.concerts.SuggestArtists(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Artists []string `json:"artists"`
	}{Artists: names})
}

func (s *Server) handleArtistConcerts(w http.ResponseWriter, r *http.Request) {
	// chi matches on the escaped path whenever one is present.
	artist := chi.URLParam(r, "name")
	if r.URL.RawPath != "" {
		decoded, err := url.PathUnescape(artist)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid artist name"})
			return
		}
		artist = decoded
	}

	records, err := s.concerts.ArtistConcerts(r.Context(), artist)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	rows := make([]artistConcertRow, 0, len(records))
	for _, c := range records {
		rows = append(rows, artistConcertRow{Record: c, LongDate: concert.LongDate(c.Date)})
	}
	writeJSON(w, http.StatusOK, struct {
		Artist   string             `json:"artist"`
		Concerts []artistConcertRow `json:"concerts"`
	}{Artist: artist, Concerts: rows})
}
