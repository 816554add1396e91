package server

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/rickgao/onthisday/internal/model"
	"github.com/rickgao/onthisday/internal/timeline"
	"github.com/rickgao/onthisday/internal/version"
)

// maxRandomDays caps the count parameter of the random route.
const maxRandomDays = 31

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":  "ok",
		"version": version.Version,
	}
	if c, ok := s.q.(interface{ CacheLen() (int, int) }); ok {
		days, years := c.CacheLen()
		resp["cached_days"] = days
		resp["cached_years"] = years
	}
	writeJSON(w, http.StatusOK, resp)
}

// monthDay reads the month and day path variables. Range checks are left
// to the aggregator.
func monthDay(r *http.Request) (int, int, error) {
	vars := mux.Vars(r)
	month, err := strconv.Atoi(vars["month"])
	if err != nil {
		return 0, 0, badRequest("invalid month %q", vars["month"])
	}
	day, err := strconv.Atoi(vars["day"])
	if err != nil {
		return 0, 0, badRequest("invalid day %q", vars["day"])
	}
	return month, day, nil
}

func pathDate(r *http.Request) (model.Date, error) {
	raw := mux.Vars(r)["date"]
	d, err := model.ParseDate(raw)
	if err != nil {
		return model.Date{}, badRequest("invalid date %q, want YYYY-MM-DD", raw)
	}
	return d, nil
}

// handleDay serves every recorded year of a month/day.
func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	params, err := s.parseList(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	month, day, err := monthDay(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	events, err := s.q.Day(r.Context(), month, day)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, params.render(events))
}

// handleDayGroups serves a month/day split into events, births and deaths.
func (s *Server) handleDayGroups(w http.ResponseWriter, r *http.Request) {
	month, day, err := monthDay(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	events, err := s.q.Day(r.Context(), month, day)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, timeline.Group(events))
}

// handleDate serves the entries of one exact date.
func (s *Server) handleDate(w http.ResponseWriter, r *http.Request) {
	params, err := s.parseList(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := pathDate(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	events, err := s.q.Year(r.Context(), d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, params.render(events))
}

// handleRange serves the date and the following two days. Days that fail
// are listed in failures; the request itself still succeeds.
func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	params, err := s.parseList(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := pathDate(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res := s.q.Range(r.Context(), d)
	resp := params.render(res.Events)
	resp.Failures = failures(res.Failures)
	writeJSON(w, http.StatusOK, resp)
}

// handleSince serves today's month/day restricted to one year.
func (s *Server) handleSince(w http.ResponseWriter, r *http.Request) {
	params, err := s.parseList(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	raw := mux.Vars(r)["year"]
	year, err := strconv.Atoi(raw)
	if err != nil {
		s.writeError(w, r, badRequest("invalid year %q", raw))
		return
	}

	// Built directly so Feb 29 is kept for non-leap years.
	today := model.DateOf(s.now())
	d := model.Date{Year: year, Month: today.Month, Day: today.Day}

	events, err := s.q.Year(r.Context(), d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, params.render(events))
}

// handleRandom serves a shuffled mix of random days.
func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	params, err := s.parseList(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	count := 0
	if v := r.URL.Query().Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxRandomDays {
			s.writeError(w, r, badRequest("count must be between 1 and %d", maxRandomDays))
			return
		}
		count = n
	}

	res := s.q.Random(r.Context(), count)
	resp := params.render(res.Events)
	resp.Dates = res.Dates
	resp.Failures = failures(res.Failures)
	writeJSON(w, http.StatusOK, resp)
}
