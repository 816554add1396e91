package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rickgao/onthisday/internal/history"
	"github.com/rickgao/onthisday/internal/model"
	"github.com/rickgao/onthisday/internal/timeline"
)

// errBadRequest marks parameter errors reported as 400.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// listParams are the query parameters shared by list routes.
type listParams struct {
	Offset   int
	Limit    int
	Layout   timeline.Options
	Category model.Category
}

// parseList reads offset, limit, pattern, start, custom and category.
// Limits above MaxPageSize are clamped.
func (s *Server) parseList(q url.Values) (listParams, error) {
	p := listParams{Limit: s.cfg.PageSize}

	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, badRequest("invalid offset %q", v)
		}
		p.Offset = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, badRequest("invalid limit %q", v)
		}
		p.Limit = min(n, s.cfg.MaxPageSize)
	}

	pattern, err := model.ParsePattern(q.Get("pattern"))
	if err != nil {
		return p, badRequest("%v", err)
	}
	p.Layout.Pattern = pattern

	if v := q.Get("start"); v != "" {
		side, err := model.ParseSide(v)
		if err != nil {
			return p, badRequest("%v", err)
		}
		p.Layout.Start = side
	}

	custom, err := timeline.ParseCustom(q.Get("custom"))
	if err != nil {
		return p, badRequest("%v", err)
	}
	p.Layout.Custom = custom
	if len(custom) > 0 && q.Get("pattern") == "" {
		p.Layout.Pattern = model.PatternCustom
	}

	if v := q.Get("category"); v != "" {
		c, err := model.ParseCategory(v)
		if err != nil {
			return p, badRequest("%v", err)
		}
		p.Category = c
	}
	return p, nil
}

// ListResponse is the body of every list route.
type ListResponse struct {
	Events   []timeline.Entry  `json:"events"`
	Total    int               `json:"total"`
	Offset   int               `json:"offset"`
	Limit    int               `json:"limit"`
	HasMore  bool              `json:"has_more"`
	Dates    []model.Date      `json:"dates,omitempty"`
	Failures []FailureResponse `json:"failures,omitempty"`
}

// FailureResponse describes a day left out of a multi-day result.
type FailureResponse struct {
	Date  model.Date `json:"date"`
	Error string     `json:"error"`
}

// render filters, lays out and pages events. Sides are assigned over the
// whole filtered sequence so an entry keeps its side across pages.
func (p listParams) render(events []model.TimelineEvent) ListResponse {
	filtered := timeline.FilterCategory(events, p.Category)
	entries := timeline.Layout(filtered, p.Layout)
	page, more := timeline.Page(entries, p.Offset, p.Limit)
	if page == nil {
		page = []timeline.Entry{}
	}
	return ListResponse{
		Events:  page,
		Total:   len(filtered),
		Offset:  p.Offset,
		Limit:   p.Limit,
		HasMore: more,
	}
}

func failures(fs []history.DayFailure) []FailureResponse {
	out := make([]FailureResponse, 0, len(fs))
	for _, f := range fs {
		out = append(out, FailureResponse{Date: f.Date, Error: f.Err.Error()})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status and writes {"error": "..."}.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Warn("request failed",
			"path", r.URL.Path,
			"status", status,
			"error", err,
			"request_id", RequestID(r.Context()),
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func errorStatus(err error) int {
	var fetchErr *history.FetchError
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, history.ErrInvalidDate):
		return http.StatusBadRequest
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
