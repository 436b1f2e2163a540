package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"uccdatahub/internal/export"
	"uccdatahub/internal/store"
	"uccdatahub/pkg/types"
)

type partyOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var allPartiesOption = partyOption{Value: types.AllPartiesSentinel, Label: "All Secured Parties"}

type securedPartiesQuery struct {
	States string `form:"states"`
}

func (s *Service) handleSecuredParties(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var q securedPartiesQuery
	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		s.logger.WithError(err).Info("malformed secured-parties query")
		s.respondJSON(w, http.StatusOK, []partyOption{allPartiesOption})
		return
	}

	states := splitCSV(q.States)
	if len(states) == 0 {
		s.respondJSON(w, http.StatusOK, []partyOption{allPartiesOption})
		return
	}

	parties, err := s.filings.SecuredParties(ctx, states)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch secured parties")
		s.respondError(w, http.StatusInternalServerError, "An error occurred while fetching secured parties")
		return
	}

	options := make([]partyOption, 0, len(parties)+1)
	options = append(options, allPartiesOption)
	for _, name := range parties {
		options = append(options, partyOption{Value: name, Label: name})
	}

	s.respondJSON(w, http.StatusOK, options)
}

func (s *Service) handleGenerateCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req types.ExportRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if len(req.States) == 0 {
		s.respondError(w, http.StatusBadRequest, "At least one state must be selected")
		return
	}

	if req.DataType == "" {
		req.DataType = types.DataTypeStandard
	}
	if req.DataType != types.DataTypeStandard && req.DataType != types.DataTypeComprehensive {
		s.respondError(w, http.StatusBadRequest, "Unknown data type")
		return
	}

	for _, date := range []string{req.FilingDateStart, req.FilingDateEnd} {
		if date == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", date); err != nil {
			s.respondError(w, http.StatusBadRequest, "Filing dates must be YYYY-MM-DD")
			return
		}
	}

	query := store.SearchQuery{
		DataType:        req.DataType,
		Parties:         expandParties(req.SelectedParties),
		UCCType:         req.UCCType,
		Role:            req.Role,
		FilingDateStart: req.FilingDateStart,
		FilingDateEnd:   req.FilingDateEnd,
	}

	builder := export.NewBuilder(req.DataType)

	// One state at a time, one connection's worth of load. A state that
	// fails is reported in the status list, the rest still export.
	for _, state := range req.States {
		result, err := s.filings.Search(ctx, state, query)
		if err != nil {
			s.logger.WithError(err).WithField("state", state).Warn("state skipped during export")
			builder.FailState(state, err)
			continue
		}
		builder.AddState(state, result.Columns, result.Rows)
	}

	result, err := builder.Result()
	if err != nil {
		if errors.Is(err, types.ErrNoData) {
			s.respondJSON(w, http.StatusNotFound, map[string]any{
				"error":  "No data found for the given criteria",
				"states": builder.Statuses(),
			})
			return
		}
		s.logger.WithError(err).Error("failed to serialize export")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

// expandParties strips the "all" sentinel: a nil result means no
// secured-party filter. Blank entries are skipped, never widened into
// the sentinel.
func expandParties(parties []string) []string {
	out := make([]string, 0, len(parties))
	for _, p := range parties {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.EqualFold(p, types.AllPartiesSentinel) {
			return nil
		}
		out = append(out, p)
	}
	return out
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
