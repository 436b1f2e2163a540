package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"uccdatahub/internal/store"
	"uccdatahub/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleSecuredParties(t *testing.T) {
	t.Run("should prepend the all-parties option", func(t *testing.T) {
		filings := &fakeFilingStore{
			securedParties: func(ctx context.Context, states []string) ([]string, error) {
				assert.Equal(t, []string{"nc", "sc"}, states)
				return []string{"First Citizens Bank", "Truist Bank"}, nil
			},
		}
		s := newTestService(t, testDeps{filings: filings})

		rr := s.serve(httptest.NewRequest(http.MethodGet, "/api/secured-parties?states=nc,sc", nil))

		assert.Equal(t, http.StatusOK, rr.Code)

		var options []partyOption
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&options))
		require.Len(t, options, 3)
		assert.Equal(t, types.AllPartiesSentinel, options[0].Value)
		assert.Equal(t, "First Citizens Bank", options[1].Value)
	})

	t.Run("should return only the sentinel when no states are given", func(t *testing.T) {
		s := newTestService(t, testDeps{})

		rr := s.serve(httptest.NewRequest(http.MethodGet, "/api/secured-parties", nil))

		assert.Equal(t, http.StatusOK, rr.Code)

		var options []partyOption
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&options))
		require.Len(t, options, 1)
		assert.Equal(t, types.AllPartiesSentinel, options[0].Value)
	})

	t.Run("should surface store failures", func(t *testing.T) {
		filings := &fakeFilingStore{
			securedParties: func(ctx context.Context, states []string) ([]string, error) {
				return nil, errors.New("connection refused")
			},
		}
		s := newTestService(t, testDeps{filings: filings})

		rr := s.serve(httptest.NewRequest(http.MethodGet, "/api/secured-parties?states=nc", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestHandleGenerateCSV(t *testing.T) {
	t.Run("should require at least one state", func(t *testing.T) {
		s := newTestService(t, testDeps{})

		rr := s.serve(httptest.NewRequest(http.MethodPost, "/api/generate-csv", strings.NewReader(`{"states":[]}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "At least one state")
	})

	t.Run("should reject an unknown data type", func(t *testing.T) {
		s := newTestService(t, testDeps{})

		body := `{"states":["nc"],"dataType":"premium"}`
		rr := s.serve(httptest.NewRequest(http.MethodPost, "/api/generate-csv", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("should reject malformed filing dates", func(t *testing.T) {
		s := newTestService(t, testDeps{})

		body := `{"states":["nc"],"filingDateStart":"01/15/2024"}`
		rr := s.serve(httptest.NewRequest(http.MethodPost, "/api/generate-csv", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "YYYY-MM-DD")
	})

	t.Run("should export matching rows across states", func(t *testing.T) {
		filings := &fakeFilingStore{
			search: func(ctx context.Context, state string, q store.SearchQuery) (*store.StateResult, error) {
				assert.Equal(t, types.DataTypeStandard, q.DataType)
				assert.Nil(t, q.Parties)
				return &store.StateResult{
					Columns: []string{"Filing Number", "Secured Party Name"},
					Rows:    [][]string{{"20240001", "First Citizens Bank"}},
				}, nil
			},
		}
		s := newTestService(t, testDeps{filings: filings})

		body := `{"states":["nc","sc"],"selectedParties":["all"]}`
		rr := s.serve(httptest.NewRequest(http.MethodPost, "/api/generate-csv", strings.NewReader(body)))

		assert.Equal(t, http.StatusOK, rr.Code)

		var result types.ExportResult
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
		assert.Equal(t, 2, result.RecordCount)
		require.Len(t, result.States, 2)
		assert.True(t, strings.HasPrefix(result.CSV, "State,Filing Number,Secured Party Name,DataType\n"))
		assert.Contains(t, result.CSV, "NC,20240001")
		assert.Contains(t, result.CSV, "SC,20240001")
	})

	t.Run("should report failed states but keep the rest", func(t *testing.T) {
		filings := &fakeFilingStore{
			search: func(ctx context.Context, state string, q store.SearchQuery) (*store.StateResult, error) {
				if state == "ga" {
					return nil, types.ErrStateTableMissing
				}
				return &store.StateResult{
					Columns: []string{"Filing Number"},
					Rows:    [][]string{{"20240001"}},
				}, nil
			},
		}
		s := newTestService(t, testDeps{filings: filings})

		body := `{"states":["ga","nc"]}`
		rr := s.serve(httptest.NewRequest(http.MethodPost, "/api/generate-csv", strings.NewReader(body)))

		assert.Equal(t, http.StatusOK, rr.Code)

		var result types.ExportResult
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
		assert.Equal(t, 1, result.RecordCount)
		require.Len(t, result.States, 2)
		assert.NotEmpty(t, result.States[0].Error)
		assert.Empty(t, result.States[1].Error)
	})

	t.Run("should fail a state that cannot honor a requested filter", func(t *testing.T) {
		filings := &fakeFilingStore{
			search: func(ctx context.Context, state string, q store.SearchQuery) (*store.StateResult, error) {
				return nil, types.ErrFilterColumnMissing
			},
		}
		s := newTestService(t, testDeps{filings: filings})

		body := `{"states":["nc"],"filingDateStart":"2024-01-01","filingDateEnd":"2024-12-31"}`
		rr := s.serve(httptest.NewRequest(http.MethodPost, "/api/generate-csv", strings.NewReader(body)))

		assert.Equal(t, http.StatusNotFound, rr.Code)

		var resp struct {
			States []types.StateStatus `json:"states"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		require.Len(t, resp.States, 1)
		assert.Equal(t, 0, resp.States[0].RecordCount)
		assert.NotEmpty(t, resp.States[0].Error)
	})

	t.Run("should return not found when nothing matched", func(t *testing.T) {
		filings := &fakeFilingStore{
			search: func(ctx context.Context, state string, q store.SearchQuery) (*store.StateResult, error) {
				return &store.StateResult{Columns: []string{"Filing Number"}}, nil
			},
		}
		s := newTestService(t, testDeps{filings: filings})

		body := `{"states":["nc"]}`
		rr := s.serve(httptest.NewRequest(http.MethodPost, "/api/generate-csv", strings.NewReader(body)))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "No data found")
	})
}

func TestExpandParties(t *testing.T) {
	t.Run("should drop the filter entirely when all is selected", func(t *testing.T) {
		assert.Nil(t, expandParties([]string{"all"}))
		assert.Nil(t, expandParties([]string{"First Citizens Bank", "ALL"}))
	})

	t.Run("should pass explicit selections through", func(t *testing.T) {
		parties := expandParties([]string{" First Citizens Bank ", "Truist Bank"})
		assert.Equal(t, []string{"First Citizens Bank", "Truist Bank"}, parties)
	})

	t.Run("should skip blank entries without widening the filter", func(t *testing.T) {
		parties := expandParties([]string{"First Citizens Bank", ""})
		assert.Equal(t, []string{"First Citizens Bank"}, parties)

		parties = expandParties([]string{" ", "Truist Bank"})
		assert.Equal(t, []string{"Truist Bank"}, parties)
	})

	t.Run("should keep an empty selection empty", func(t *testing.T) {
		assert.Empty(t, expandParties(nil))
		assert.Empty(t, expandParties([]string{""}))
	})
}
