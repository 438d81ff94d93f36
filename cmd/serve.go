package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jsphweid/polyindex/constants"
	"github.com/jsphweid/polyindex/indexer"
	"github.com/jsphweid/polyindex/metrics"
	"github.com/jsphweid/polyindex/model"
	"github.com/jsphweid/polyindex/piece"
	"github.com/jsphweid/polyindex/result"
	"github.com/jsphweid/polyindex/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

// resultsDir holds tables produced through the API
var resultsDir string

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the analysis API",
	Long: `Serves POST /analyze, POST /frequency, GET /results/{id} and
GET /metrics on LISTEN_ADDR.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		LoadServeFiles()
		addr := constants.GetListenAddr()
		logger.Info("serving", "addr", addr, "results", resultsDir)
		return http.ListenAndServe(addr, NewRouter())
	},
}

// LoadServeFiles prepares the directory API results are stored in.
func LoadServeFiles() {
	resultsDir = constants.GetIndexDir()
	if err := os.MkdirAll(resultsDir, 0777); err != nil {
		panic("Could not create results dir: " + err.Error())
	}
}

func NewRouter() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.Use(countRequests)
	router.HandleFunc("/analyze", HandleAnalyze).Methods("POST")
	router.HandleFunc("/frequency", HandleFrequency).Methods("POST")
	router.HandleFunc("/results/{id}", HandleResult).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	return cors.Default().Handler(router)
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		metrics.Requests.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, model.ErrorResponse{Error: err.Error()})
}

// errorCode maps analysis errors caused by the request to 400.
func errorCode(err error) int {
	var te *indexer.TypeError
	var se *indexer.SettingsError
	switch {
	case errors.Is(err, piece.ErrUnknownAnalyzer), errors.As(err, &te), errors.As(err, &se):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func toParts(bodies [][]model.EventBody) ([]model.Sequence, error) {
	parts := make([]model.Sequence, len(bodies))
	for i, events := range bodies {
		s := model.Sequence{Kind: model.KindPart, Label: strconv.Itoa(i)}
		for j, e := range events {
			if e.Offset < 0 {
				return nil, fmt.Errorf("part %d: offsets must not be negative, got %v", i, e.Offset)
			}
			if j > 0 && e.Offset <= events[j-1].Offset {
				return nil, fmt.Errorf("part %d: offsets must increase, got %v after %v", i, e.Offset, events[j-1].Offset)
			}
			s.Events = append(s.Events, model.Event{Offset: e.Offset, Value: e.Value})
		}
		parts[i] = s
	}
	return parts, nil
}

func toColumns(t *result.Table) []model.ColumnBody {
	res := make([]model.ColumnBody, t.Width())
	for i, l := range t.Labels {
		res[i] = model.ColumnBody{Indexer: l.Indexer, Part: l.Part, Events: []model.EventBody{}}
		for _, e := range t.Sequence(i).Events {
			res[i].Events = append(res[i].Events, model.EventBody{Offset: e.Offset, Value: e.Value})
		}
	}
	return res
}

func HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var input model.AnalyzeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("Could not unmarshal request body: %w", err))
		return
	}
	parts, err := toParts(input.Parts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	table, err := piece.FromParts("request", parts, piece.WithLogger(logger)).GetData(r.Context(), input.Steps...)
	if err != nil {
		writeError(w, errorCode(err), err)
		return
	}
	entry, err := store.Save(resultsDir, model.CatalogEntry{
		Chain: model.ChainName(input.Steps),
		Steps: model.StepNames(input.Steps),
	}, table)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, model.AnalyzeResponse{
		Id:      strings.TrimSuffix(entry.Filename, store.Ext),
		Columns: toColumns(table),
	})
}

func HandleFrequency(w http.ResponseWriter, r *http.Request) {
	var input model.FrequencyRequestBody
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("Could not unmarshal request body: %w", err))
		return
	}
	pieces := make([]*piece.Piece, len(input.Pieces))
	for i, bodies := range input.Pieces {
		parts, err := toParts(bodies)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("piece %d: %w", i, err))
			return
		}
		pieces[i] = piece.FromParts(strconv.Itoa(i), parts, piece.WithLogger(logger))
	}

	agg := piece.NewAggregated(pieces)
	agg.Log = logger
	f, err := agg.Frequency(r.Context(), input.Steps...)
	if err != nil {
		writeError(w, errorCode(err), err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func HandleResult(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("bad result id %q", id))
		return
	}
	table, entry, err := store.Load(resultsDir, id+store.Ext)
	if errors.Is(err, os.ErrNotExist) {
		writeError(w, http.StatusNotFound, fmt.Errorf("no result %v", id))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, model.AnalyzeResponse{
		Id:      strings.TrimSuffix(entry.Filename, store.Ext),
		Columns: toColumns(table),
	})
}
