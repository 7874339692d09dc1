package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/CTAG07/trigram/pkg/corpus"
	"github.com/CTAG07/trigram/pkg/trigram"
)

const (
	// maxGenerateCount bounds how many names one request may ask for.
	maxGenerateCount = 100
	// maxBodyBytes bounds the size of posted name lists and JSON bodies.
	maxBodyBytes = 1 << 20
)

// TrigramAPI holds the dependencies for the trigram model API handlers.
type TrigramAPI struct {
	svc    *ModelService
	store  *corpus.Store
	logger *slog.Logger
}

// NewTrigramAPI creates a new instance of the TrigramAPI.
func NewTrigramAPI(svc *ModelService, store *corpus.Store, logger *slog.Logger) *TrigramAPI {
	return &TrigramAPI{
		svc:    svc,
		store:  store,
		logger: logger,
	}
}

// RegisterRoutes sets up the routing for all /api/trigram endpoints.
func (a *TrigramAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", a.handleHealth)
	mux.HandleFunc("/api/trigram/generate", a.handleGenerate)
	mux.HandleFunc("/api/trigram/evaluate", a.handleEvaluate)
	mux.HandleFunc("/api/trigram/stats", a.handleStats)
	mux.HandleFunc("/api/trigram/retrain", a.handleRetrain)
	mux.HandleFunc("/api/trigram/corpora", a.handleListAndCreateCorpora)
	mux.HandleFunc("/api/trigram/corpora/", a.handleCorpusByName)
}

// GenerateResponse is the JSON response of the generate endpoint.
type GenerateResponse struct {
	Start string   `json:"start"`
	Seed  uint64   `json:"seed"`
	Names []string `json:"names"`
}

// EvaluateResponse is the JSON response of the evaluate endpoint.
type EvaluateResponse struct {
	Entries int     `json:"entries"`
	MeanNLL float64 `json:"mean_nll"`
}

// StatsResponse combines the live model's shape with the corpus store totals.
type StatsResponse struct {
	Model  trigram.ModelStats `json:"model"`
	Corpus *corpus.Stats      `json:"corpus"`
}

// ExportResponse is the JSON response of the corpus export action.
type ExportResponse struct {
	Path string `json:"path"`
}

type CreateCorpusRequest struct {
	Name string `json:"name"`
}

// statusForModelError maps the model error taxonomy onto HTTP status codes.
func statusForModelError(err error) int {
	switch {
	case errors.Is(err, trigram.ErrInvalidInput), errors.Is(err, trigram.ErrEmptyCorpus):
		return http.StatusBadRequest
	case errors.Is(err, trigram.ErrEncoding), errors.Is(err, trigram.ErrUnknownContext), errors.Is(err, trigram.ErrConfiguration):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (a *TrigramAPI) handleHealth(w http.ResponseWriter, r *http.Request) {
	if a.svc.Model() == nil {
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "training"})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseStart reads a single start symbol, lower-casing it the way the corpus
// loader lower-cases entries.
func parseStart(raw string) (rune, error) {
	if utf8.RuneCountInString(raw) != 1 {
		return 0, fmt.Errorf("%w: start must be exactly one character, got %q", trigram.ErrInvalidInput, raw)
	}
	r, _ := utf8.DecodeRuneInString(raw)
	return unicode.ToLower(r), nil
}

// handleGenerate generates one or more names from a start symbol.
func (a *TrigramAPI) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	model := a.svc.Model()
	if model == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Model is not trained yet")
		return
	}

	query := r.URL.Query()
	start, err := parseStart(query.Get("start"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	count := 1
	if raw := query.Get("count"); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil || count < 1 || count > maxGenerateCount {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("count must be between 1 and %d", maxGenerateCount))
			return
		}
	}

	seed := rand.Uint64()
	if raw := query.Get("seed"); raw != "" {
		seed, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "seed must be an unsigned integer")
			return
		}
	}

	src := rand.NewPCG(seed, seed)
	names := make([]string, 0, count)
	for i := 0; i < count; i++ {
		name, err := model.Generate(r.Context(), start, src, a.svc.GenerateOptions()...)
		if err != nil {
			if statusForModelError(err) == http.StatusInternalServerError {
				a.logger.Error("Failed to generate name", "start", string(start), "error", err)
			}
			respondWithError(w, statusForModelError(err), err.Error())
			return
		}
		names = append(names, name)
	}

	respondWithJSON(w, http.StatusOK, GenerateResponse{Start: string(start), Seed: seed, Names: names})
}

// statusForBodyError reports 413 for bodies cut off by maxBodyBytes and 400
// for anything else that could not be read.
func statusForBodyError(err error) int {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// handleEvaluate scores the training corpus (GET) or a posted name list (POST).
func (a *TrigramAPI) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	model, entries := a.svc.Snapshot()
	if model == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Model is not trained yet")
		return
	}

	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var err error
		entries, err = corpus.ReadLines(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			respondWithError(w, statusForBodyError(err), fmt.Sprintf("Invalid request body: %v", err))
			return
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	nll, err := model.MeanNLL(entries)
	if err != nil {
		respondWithError(w, statusForModelError(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, EvaluateResponse{Entries: len(entries), MeanNLL: nll})
}

// handleStats returns model and corpus statistics.
func (a *TrigramAPI) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	model := a.svc.Model()
	if model == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Model is not trained yet")
		return
	}
	corpusStats, err := a.store.GetStats(r.Context())
	if err != nil {
		a.logger.Error("Failed to get corpus stats", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve stats: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, StatsResponse{Model: model.Stats(), Corpus: corpusStats})
}

// handleRetrain rebuilds the live model from the configured corpus.
func (a *TrigramAPI) handleRetrain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	model, err := a.svc.Retrain(r.Context())
	if err != nil {
		a.logger.Error("Failed to retrain model", "error", err)
		respondWithError(w, statusForModelError(err), fmt.Sprintf("Retraining failed: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, model.Stats())
}

// handleListAndCreateCorpora handles GET for listing and POST for creating corpora.
func (a *TrigramAPI) handleListAndCreateCorpora(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		infos, err := a.store.GetCorpusInfos(r.Context())
		if err != nil {
			a.logger.Error("Failed to get corpus infos", "error", err)
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve corpora: %v", err))
			return
		}
		if infos == nil {
			infos = []corpus.Info{}
		}
		respondWithJSON(w, http.StatusOK, infos)

	case http.MethodPost:
		var req CreateCorpusRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			respondWithError(w, statusForBodyError(err), "Invalid JSON request body")
			return
		}
		if req.Name == "" {
			respondWithError(w, http.StatusBadRequest, "Corpus name is required")
			return
		}
		info, err := a.store.InsertCorpus(r.Context(), req.Name)
		if err != nil {
			a.logger.Error("Failed to insert new corpus", "name", req.Name, "error", err)
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to create corpus: %v", err))
			return
		}
		respondWithJSON(w, http.StatusCreated, info)

	default:
		w.Header().Set("Allow", "GET, POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleCorpusByName routes actions for a specific corpus, e.g., import, entries, export, delete.
func (a *TrigramAPI) handleCorpusByName(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/trigram/corpora/")
	parts := strings.Split(path, "/")
	name := parts[0]

	if name == "" {
		respondWithError(w, http.StatusBadRequest, "Corpus name not specified")
		return
	}

	info, err := a.store.GetCorpusInfo(r.Context(), name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "Corpus not found")
			return
		}
		a.logger.Error("Failed to get corpus info by name", "name", name, "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err))
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodDelete {
			w.Header().Set("Allow", "DELETE")
			respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if err = a.store.RemoveCorpus(r.Context(), info); err != nil {
			a.logger.Error("Failed to remove corpus", "name", name, "error", err)
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to remove corpus: %v", err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	switch parts[1] {
	case "import":
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		result, err := a.svc.ImportEntries(r.Context(), info, http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			var maxErr *http.MaxBytesError
			switch {
			case errors.As(err, &maxErr):
				respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Import failed: %v", err))
			case errors.Is(err, corpus.ErrReservedSymbol):
				respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Import failed: %v", err))
			default:
				a.logger.Error("Failed to import corpus entries", "name", name, "error", err)
				respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Import failed: %v", err))
			}
			return
		}
		respondWithJSON(w, http.StatusAccepted, result)

	case "entries":
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		entries, err := a.store.Entries(r.Context(), info)
		if err != nil {
			a.logger.Error("Failed to read corpus entries", "name", name, "error", err)
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to read entries: %v", err))
			return
		}
		if entries == nil {
			entries = []string{}
		}
		respondWithJSON(w, http.StatusOK, entries)

	case "export":
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		path, err := a.svc.ExportCorpus(r.Context(), info)
		if err != nil {
			a.logger.Error("Failed to export corpus", "name", name, "error", err)
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Export failed: %v", err))
			return
		}
		respondWithJSON(w, http.StatusOK, ExportResponse{Path: path})

	default:
		respondWithError(w, http.StatusNotFound, "Action not found")
	}
}
