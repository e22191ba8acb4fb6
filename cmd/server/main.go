// Command server exposes a two-level morphology engine as a JSON REST API.
//
// Endpoints:
//
//	GET /api/recognize?surface=<word>
//	GET /api/generate?lexical=<form>
//	GET /api/grammar
//	GET /metrics
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	twolevel "github.com/cours-de-latin/twolevel"
)

// ---- metrics ------------------------------------------------------------

var (
	searchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twolevel_searches_total",
			Help: "Total number of recognize/generate searches by outcome",
		},
		[]string{"op", "outcome"},
	)
	searchSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "twolevel_search_duration_seconds",
			Help: "Duration of recognize/generate searches",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(searchesTotal, searchSeconds)
}

func observe(op string, start time.Time, results int, err error) {
	searchSeconds.WithLabelValues(op).Observe(time.Since(start).Seconds())
	switch {
	case errors.Is(err, twolevel.ErrSearchBudget):
		searchesTotal.WithLabelValues(op, "budget").Inc()
	case err != nil:
		searchesTotal.WithLabelValues(op, "error").Inc()
	case results == 0:
		searchesTotal.WithLabelValues(op, "empty").Inc()
	default:
		searchesTotal.WithLabelValues(op, "ok").Inc()
	}
}

// ---- JSON response types ------------------------------------------------

type analysisJSON struct {
	Lexical    string `json:"lexical"`
	Annotation string `json:"annotation"`
}

type recognizeResponse struct {
	Surface  string         `json:"surface"`
	Analyses []analysisJSON `json:"analyses"`
}

type generateResponse struct {
	Lexical  string   `json:"lexical"`
	Surfaces []string `json:"surfaces"`
}

type grammarResponse struct {
	Name    string              `json:"name"`
	Rules   []string            `json:"rules"`
	Subsets map[string][]string `json:"subsets"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ---- helpers ------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func searchStatus(err error) (int, string) {
	switch {
	case errors.Is(err, twolevel.ErrSearchBudget):
		return http.StatusUnprocessableEntity, "search budget exceeded; retry with a simpler query"
	case err != nil:
		return http.StatusInternalServerError, err.Error()
	default:
		return http.StatusOK, ""
	}
}

// ---- handlers -----------------------------------------------------------

func handleRecognize(eng *twolevel.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		surface := r.URL.Query().Get("surface")
		if surface == "" {
			writeError(w, http.StatusBadRequest, "missing 'surface' query parameter")
			return
		}

		start := time.Now()
		analyses, err := eng.Recognize(r.Context(), twolevel.Symbols(surface))
		observe("recognize", start, len(analyses), err)
		if err != nil {
			status, msg := searchStatus(err)
			writeError(w, status, msg)
			return
		}

		out := make([]analysisJSON, 0, len(analyses))
		for _, a := range analyses {
			out = append(out, analysisJSON{Lexical: a.Lexical, Annotation: a.Annotation})
		}
		status := http.StatusOK
		if len(out) == 0 {
			status = http.StatusNotFound
		}
		writeJSON(w, status, recognizeResponse{Surface: surface, Analyses: out})
	}
}

func handleGenerate(eng *twolevel.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		lexical := r.URL.Query().Get("lexical")
		if lexical == "" {
			writeError(w, http.StatusBadRequest, "missing 'lexical' query parameter")
			return
		}

		start := time.Now()
		surfaces, err := eng.Generate(r.Context(), twolevel.Symbols(lexical))
		observe("generate", start, len(surfaces), err)
		if err != nil {
			status, msg := searchStatus(err)
			writeError(w, status, msg)
			return
		}

		status := http.StatusOK
		if len(surfaces) == 0 {
			status = http.StatusNotFound
		}
		if surfaces == nil {
			surfaces = []string{}
		}
		writeJSON(w, status, generateResponse{Lexical: lexical, Surfaces: surfaces})
	}
}

func handleGrammar(eng *twolevel.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		g := eng.Grammar()
		subsets := make(map[string][]string)
		for _, name := range g.Subsets().Names() {
			members, err := g.Subsets().Resolve(name)
			if err != nil {
				continue
			}
			out := make([]string, len(members))
			for i, m := range members {
				out[i] = string(m)
			}
			subsets[name] = out
		}
		writeJSON(w, http.StatusOK, grammarResponse{
			Name:    g.Name(),
			Rules:   g.RuleNames(),
			Subsets: subsets,
		})
	}
}

// ---- main ---------------------------------------------------------------

func main() {
	grammarPath := flag.String("grammar", "grammar.yaml", "path to the YAML grammar file")
	addr := flag.String("addr", ":8080", "listen address")
	budget := flag.Int("budget", twolevel.DefaultStepBudget, "search step budget per query")
	flag.Parse()

	log.Printf("loading grammar from %s …", *grammarPath)
	eng, err := twolevel.New(*grammarPath, twolevel.WithStepBudget(*budget))
	if err != nil {
		log.Fatalf("failed to load grammar: %v", err)
	}
	log.Printf("grammar %q loaded (%d rules)", eng.Grammar().Name(), len(eng.Grammar().RuleNames()))

	mux := http.NewServeMux()
	mux.HandleFunc("/api/recognize", handleRecognize(eng))
	mux.HandleFunc("/api/generate", handleGenerate(eng))
	mux.HandleFunc("/api/grammar", handleGrammar(eng))
	mux.Handle("/metrics", promhttp.Handler())

	handler := cors.Default().Handler(mux)

	log.Printf("listening on %s", *addr)
	if err := http.ListenAndServe(*addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
