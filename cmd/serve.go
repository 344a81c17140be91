package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/ingest"
	"github.com/sells-group/leadgen-cli/internal/leadstore"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/monitoring"
	"github.com/sells-group/leadgen-cli/internal/scrape"
	"github.com/sells-group/leadgen-cli/pkg/apify"
)

var servePort int

// serverEnv bundles the dependencies the HTTP handlers need.
type serverEnv struct {
	store    leadstore.Store
	scrapers map[model.LeadSource]scrape.Scraper
	coord    *ingest.Coordinator
	notifier *monitoring.Notifier
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for leads and on-demand scrapes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		apifyClient := apify.NewClient(cfg.Apify.Token, apify.WithBaseURL(cfg.Apify.BaseURL))
		env := &serverEnv{
			store: store,
			scrapers: map[model.LeadSource]scrape.Scraper{
				model.SourceInstagram: scrape.NewInstagram(apifyClient, cfg.Apify.InstagramActorID),
				model.SourceGoogle:    scrape.NewGoogle(apifyClient, cfg.Apify.GoogleActorID),
			},
			coord: ingest.New(store, ingest.Config{
				SnapshotCap: cfg.Ingest.SnapshotCap,
				MaxErrors:   cfg.Ingest.MaxErrors,
			}),
			notifier: monitoring.NewNotifier(monitoring.Config{
				WebhookURL:           cfg.Monitoring.WebhookURL,
				FailureRateThreshold: cfg.Monitoring.FailureRateThreshold,
			}),
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(env *serverEnv) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/leads", env.handleListLeads)
	r.Patch("/api/leads/{id}", env.handleUpdateLead)
	r.Post("/api/scrape/{source}", env.handleScrape)

	return r
}

func (env *serverEnv) handleListLeads(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &limit); err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
	}

	leads, err := env.store.QueryAll(r.Context(), limit)
	if err != nil {
		zap.L().Error("list leads failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "lead store unavailable")
		return
	}

	if status := r.URL.Query().Get("status"); status != "" {
		filtered := leads[:0]
		for _, l := range leads {
			if string(l.Status) == status {
				filtered = append(filtered, l)
			}
		}
		leads = filtered
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"leads": leads,
		"count": len(leads),
	})
}

func (env *serverEnv) handleUpdateLead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var upd leadstore.LeadUpdate
	if req.Status != "" {
		status := model.LeadStatus(req.Status)
		switch status {
		case model.StatusNew, model.StatusContacted, model.StatusReplied,
			model.StatusQualified, model.StatusHotLead, model.StatusClosed:
		default:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", req.Status))
			return
		}
		upd.Status = &status
		if status == model.StatusContacted {
			now := time.Now().UTC()
			upd.LastContactedAt = &now
		}
	}
	if req.Notes != "" {
		upd.Notes = &req.Notes
	}

	if err := env.store.Update(r.Context(), id, upd); err != nil {
		if leadstore.Kind(err) == leadstore.KindNotFound {
			writeError(w, http.StatusNotFound, "lead not found")
			return
		}
		zap.L().Error("update lead failed", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusBadGateway, "lead store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "updated"})
}

func (env *serverEnv) handleScrape(w http.ResponseWriter, r *http.Request) {
	source := model.LeadSource(chi.URLParam(r, "source"))
	scraper, ok := env.scrapers[source]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown source %q", source))
		return
	}

	var req struct {
		City       string   `json:"city"`
		Terms      []string `json:"terms"`
		MaxResults int      `json:"max_results"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.City == "" || len(req.Terms) == 0 {
		writeError(w, http.StatusBadRequest, "city and terms are required")
		return
	}

	// Scrapes run minutes-long; detach from the request context.
	go func() {
		ctx := context.Background()
		sums, err := runScrape(ctx, []scrape.Scraper{scraper}, env.coord, scrape.Query{
			City:       req.City,
			MaxResults: req.MaxResults,
		}, req.Terms)
		if err != nil {
			zap.L().Error("api scrape failed",
				zap.String("source", string(source)),
				zap.Error(err))
		}
		for _, sum := range sums {
			env.notifier.NotifyBatch(ctx, *sum)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
		"source": string(source),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
