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
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/clearpath-health/screening-cli/internal/intake"
	"github.com/clearpath-health/screening-cli/internal/model"
	"github.com/clearpath-health/screening-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start webhook server for report intake",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		panel, err := loadPanel()
		if err != nil {
			return err
		}
		pipeline := intake.New(st, panel, cfg.Match)

		limiter := rate.NewLimiter(rate.Limit(float64(cfg.Server.RatePerMinute)/60), cfg.Server.RatePerMinute)

		r := chi.NewRouter()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/webhook/intake", func(w http.ResponseWriter, req *http.Request) {
			if !limiter.Allow() {
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
				return
			}

			var body struct {
				Report      model.ExtractedReport `json:"report"`
				CandidateID string                `json:"candidate_id,omitempty"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}

			result, err := pipeline.Process(req.Context(), body.Report, body.CandidateID)
			if err != nil {
				zap.L().Error("webhook intake failed",
					zap.String("donor", body.Report.DonorName),
					zap.Error(err),
				)
				writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
				return
			}

			writeJSON(w, http.StatusOK, result)
		})

		r.Get("/reviews", func(w http.ResponseWriter, req *http.Request) {
			filter := store.ReviewFilter{
				Status: model.ReviewStatus(req.URL.Query().Get("status")),
			}
			reviews, err := st.ListReviews(req.Context(), filter)
			if err != nil {
				zap.L().Error("list reviews failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list reviews"})
				return
			}
			writeJSON(w, http.StatusOK, reviews)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
