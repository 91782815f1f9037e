package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/schem-safety/permit-cli/internal/model"
	"github.com/schem-safety/permit-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the triage HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initTriage(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(env *triageEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/v1/triage", handleTriage(env))
	r.Get("/v1/decisions", handleListDecisions(env))
	r.Get("/v1/decisions/{id}", handleGetDecision(env))

	return r
}

func handleTriage(env *triageEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input   string `json:"input"`
			Context string `json:"context"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Input == "" {
			writeError(w, http.StatusBadRequest, "input is required")
			return
		}

		final, err := env.Engine.Run(r.Context(), model.WorkflowState{
			UserInput:    req.Input,
			PriorContext: req.Context,
		})
		if err != nil {
			zap.L().Error("triage failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "triage failed")
			return
		}

		resp := triageResponse{NeedsMoreInfo: final.NeedsMoreInfo}
		if final.NeedsMoreInfo {
			resp.Question = final.ClarifyingQuestion
		} else {
			d := decisionFromState(final)
			if err := env.Store.CreateDecision(r.Context(), d); err != nil {
				zap.L().Error("persist decision failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "persist decision failed")
				return
			}
			publishDecision(r.Context(), env, d)
			resp.Decision = d
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func handleListDecisions(env *triageEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := store.DecisionFilter{Band: model.Band(q.Get("band"))}
		if v := q.Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Limit = n
			}
		}
		if v := q.Get("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Offset = n
			}
		}

		list, err := env.Store.ListDecisions(r.Context(), filter)
		if err != nil {
			zap.L().Error("list decisions failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list decisions failed")
			return
		}
		if list == nil {
			list = []model.Decision{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func handleGetDecision(env *triageEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		d, err := env.Store.GetDecision(r.Context(), id)
		if err != nil {
			zap.L().Error("get decision failed", zap.String("id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "get decision failed")
			return
		}
		if d == nil {
			writeError(w, http.StatusNotFound, "decision not found")
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
