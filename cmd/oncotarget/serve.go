package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nishad/oncotarget/internal/apperrors"
	"github.com/nishad/oncotarget/internal/repository"
)

var (
	servePort int
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve ingestion job progress over HTTP",
	Long: `Starts a narrow HTTP server exposing /progress/{job_id},
returning the durable IngestionAudit checkpoint row for a job, plus a
/health check that pings the database — the
shell's one external collaborator surface per spec.md §1, kept minimal
on purpose. Grounded on cmd/srake/server.go's gorilla/mux wiring.`,
	Example: `  oncotarget serve --port 8080
  curl http://localhost:8080/progress/my-job-id`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "port to listen on")
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "host to bind to")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	repo, err := repository.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer repo.Close()

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		status := "healthy"
		if err := repo.Ping(r.Context()); err != nil {
			status = "unhealthy"
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
	})
	router.HandleFunc("/progress/{job_id}", func(w http.ResponseWriter, r *http.Request) {
		jobID := mux.Vars(r)["job_id"]
		audit, err := repo.GetAuditRow(r.Context(), jobID)
		if err != nil {
			status := http.StatusInternalServerError
			if apperrors.KindOf(err) == apperrors.KindNotFound {
				status = http.StatusNotFound
			}
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(audit)
	})

	srv := &http.Server{Addr: serveHost + ":" + strconv.Itoa(servePort), Handler: router}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	log.Info().Str("addr", srv.Addr).Msg("progress server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
