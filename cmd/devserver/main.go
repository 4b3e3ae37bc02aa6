// Package main implements a development stub of the committee backend. It
// serves the full REST surface the client expects from in-memory fixtures,
// with HS256 bearer tokens, so the CLI can be exercised without the real
// backend.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/committeehq/committee-client/pkg/logger"
)

func main() {
	addr := flag.String("addr", ":4000", "Listen address")
	secret := flag.String("secret", "dev-secret", "HS256 signing secret")
	flag.Parse()

	_ = godotenv.Load()
	if v := os.Getenv("COMMITTEE_DEV_ADDR"); v != "" {
		*addr = v
	}
	if v := os.Getenv("COMMITTEE_DEV_SECRET"); v != "" {
		*secret = v
	}

	log := logger.New("devserver", logger.Config{Level: "debug", Pretty: true})

	srv := newServer([]byte(*secret), log)

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	srv.routes(api)

	httpServer := &http.Server{
		Addr:         *addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("dev server listening on %s", *addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("server error: %v", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
}
