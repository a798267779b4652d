package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	elevation "github.com/twpayne/go-xyzelevation"
	"github.com/twpayne/go-xyzelevation/internal/config"
)

const (
	// The time to wait after responding /ready with non-200 before starting to shut down the HTTP server
	gracefulShutdownSleep = 20 * time.Second
	// The time to wait for the in-flight HTTP requests to complete before exiting
	gracefulShutdownTimeout = 5 * time.Second
)

func main() {
	cfg := config.Default()
	cfg.RegisterFlags(flag.CommandLine)
	port := flag.Int("port", 8080, "The port to listen on")
	healthCheckLat := flag.Float64("health-check-lat", 35.362, "Latitude of the health check elevation")
	healthCheckLng := flag.Float64("health-check-lng", 138.731, "Longitude of the health check elevation")
	flag.Parse()

	elevationService, err := cfg.ElevationService()
	if err != nil {
		log.Fatalf("Unable to create elevation service: %s", err.Error())
	}

	r := mux.NewRouter()

	// Readiness probe for graceful shutdown support
	readinessResponseCode := uint32(http.StatusOK)
	r.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(atomic.LoadUint32(&readinessResponseCode)))
	})

	r.HandleFunc("/live", elevationService.HealthCheckHandler(elevation.LatLng{
		Lat: *healthCheckLat,
		Lng: *healthCheckLng,
	}))
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/elevation", elevationService.ElevationsHandler()).Methods(http.MethodGet)

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("Listening to %s", addr)

	// Support for upgrading an http/1.1 connection to http/2
	http2Server := &http2.Server{}
	server := &http.Server{
		Addr:    addr,
		Handler: h2c.NewHandler(r, http2Server),
	}

	shutdownChan := make(chan struct{})
	go func() {
		defer close(shutdownChan)

		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGTERM)
		<-signals

		log.Printf("SIGTERM received. Starting graceful shutdown.")

		// Start failing readiness probes
		atomic.StoreUint32(&readinessResponseCode, http.StatusInternalServerError)
		// Wait for upstream clients
		time.Sleep(gracefulShutdownSleep)
		// Begin shutdown of in-flight requests
		shutdownCtx, shutdownCtxCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error waiting for server shutdown: %+v", err)
		}
		shutdownCtxCancel()
	}()

	log.Printf("Service started")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("Couldn't start HTTP server: %+v", err)
		os.Exit(1)
	}
	<-shutdownChan
}
