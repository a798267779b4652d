package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/akrylysov/algnhsa"
	"github.com/gorilla/mux"

	"github.com/twpayne/go-xyzelevation/internal/config"
)

func main() {
	cfg := config.Default()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	elevationService, err := cfg.ElevationService()
	if err != nil {
		log.Fatalf("Unable to create elevation service: %s", err.Error())
	}

	r := mux.NewRouter()
	r.HandleFunc("/elevation", elevationService.ElevationsHandler()).Methods(http.MethodGet)

	algnhsa.ListenAndServe(r, nil)
}
