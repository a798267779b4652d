package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"

	elevation "github.com/twpayne/go-xyzelevation"
	"github.com/twpayne/go-xyzelevation/internal/config"
)

func run() error {
	cfg := config.Default()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if flag.NArg() != 2 {
		return errors.New("syntax: elevation-example latitude longitude")
	}
	lat, err := strconv.ParseFloat(flag.Arg(0), 64)
	if err != nil {
		return err
	}
	lng, err := strconv.ParseFloat(flag.Arg(1), 64)
	if err != nil {
		return err
	}

	es, err := cfg.ElevationService()
	if err != nil {
		return err
	}

	elevations, err := es.Elevations(context.Background(), []elevation.LatLng{{Lat: lat, Lng: lng}})
	if err != nil {
		return err
	}
	if math.IsNaN(elevations[0]) {
		fmt.Println("no data")
		return nil
	}
	fmt.Println(elevations[0])

	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
