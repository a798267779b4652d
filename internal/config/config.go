// Package config builds elevation services from command line flags and
// environment variables.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials/stscreds"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	elevation "github.com/twpayne/go-xyzelevation"
)

// A Config configures an elevation service.
type Config struct {
	FetchMethod          string
	HTTPPrefix           string
	S3Bucket             string
	S3Prefix             string
	AWSRegion            string
	IAMRole              string
	RequesterPays        bool
	FSPath               string
	Zoom                 int
	Cache                string
	CacheSize            int
	CacheTTL             time.Duration
	Concurrency          int
	MissingTilesAsNoData bool
}

// Default returns the default Config, overridden by any ELEVATION_*
// environment variables.
func Default() *Config {
	c := &Config{
		FetchMethod: "http",
		HTTPPrefix:  elevation.GSIDEMBaseURL,
		Zoom:        elevation.DefaultZoom,
		Cache:       "otter",
		CacheSize:   256,
		Concurrency: 1,
	}
	lookupString("ELEVATION_FETCH_METHOD", &c.FetchMethod)
	lookupString("ELEVATION_HTTP_PREFIX", &c.HTTPPrefix)
	lookupString("ELEVATION_S3_BUCKET", &c.S3Bucket)
	lookupString("ELEVATION_S3_PREFIX", &c.S3Prefix)
	lookupString("ELEVATION_AWS_REGION", &c.AWSRegion)
	lookupString("ELEVATION_AWS_ROLE", &c.IAMRole)
	if _, ok := os.LookupEnv("ELEVATION_S3_REQUESTER_PAYS"); ok {
		c.RequesterPays = true
	}
	lookupString("ELEVATION_FS_PATH", &c.FSPath)
	lookupInt("ELEVATION_ZOOM", &c.Zoom)
	lookupString("ELEVATION_CACHE", &c.Cache)
	lookupInt("ELEVATION_CACHE_SIZE", &c.CacheSize)
	if value, ok := os.LookupEnv("ELEVATION_CACHE_TTL"); ok {
		if cacheTTL, err := time.ParseDuration(value); err == nil {
			c.CacheTTL = cacheTTL
		}
	}
	lookupInt("ELEVATION_CONCURRENCY", &c.Concurrency)
	if _, ok := os.LookupEnv("ELEVATION_MISSING_TILES_AS_NO_DATA"); ok {
		c.MissingTilesAsNoData = true
	}
	return c
}

// RegisterFlags registers flags for c's fields on flagSet, using c's current
// values as defaults.
func (c *Config) RegisterFlags(flagSet *flag.FlagSet) {
	flagSet.StringVar(&c.FetchMethod, "fetch-method", c.FetchMethod, "Method to use when fetching tiles. Use http, s3, or fs.")
	flagSet.StringVar(&c.HTTPPrefix, "http-prefix", c.HTTPPrefix, "HTTP prefix when fetching tiles using HTTP fetch method")
	flagSet.StringVar(&c.S3Bucket, "s3-bucket", c.S3Bucket, "S3 bucket to fetch tiles from when using S3 fetch method")
	flagSet.StringVar(&c.S3Prefix, "s3-prefix", c.S3Prefix, "Key prefix of tiles in the S3 bucket")
	flagSet.StringVar(&c.AWSRegion, "region", c.AWSRegion, "Region to use when setting up connection to S3")
	flagSet.StringVar(&c.IAMRole, "iam-role", c.IAMRole, "IAM role to assume when setting up connection to S3")
	flagSet.BoolVar(&c.RequesterPays, "requester-pays", c.RequesterPays, "Set the requester pays flag when using the S3 fetch method")
	flagSet.StringVar(&c.FSPath, "fs-path", c.FSPath, "Directory to read tiles from when using the fs fetch method")
	flagSet.IntVar(&c.Zoom, "zoom", c.Zoom, "Zoom level of elevation tiles")
	flagSet.StringVar(&c.Cache, "cache", c.Cache, "Tile cache to use. Use otter or lru.")
	flagSet.IntVar(&c.CacheSize, "cache-size", c.CacheSize, "Maximum number of cached tiles")
	flagSet.DurationVar(&c.CacheTTL, "cache-ttl", c.CacheTTL, "Time after which cached tiles expire, otter cache only")
	flagSet.IntVar(&c.Concurrency, "concurrency", c.Concurrency, "Maximum number of tiles fetched in parallel per request")
	flagSet.BoolVar(&c.MissingTilesAsNoData, "missing-tiles-as-no-data", c.MissingTilesAsNoData, "Report points in missing tiles as null instead of failing")
}

// TileFetcher returns the tile fetcher configured by c.
func (c *Config) TileFetcher() (elevation.TileFetcher, error) {
	switch c.FetchMethod {
	case "http":
		if c.HTTPPrefix == "" {
			return nil, errors.New("http-prefix must be set when using the http fetch method")
		}
		log.Printf("Using '%s' as http prefix", c.HTTPPrefix)
		return elevation.NewHTTPTileFetcher(c.HTTPPrefix), nil
	case "s3":
		if c.S3Bucket == "" {
			return nil, errors.New("s3-bucket must be set when using the s3 fetch method")
		}
		if c.AWSRegion == "" {
			return nil, errors.New("region must be set when using the s3 fetch method")
		}
		awsSession, err := c.awsSession()
		if err != nil {
			return nil, fmt.Errorf("unable to set up AWS session: %w", err)
		}
		return elevation.NewS3TileFetcher(s3.New(awsSession), c.S3Bucket, c.S3Prefix, c.RequesterPays), nil
	case "fs":
		if c.FSPath == "" {
			return nil, errors.New("fs-path must be set when using the fs fetch method")
		}
		return elevation.NewFSTileFetcher(os.DirFS(c.FSPath), ""), nil
	default:
		return nil, fmt.Errorf("%s: unknown fetch method", c.FetchMethod)
	}
}

// TileCache returns the tile cache configured by c.
func (c *Config) TileCache() (elevation.TileCache, error) {
	switch c.Cache {
	case "otter":
		return elevation.NewOtterTileCache(c.CacheSize, c.CacheTTL)
	case "lru":
		return elevation.NewLRUTileCache(c.CacheSize)
	default:
		return nil, fmt.Errorf("%s: unknown cache", c.Cache)
	}
}

// ElevationService returns the elevation service configured by c.
func (c *Config) ElevationService() (*elevation.ElevationService, error) {
	tileFetcher, err := c.TileFetcher()
	if err != nil {
		return nil, err
	}
	tileCache, err := c.TileCache()
	if err != nil {
		return nil, err
	}
	tileSet, err := elevation.NewTileSet(
		elevation.WithTileFetcher(tileFetcher),
		elevation.WithTileCache(tileCache),
		elevation.WithZoom(c.Zoom),
		elevation.WithConcurrency(c.Concurrency),
		elevation.WithMissingTilesAsNoData(c.MissingTilesAsNoData),
	)
	if err != nil {
		return nil, err
	}
	return elevation.NewElevationService(tileSet), nil
}

func (c *Config) awsSession() (*session.Session, error) {
	if c.IAMRole == "" {
		return session.NewSessionWithOptions(session.Options{
			Config: aws.Config{
				HTTPClient: &http.Client{Timeout: elevation.DefaultHTTPTimeout},
				Region:     aws.String(c.AWSRegion),
			},
		})
	}
	log.Printf("Configured to use AWS role %s", c.IAMRole)
	return session.NewSessionWithOptions(session.Options{
		Config: aws.Config{
			Credentials: stscreds.NewCredentials(session.Must(session.NewSession()), c.IAMRole),
			HTTPClient:  &http.Client{Timeout: elevation.DefaultHTTPTimeout},
			Region:      aws.String(c.AWSRegion),
		},
		SharedConfigState: session.SharedConfigEnable,
	})
}

func lookupString(key string, value *string) {
	if s, ok := os.LookupEnv(key); ok {
		*value = s
	}
}

func lookupInt(key string, value *int) {
	if s, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(s); err == nil {
			*value = i
		}
	}
}
