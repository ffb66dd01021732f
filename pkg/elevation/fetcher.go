package elevation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/velomaps/gradient/pkg/cache"
	"github.com/velomaps/gradient/pkg/graph"
	"github.com/velomaps/gradient/pkg/logging"
)

// DefaultURLTemplate points at the Google Maps elevation endpoint. Templates
// contain a {locations} placeholder plus one placeholder per entry in
// FetcherConfig.Params.
const DefaultURLTemplate = "https://maps.googleapis.com/maps/api/elevation/json?locations={locations}&key={key}"

// Defaults for FetcherConfig.
const (
	// DefaultBatchSize bounds the locations per request; larger batches
	// exceed the endpoint's URL character limit.
	DefaultBatchSize = 350

	// DefaultPause is the courtesy delay before each uncached call.
	DefaultPause = 20 * time.Millisecond

	// DefaultRoundingPlaces rounds request coordinates to about one meter,
	// shortening URLs so more locations fit per batch. Only the request
	// string is rounded.
	DefaultRoundingPlaces = 5
)

// CoordinatePair is one location to look up, keyed by the node it belongs to.
type CoordinatePair struct {
	ID  graph.NodeID
	Lat float64
	Lon float64
}

// Result is a coordinate pair augmented with its elevation in meters.
type Result struct {
	CoordinatePair
	Elevation float64
}

// FetcherConfig holds the batching configuration.
type FetcherConfig struct {
	// BatchSize is the maximum number of coordinate pairs per request.
	BatchSize int

	// Pause is the delay before each uncached network call.
	Pause time.Duration

	// RoundingPlaces is the number of decimal places coordinates are
	// rounded to when formatted into the request.
	RoundingPlaces int

	// URLTemplate is the request URL template.
	URLTemplate string

	// Params are substituted into URLTemplate by placeholder name, e.g.
	// {"key": apiKey} fills the {key} placeholder.
	Params map[string]string
}

// DefaultFetcherConfig returns the default batching configuration with the
// given API key.
func DefaultFetcherConfig(apiKey string) FetcherConfig {
	return FetcherConfig{
		BatchSize:      DefaultBatchSize,
		Pause:          DefaultPause,
		RoundingPlaces: DefaultRoundingPlaces,
		URLTemplate:    DefaultURLTemplate,
		Params:         map[string]string{"key": apiKey},
	}
}

// Fetcher resolves elevations for ordered coordinate sequences by batching
// them into size-limited requests. Calls are serialized; the response cache
// is consulted per batch before the network.
type Fetcher struct {
	client *Client
	store  cache.Store
	config FetcherConfig
	logger zerolog.Logger
}

// NewFetcher creates a batch fetcher.
func NewFetcher(client *Client, store cache.Store, cfg FetcherConfig) (*Fetcher, error) {
	if client == nil {
		return nil, fmt.Errorf("client is required")
	}
	if store == nil {
		return nil, fmt.Errorf("cache store is required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.RoundingPlaces <= 0 {
		cfg.RoundingPlaces = DefaultRoundingPlaces
	}
	if cfg.URLTemplate == "" {
		cfg.URLTemplate = DefaultURLTemplate
	}

	return &Fetcher{
		client: client,
		store:  store,
		config: cfg,
		logger: logging.NewLogger("fetcher"),
	}, nil
}

// batchOutcome is the explicit per-batch result: either the decoded
// elevations or the failure that prevented them.
type batchOutcome struct {
	elevations []float64
	err        error
}

// Fetch resolves elevations for the given ordered coordinate pairs. The
// returned slice has the same length and order as the input. A failed batch
// is logged and contributes zero results; the aggregate cardinality check is
// the single failure gate, so any batch failure surfaces as a
// CardinalityError.
func (f *Fetcher) Fetch(ctx context.Context, pairs []CoordinatePair) ([]Result, error) {
	batchSize := f.config.BatchSize
	numBatches := (len(pairs) + batchSize - 1) / batchSize

	f.logger.Info().
		Int("locations", len(pairs)).
		Int("calls", numBatches).
		Msg("Requesting elevations from the API")

	elevations := make([]float64, 0, len(pairs))
	for start := 0; start < len(pairs); start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrContextCancelled, err)
		}

		end := start + batchSize
		if end > len(pairs) {
			end = len(pairs)
		}
		batch := pairs[start:end]

		outcome := f.fetchBatch(ctx, batch)
		if outcome.err != nil {
			batchesTotal.WithLabelValues("failed").Inc()
			f.logger.Warn().
				Err(outcome.err).
				Int("batch_start", start).
				Int("batch_size", len(batch)).
				Msg("Batch fetch failed, continuing to cardinality check")
			continue
		}
		elevations = append(elevations, outcome.elevations...)
	}

	if len(elevations) != len(pairs) {
		return nil, &CardinalityError{Requested: len(pairs), Received: len(elevations)}
	}
	elevationsTotal.Add(float64(len(elevations)))

	f.logger.Info().
		Int("requested", len(pairs)).
		Int("received", len(elevations)).
		Msg("Received all elevation results")

	results := make([]Result, len(pairs))
	for i, pair := range pairs {
		results[i] = Result{CoordinatePair: pair, Elevation: elevations[i]}
	}
	return results, nil
}

// fetchBatch resolves a single batch, consulting the cache before the
// network. Fresh responses are cached only after they decode cleanly, so a
// bad body is never served from cache on a later run.
func (f *Fetcher) fetchBatch(ctx context.Context, batch []CoordinatePair) batchOutcome {
	requestURL := f.batchURL(batch)

	body, err := f.store.Get(ctx, requestURL)
	if err == nil {
		batchesTotal.WithLabelValues("cache").Inc()
		f.logger.Debug().
			Str("url", requestURL).
			Int("locations", len(batch)).
			Msg("Batch served from cache")

		elevations, err := decodeElevations(body)
		if err != nil {
			return batchOutcome{err: fmt.Errorf("decode cached response: %w", err)}
		}
		return batchOutcome{elevations: elevations}
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		// Backend failure; fall through to the network.
		f.logger.Warn().Err(err).Msg("Cache get failed")
	}

	if err := f.pause(ctx); err != nil {
		return batchOutcome{err: err}
	}

	f.logger.Debug().
		Str("url", requestURL).
		Int("locations", len(batch)).
		Msg("Requesting batch from the API")

	body, err = f.client.Get(ctx, requestURL)
	if err != nil {
		return batchOutcome{err: fmt.Errorf("fetch batch: %w", err)}
	}

	elevations, err := decodeElevations(body)
	if err != nil {
		return batchOutcome{err: fmt.Errorf("decode response: %w", err)}
	}

	if err := f.store.Put(ctx, requestURL, body); err != nil {
		// The fetch itself succeeded; a cache write failure only costs a
		// repeat call next run.
		f.logger.Warn().Err(err).Msg("Cache put failed")
	}

	batchesTotal.WithLabelValues("network").Inc()
	return batchOutcome{elevations: elevations}
}

// pause waits the configured inter-call delay, honoring cancellation.
func (f *Fetcher) pause(ctx context.Context) error {
	if f.config.Pause <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
	case <-time.After(f.config.Pause):
		return nil
	}
}

// batchURL builds the deterministic request URL for a batch: coordinates
// rounded and joined as lat,lon|lat,lon into the {locations} placeholder,
// then the fixed params substituted by name.
func (f *Fetcher) batchURL(batch []CoordinatePair) string {
	var locations strings.Builder
	for i, pair := range batch {
		if i > 0 {
			locations.WriteByte('|')
		}
		locations.WriteString(strconv.FormatFloat(pair.Lat, 'f', f.config.RoundingPlaces, 64))
		locations.WriteByte(',')
		locations.WriteString(strconv.FormatFloat(pair.Lon, 'f', f.config.RoundingPlaces, 64))
	}

	oldnew := make([]string, 0, 2*(len(f.config.Params)+1))
	oldnew = append(oldnew, "{locations}", locations.String())
	for name, value := range f.config.Params {
		oldnew = append(oldnew, "{"+name+"}", value)
	}
	return strings.NewReplacer(oldnew...).Replace(f.config.URLTemplate)
}

// apiResponse is the elevation endpoint's response schema.
type apiResponse struct {
	Results []struct {
		Elevation float64 `json:"elevation"`
	} `json:"results"`
	Status string `json:"status"`
}

// decodeElevations parses a response body and extracts the elevation of each
// result entry, in order.
func decodeElevations(body []byte) ([]float64, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if resp.Status != "" && resp.Status != "OK" {
		return nil, &APIStatusError{Status: resp.Status}
	}

	elevations := make([]float64, len(resp.Results))
	for i, result := range resp.Results {
		elevations[i] = result.Elevation
	}
	return elevations, nil
}
