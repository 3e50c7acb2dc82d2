package matching

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/ewilliams-labs/spotifind/internal/core/domain"
	"github.com/ewilliams-labs/spotifind/internal/core/ports"
	"github.com/ewilliams-labs/spotifind/internal/logging"
	"github.com/ewilliams-labs/spotifind/internal/metrics"
)

const breakerName = "match-index-endpoint"

var _ ports.MatchClient = (*IndexEndpointClient)(nil)

// IndexEndpointConfig locates the deployed index.
type IndexEndpointConfig struct {
	// APIBaseURL is the regional control plane, e.g. https://us-west1-aiplatform.googleapis.com.
	APIBaseURL  string
	ProjectID   string
	Region      string
	Environment string

	// HTTPClient must attach credentials and enforce timeouts.
	HTTPClient *http.Client

	BreakerTimeout   time.Duration
	BreakerThreshold uint32
}

// IndexEndpointClient queries a deployed approximate nearest neighbor index.
type IndexEndpointClient struct {
	httpClient      *http.Client
	searchURL       string
	deployedIndexID string
	cb              *gobreaker.CircuitBreaker[[]domain.MatchNeighbor]
}

type indexEndpointList struct {
	IndexEndpoints []struct {
		Name                     string `json:"name"`
		PublicEndpointDomainName string `json:"publicEndpointDomainName"`
		DeployedIndexes          []struct {
			ID string `json:"id"`
		} `json:"deployedIndexes"`
	} `json:"indexEndpoints"`
}

type findNeighborsRequest struct {
	DeployedIndexID string          `json:"deployedIndexId"`
	Queries         []neighborQuery `json:"queries"`
}

type neighborQuery struct {
	Datapoint     queryDatapoint `json:"datapoint"`
	NeighborCount int            `json:"neighborCount"`
}

type queryDatapoint struct {
	FeatureVector []float64 `json:"featureVector"`
}

type findNeighborsResponse struct {
	NearestNeighbors []struct {
		ID        string `json:"id"`
		Neighbors []struct {
			Datapoint struct {
				DatapointID string `json:"datapointId"`
			} `json:"datapoint"`
			Distance float64 `json:"distance"`
		} `json:"neighbors"`
	} `json:"nearestNeighbors"`
}

// NewIndexEndpointClient discovers the index endpoint labelled with the
// configured environment and region and binds to its first deployed index.
func NewIndexEndpointClient(ctx context.Context, cfg IndexEndpointConfig) (*IndexEndpointClient, error) {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	filter := fmt.Sprintf("labels.environment=%s AND labels.region=%s", cfg.Environment, cfg.Region)
	listURL := fmt.Sprintf("%s/v1/projects/%s/locations/%s/indexEndpoints?filter=%s",
		strings.TrimRight(cfg.APIBaseURL, "/"), cfg.ProjectID, cfg.Region, url.QueryEscape(filter))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("matching: create discovery request: %w", err)
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstream("aiplatform", 0, time.Since(start))
		return nil, &domain.UpstreamError{Source: domain.SourceSearch, Err: fmt.Errorf("discover index endpoint: %w", err)}
	}
	defer resp.Body.Close()
	metrics.RecordUpstream("aiplatform", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.UpstreamError{Source: domain.SourceSearch, StatusCode: resp.StatusCode, Err: errors.New("discover index endpoint")}
	}

	var list indexEndpointList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("matching: decode index endpoints: %w", err)
	}
	if len(list.IndexEndpoints) == 0 {
		return nil, fmt.Errorf("matching: no index endpoint matches %q", filter)
	}
	endpoint := list.IndexEndpoints[0]
	if len(endpoint.DeployedIndexes) == 0 {
		return nil, fmt.Errorf("matching: index endpoint %s has no deployed index", endpoint.Name)
	}

	domainName := endpoint.PublicEndpointDomainName
	if !strings.Contains(domainName, "://") {
		domainName = "https://" + domainName
	}

	c := &IndexEndpointClient{
		httpClient:      httpClient,
		searchURL:       fmt.Sprintf("%s/v1/%s:findNeighbors", strings.TrimRight(domainName, "/"), endpoint.Name),
		deployedIndexID: endpoint.DeployedIndexes[0].ID,
		cb:              newBreaker(cfg.BreakerTimeout, cfg.BreakerThreshold),
	}

	logging.Ctx(ctx).Info().
		Str("endpoint", endpoint.Name).
		Str("deployed_index_id", c.deployedIndexID).
		Msg("discovered index endpoint")
	return c, nil
}

func newBreaker(timeout time.Duration, threshold uint32) *gobreaker.CircuitBreaker[[]domain.MatchNeighbor] {
	if threshold == 0 {
		threshold = 5
	}
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	return gobreaker.NewCircuitBreaker[[]domain.MatchNeighbor](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// 4xx responses say nothing about backend health.
		IsSuccessful: func(err error) bool {
			var upstream *domain.UpstreamError
			if errors.As(err, &upstream) && upstream.StatusCode >= 400 && upstream.StatusCode < 500 {
				return true
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state transition")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String(), int(to))
		},
	})
}

// GetMatch returns the neighbors of req.Query in the order the index reports them.
func (c *IndexEndpointClient) GetMatch(ctx context.Context, req ports.MatchRequest) ([]domain.MatchNeighbor, error) {
	if len(req.Query) == 0 {
		return nil, &domain.InvalidQueryError{Reason: "empty feature vector"}
	}

	neighbors, err := c.cb.Execute(func() ([]domain.MatchNeighbor, error) {
		return c.findNeighbors(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &domain.UpstreamError{Source: domain.SourceSearch, StatusCode: http.StatusServiceUnavailable, Err: err}
	}
	return neighbors, err
}

func (c *IndexEndpointClient) findNeighbors(ctx context.Context, req ports.MatchRequest) ([]domain.MatchNeighbor, error) {
	body, err := json.Marshal(findNeighborsRequest{
		DeployedIndexID: c.deployedIndexID,
		Queries: []neighborQuery{{
			Datapoint:     queryDatapoint{FeatureVector: req.Query},
			NeighborCount: req.NumNeighbors,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("matching: encode query: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.searchURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("matching: create search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.RecordUpstream("match", 0, time.Since(start))
		return nil, &domain.UpstreamError{Source: domain.SourceSearch, Err: err}
	}
	defer resp.Body.Close()
	metrics.RecordUpstream("match", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &domain.UpstreamError{Source: domain.SourceSearch, StatusCode: resp.StatusCode}
	}

	var out findNeighborsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("matching: decode neighbors: %w", err)
	}
	if len(out.NearestNeighbors) == 0 {
		return []domain.MatchNeighbor{}, nil
	}

	raw := out.NearestNeighbors[0].Neighbors
	neighbors := make([]domain.MatchNeighbor, 0, len(raw))
	for _, n := range raw {
		neighbors = append(neighbors, domain.MatchNeighbor{ID: n.Datapoint.DatapointID, Distance: n.Distance})
	}
	return neighbors, nil
}
