package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abgdnv/storefront/internal/catalog"
	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/pkg/client/resilience"
	"github.com/abgdnv/storefront/pkg/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxResponseBytes = 8 << 20

// RemoteStore reads products from a REST catalog API exposing
// GET {base}/products and GET {base}/products/{id}.
// Every request goes through a retrying circuit breaker.
type RemoteStore struct {
	baseURL  string
	client   *http.Client
	executor *resilience.Executor[[]byte]
	logger   *slog.Logger
}

// NewRemoteStore creates a RemoteStore. A nil client gets a default one with the given timeout.
func NewRemoteStore(baseURL string, timeout time.Duration, client *http.Client, cfg config.ResilienceConfig, logger *slog.Logger) *RemoteStore {
	if client == nil {
		client = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &RemoteStore{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   client,
		executor: resilience.NewExecutor[[]byte]("catalog-remote-cb", cfg),
		logger:   logger,
	}
}

// errRemoteNotFound is returned by get for a 404 answer.
var errRemoteNotFound = errors.New("remote resource not found")

func (s *RemoteStore) get(ctx context.Context, path string) ([]byte, error) {
	return s.executor.Execute(ctx, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			return nil, resilience.Transient(err)
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, resilience.Transient(fmt.Errorf("failed to read response body: %w", err))
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, errRemoteNotFound
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return nil, resilience.Transient(fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path))
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
		}
		return body, nil
	})
}

func (s *RemoteStore) ListAll(ctx context.Context) ([]catalog.Product, error) {
	body, err := s.get(ctx, "/products")
	if err != nil {
		s.logger.ErrorContext(ctx, "Remote catalog request failed", "op", "ListAll", "error", err)
		return nil, perrors.NewFetchError("ListAll", err)
	}
	var products []catalog.Product
	if err := json.Unmarshal(body, &products); err != nil {
		s.logger.ErrorContext(ctx, "Malformed remote catalog response", "op", "ListAll", "error", err)
		return nil, perrors.NewFetchError("ListAll", fmt.Errorf("malformed product list: %w", err))
	}
	if products == nil {
		products = []catalog.Product{}
	}
	return products, nil
}

func (s *RemoteStore) GetByID(ctx context.Context, id int64) (catalog.Product, bool, error) {
	body, err := s.get(ctx, "/products/"+url.PathEscape(strconv.FormatInt(id, 10)))
	if errors.Is(err, errRemoteNotFound) {
		return catalog.Product{}, false, nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Remote catalog request failed", "op", "GetByID", "id", id, "error", err)
		return catalog.Product{}, false, perrors.NewFetchError("GetByID", err)
	}
	var product catalog.Product
	if err := json.Unmarshal(body, &product); err != nil {
		s.logger.ErrorContext(ctx, "Malformed remote catalog response", "op", "GetByID", "id", id, "error", err)
		return catalog.Product{}, false, perrors.NewFetchError("GetByID", fmt.Errorf("malformed product: %w", err))
	}
	return product, true, nil
}

func (s *RemoteStore) ListByCategory(ctx context.Context, category string) ([]catalog.Product, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.ByCategory(all, category), nil
}

func (s *RemoteStore) Search(ctx context.Context, text string) ([]catalog.Product, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Search(all, text), nil
}

func (s *RemoteStore) Filter(ctx context.Context, q catalog.Query) ([]catalog.Product, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Filter(all, q), nil
}

func (s *RemoteStore) ListCategories(ctx context.Context) ([]string, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Categories(all), nil
}
