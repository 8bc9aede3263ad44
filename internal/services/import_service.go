package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"gopkg.in/yaml.v3"

	"marketplace/internal/access"
	"marketplace/internal/domain"
	"marketplace/internal/repos"
	"marketplace/internal/validate"
)

// ImportService pulls a partner's catalog document and makes it the
// complete catalog of the partner's shop.
type ImportService struct {
	Imports  *repos.ImportRepo
	client   *resty.Client
	maxBytes int64
	locks    keyedMutex
}

func NewImportService(imports *repos.ImportRepo, timeout time.Duration, maxBytes int64) *ImportService {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/x-yaml, application/yaml, text/yaml, application/json, */*").
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	if maxBytes > 0 {
		client.SetResponseBodyLimit(int(maxBytes))
	}
	return &ImportService{Imports: imports, client: client, maxBytes: maxBytes}
}

// Import fetches the document at url and replaces the caller's shop catalog
// with it. The document is fully decoded and checked before the store is
// touched.
func (s *ImportService) Import(ctx context.Context, id access.Identity, url string) (domain.ImportResult, error) {
	if err := access.Authorize(id, domain.RoleShop); err != nil {
		return domain.ImportResult{}, err
	}
	if err := validate.Var("url", url, "required,http_url"); err != nil {
		return domain.ImportResult{}, err
	}

	feed, err := s.fetch(ctx, url)
	if err != nil {
		return domain.ImportResult{}, err
	}

	unlock := s.locks.Lock(id.UserID)
	defer unlock()
	return s.Imports.ReplaceShopCatalog(ctx, id.UserID, url, feed)
}

func (s *ImportService) fetch(ctx context.Context, url string) (*domain.Feed, error) {
	resp, err := s.client.R().SetContext(ctx).Get(url)
	switch {
	case errors.Is(err, resty.ErrResponseBodyTooLarge):
		return nil, domain.Validation(fmt.Sprintf("url: document exceeds %d bytes", s.maxBytes))
	case err != nil:
		return nil, domain.Validation(fmt.Sprintf("url: could not fetch document: %v", err))
	case resp.StatusCode() >= 400:
		return nil, domain.Validation(fmt.Sprintf("url: document request returned %d", resp.StatusCode()))
	}
	return DecodeFeed(resp.Body())
}

// DecodeFeed parses a YAML (or JSON) catalog document and checks it.
func DecodeFeed(body []byte) (*domain.Feed, error) {
	var feed domain.Feed
	if err := yaml.Unmarshal(body, &feed); err != nil {
		return nil, domain.Validation("document: " + err.Error())
	}
	if err := validate.Struct(&feed); err != nil {
		return nil, err
	}
	if err := feed.Check(); err != nil {
		return nil, err
	}
	return &feed, nil
}

// keyedMutex serializes work per key and forgets keys nobody holds.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*keyedLock
}

type keyedLock struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key int64) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = map[int64]*keyedLock{}
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
