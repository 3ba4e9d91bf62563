// Package remote implements storage.Storage against an HTTP collection
// endpoint (GET/POST {base}/users) that speaks the nested
// {name, email, address{city, zipcode}} record shape.
//
// Status mapping:
//
//	400         → storage.ErrDuplicateEmail
//	404         → storage.ErrNotFound
//	5xx         → storage.ErrServer
//	no response → storage.ErrNetwork
//
// Reads are retried with exponential backoff on ErrServer and ErrNetwork.
// Writes are sent once.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-cleanhttp"

	"github.com/aanand-mishra/registration-api/internal/storage"
	"github.com/aanand-mishra/registration-api/internal/types"
)

// Remote is the HTTP-backed store.
type Remote struct {
	baseURL    string
	client     *http.Client
	newBackOff func() backoff.BackOff
}

var _ storage.Storage = (*Remote)(nil)

// Option configures a Remote.
type Option func(*Remote)

// WithHTTPClient replaces the pooled default client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Remote) { r.client = c }
}

// WithBackOff sets the retry policy for reads.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(r *Remote) { r.newBackOff = newBackOff }
}

// New returns a store talking to baseURL. timeout bounds each request.
func New(baseURL string, timeout time.Duration, opts ...Option) *Remote {
	client := cleanhttp.DefaultPooledClient()
	client.Timeout = timeout

	r := &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		newBackOff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ToRemote converts a User into the collection's record shape. Birth has no
// remote counterpart and is dropped.
func ToRemote(u types.User) types.RemoteUser {
	return types.RemoteUser{
		ID:    u.ID,
		Name:  strings.TrimSpace(u.FirstName + " " + u.LastName),
		Email: u.Email,
		Address: types.RemoteAddress{
			City:    u.City,
			Zipcode: u.PostalCode,
		},
	}
}

// FromRemote converts a collection record back into a User. The name is
// split on its first space: "Jean Pierre Dupont" becomes first name "Jean",
// last name "Pierre Dupont".
func FromRemote(r types.RemoteUser) types.User {
	first, last, _ := strings.Cut(strings.TrimSpace(r.Name), " ")
	return types.User{
		ID:         r.ID,
		FirstName:  first,
		LastName:   strings.TrimSpace(last),
		Email:      r.Email,
		City:       r.Address.City,
		PostalCode: r.Address.Zipcode,
	}
}

func (s *Remote) CreateUser(ctx context.Context, u types.User) (int64, error) {
	payload := ToRemote(u)
	payload.ID = 0

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("CreateUser: encode: %w", err)
	}

	var created types.RemoteUser
	if err := s.do(ctx, http.MethodPost, "/users", body, &created); err != nil {
		return 0, fmt.Errorf("CreateUser: %w", err)
	}
	return created.ID, nil
}

func (s *Remote) GetUserByID(ctx context.Context, id int64) (types.User, error) {
	var ru types.RemoteUser
	err := s.retry(ctx, func() error {
		return s.do(ctx, http.MethodGet, "/users/"+strconv.FormatInt(id, 10), nil, &ru)
	})
	if err != nil {
		return types.User{}, fmt.Errorf("GetUserByID: %w", err)
	}
	return FromRemote(ru), nil
}

func (s *Remote) GetUsers(ctx context.Context) ([]types.User, error) {
	var records []types.RemoteUser
	err := s.retry(ctx, func() error {
		records = nil
		return s.do(ctx, http.MethodGet, "/users", nil, &records)
	})
	if err != nil {
		return nil, fmt.Errorf("GetUsers: %w", err)
	}

	list := make([]types.User, 0, len(records))
	for _, r := range records {
		list = append(list, FromRemote(r))
	}
	return list, nil
}

// retry runs op until it succeeds, fails with a non-transient error, or the
// backoff policy gives up.
func (s *Remote) retry(ctx context.Context, op func() error) error {
	return backoff.Retry(func() error {
		err := op()
		if err == nil || errors.Is(err, storage.ErrServer) || errors.Is(err, storage.ErrNetwork) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(s.newBackOff(), ctx))
}

// do sends one request and decodes a 2xx JSON body into out.
func (s *Remote) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", storage.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return storage.ErrDuplicateEmail
	case resp.StatusCode == http.StatusNotFound:
		return storage.ErrNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s %s: status %d", storage.ErrServer, method, path, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
