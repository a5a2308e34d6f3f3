package pumproom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// API endpoint paths.
const (
	endpointVerifyToken    = "/auth/verify_token"
	endpointAuthenticate   = "/auth/authenticate"
	endpointGetStates      = "/tracker/get_states"
	endpointSetStates      = "/tracker/set_states"
	endpointLoadCourseData = "/tracker/load_course_data"
)

// verifyTokenInput is the request body of the token verification endpoint.
type verifyTokenInput struct {
	Realm   string         `json:"realm"`
	Token   string         `json:"token"`
	UID     string         `json:"uid"`
	Context *lmsContextAPI `json:"context,omitempty"`
}

// verifyTokenResult is the response of the token verification endpoint.
type verifyTokenResult struct {
	IsValid bool `json:"is_valid"`
	IsAdmin bool `json:"is_admin"`
}

// authInput is the request body of the authentication endpoint.
type authInput struct {
	Realm      string         `json:"realm"`
	LMS        *LMSProfile    `json:"lms,omitempty"`
	Profile    *TildaProfile  `json:"profile,omitempty"`
	Context    *lmsContextAPI `json:"context,omitempty"`
	URL        string         `json:"url,omitempty"`
	SDKVersion string         `json:"sdk_version"`
}

// authResult is the response of the authentication endpoint. Only the user
// identity fields survive past the client boundary.
type authResult struct {
	UID                string             `json:"uid"`
	Token              string             `json:"token"`
	IsAdmin            bool               `json:"is_admin"`
	Provider           IdentityProvider   `json:"provider,omitempty"`
	AvailableProviders []IdentityProvider `json:"available_providers,omitempty"`
}

func (r *authResult) user() *User {
	return &User{UID: r.UID, Token: r.Token, IsAdmin: r.IsAdmin}
}

// getStatesInput is the request body of the get_states endpoint.
type getStatesInput struct {
	User       *User          `json:"user"`
	URL        string         `json:"url,omitempty"`
	StateNames []string       `json:"state_names"`
	Context    *lmsContextAPI `json:"context,omitempty"`
	SDKVersion string         `json:"sdk_version"`
}

// setStatesInput is the request body of the set_states endpoint.
type setStatesInput struct {
	User       *User          `json:"user"`
	URL        string         `json:"url,omitempty"`
	States     []State        `json:"states"`
	Context    *lmsContextAPI `json:"context,omitempty"`
	SDKVersion string         `json:"sdk_version"`
}

// loadCourseDataInput is the request body of the load_course_data endpoint.
type loadCourseDataInput struct {
	Realm      string `json:"realm"`
	User       *User  `json:"user,omitempty"`
	URL        string `json:"url,omitempty"`
	SDKVersion string `json:"sdk_version"`
}

// apiClient performs the HTTP calls against the PumpRoom backend. All calls
// are POSTs with JSON bodies, authenticated by the X-API-KEY header, retried
// per RetryConfig and reported to the Observer.
type apiClient struct {
	baseURL  string
	apiKey   string
	realm    string
	pageURL  string
	context  *LMSContext
	headers  map[string]string
	http     *http.Client
	logger   *logrus.Logger
	observer Observer
	retry    RetryConfig
}

func newAPIClient(cfg *Config) *apiClient {
	return &apiClient{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		realm:    cfg.Realm,
		pageURL:  cfg.PageURL,
		context:  cfg.Context,
		headers:  cfg.Headers,
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   cfg.Logger,
		observer: cfg.Observer,
		retry:    cfg.RetryConfig,
	}
}

// verifyToken checks whether a cached user token is still valid for the realm.
func (a *apiClient) verifyToken(ctx context.Context, user *User) (*verifyTokenResult, error) {
	input := verifyTokenInput{Realm: a.realm, Token: user.Token, UID: user.UID, Context: a.context.api()}
	var result verifyTokenResult
	if err := a.post(ctx, endpointVerifyToken, input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// authenticate exchanges profile data for a PumpRoom user.
func (a *apiClient) authenticate(ctx context.Context, opts AuthOptions) (*User, error) {
	input := authInput{
		Realm:      a.realm,
		LMS:        opts.LMS,
		Profile:    opts.Profile,
		Context:    a.context.api(),
		URL:        a.pageURL,
		SDKVersion: Version,
	}
	var result authResult
	if err := a.post(ctx, endpointAuthenticate, input, &result); err != nil {
		return nil, err
	}
	return result.user(), nil
}

// fetchStates retrieves named states for the user.
func (a *apiClient) fetchStates(ctx context.Context, user *User, names []string) (*GetStatesResponse, error) {
	input := getStatesInput{
		User:       user,
		URL:        a.pageURL,
		StateNames: names,
		Context:    a.context.api(),
		SDKVersion: Version,
	}
	var result GetStatesResponse
	if err := a.post(ctx, endpointGetStates, input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// storeStates persists states for the user.
func (a *apiClient) storeStates(ctx context.Context, user *User, states []State) (*SetStatesResponse, error) {
	input := setStatesInput{
		User:       user,
		URL:        a.pageURL,
		States:     states,
		Context:    a.context.api(),
		SDKVersion: Version,
	}
	var result SetStatesResponse
	if err := a.post(ctx, endpointSetStates, input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// loadCourseData fetches course data bound to the page. user may be nil.
func (a *apiClient) loadCourseData(ctx context.Context, user *User) (*LoadCourseDataOutput, error) {
	input := loadCourseDataInput{Realm: a.realm, User: user, URL: a.pageURL, SDKVersion: Version}
	var result LoadCourseDataOutput
	if err := a.post(ctx, endpointLoadCourseData, input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// post issues one retried POST and decodes the JSON response into out.
func (a *apiClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request for %s: %w", path, err)
	}

	a.observer.OnRequestStart(http.MethodPost, path)
	start := time.Now()
	err = retryDo(ctx, a.retry, a.observer, http.MethodPost, path, func() error {
		return a.doOnce(ctx, path, payload, out)
	})
	a.observer.OnRequestEnd(http.MethodPost, path, time.Since(start), err)

	if err != nil {
		a.logger.WithFields(logrus.Fields{
			"path":  path,
			"error": err,
		}).Debug("API request failed")
	}
	return err
}

func (a *apiClient) doOnce(ctx context.Context, path string, payload []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", a.apiKey)
	for key, value := range a.headers {
		req.Header.Set(key, value)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return &NetworkError{Op: http.MethodPost + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Endpoint:   path,
		}
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096)); readErr == nil {
			_ = json.Unmarshal(data, apiErr)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Op: http.MethodPost + " " + path, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
