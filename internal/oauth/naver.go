// Package oauth implements the identity providers users sign in with.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"freleefty/internal/service"
)

const (
	naverTokenURL   = "https://nid.naver.com/oauth2.0/token"
	naverProfileURL = "https://openapi.naver.com/v1/nid/me"

	requestTimeout = 10 * time.Second
	maxBody        = 64 << 10
)

// Naver exchanges Naver Login authorization codes.
type Naver struct {
	clientID     string
	clientSecret string
	tokenURL     string
	profileURL   string
	http         *http.Client
}

func NewNaver(clientID, clientSecret string) *Naver {
	return &Naver{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     naverTokenURL,
		profileURL:   naverProfileURL,
		http:         &http.Client{Timeout: requestTimeout},
	}
}

// Exchange trades code for an access token and reads the user's profile.
func (n *Naver) Exchange(ctx context.Context, code string) (*service.Identity, error) {
	if code == "" {
		return nil, errors.New("naver: empty authorization code")
	}
	token, err := n.accessToken(ctx, code)
	if err != nil {
		return nil, err
	}
	return n.profile(ctx, token)
}

func (n *Naver) accessToken(ctx context.Context, code string) (string, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"state":         {"state"},
		"client_id":     {n.clientID},
		"client_secret": {n.clientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("naver: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out struct {
		AccessToken string `json:"access_token"`
		Error       string `json:"error"`
	}
	if err := n.do(req, &out); err != nil {
		return "", fmt.Errorf("naver: token: %w", err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("naver: token: no access token (%s)", out.Error)
	}
	return out.AccessToken, nil
}

func (n *Naver) profile(ctx context.Context, token string) (*service.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.profileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("naver: build profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var out struct {
		Response struct {
			ID       string `json:"id"`
			Nickname string `json:"nickname"`
		} `json:"response"`
	}
	if err := n.do(req, &out); err != nil {
		return nil, fmt.Errorf("naver: profile: %w", err)
	}
	if out.Response.ID == "" {
		return nil, errors.New("naver: profile: missing id")
	}
	return &service.Identity{ID: out.Response.ID, Nickname: out.Response.Nickname}, nil
}

func (n *Naver) do(req *http.Request, out any) error {
	resp, err := n.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out)
}
