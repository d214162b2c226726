package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"golang.org/x/text/secure/precis"

	"github.com/a1rzayev/footbook-go/internal/credstore"
)

// Endpoint paths on the auth server.
const (
	loginPath   = "/auth/login"
	signupPath  = "/auth/signup"
	refreshPath = "/auth/refresh"
	mePath      = "/users/me"
)

// SignupParams carries the signup form. ProfilePicture is optional; when
// non-nil it is streamed as a multipart file part named "profilePicture".
type SignupParams struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Password    string
	SkillLevel  string

	ProfilePicture     io.Reader
	ProfilePictureName string
}

// User is the authenticated user's profile as returned by /users/me.
type User struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	SkillLevel  string `json:"skillLevel"`
}

// tokenResponse is the wire shape of every successful auth endpoint reply.
type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// normalizeEmail canonicalizes the address with the PRECIS UsernameCaseMapped
// profile (NFC, case folding) so the same mailbox always hits the same
// account. Returns the input unchanged if it does not survive the profile —
// the endpoint is the authority on what it accepts.
func normalizeEmail(email string) string {
	normalized, err := precis.UsernameCaseMapped.String(email)
	if err != nil {
		return email
	}

	return normalized
}

// Login exchanges an email and password for a token pair and persists it.
// The request is sent unauthenticated and bypasses the refresh pipeline.
func (c *Client) Login(ctx context.Context, email, password string) (*credstore.TokenPair, error) {
	fields := map[string]string{
		"email":    normalizeEmail(email),
		"password": password,
	}

	pair, err := c.postMultipart(ctx, loginPath, fields, nil, "")
	if err != nil {
		return nil, err
	}

	if err := c.store.Save(ctx, *pair); err != nil {
		return nil, fmt.Errorf("api: persisting credentials: %w", err)
	}

	c.logger.Info("login successful")

	return pair, nil
}

// Signup registers a new account, receives its first token pair, and
// persists it. Sent unauthenticated.
func (c *Client) Signup(ctx context.Context, params SignupParams) (*credstore.TokenPair, error) {
	fields := map[string]string{
		"firstName":   params.FirstName,
		"lastName":    params.LastName,
		"email":       normalizeEmail(params.Email),
		"phoneNumber": params.PhoneNumber,
		"password":    params.Password,
		"skillLevel":  params.SkillLevel,
	}

	pair, err := c.postMultipart(ctx, signupPath, fields, params.ProfilePicture, params.ProfilePictureName)
	if err != nil {
		return nil, err
	}

	if err := c.store.Save(ctx, *pair); err != nil {
		return nil, fmt.Errorf("api: persisting credentials: %w", err)
	}

	c.logger.Info("signup successful")

	return pair, nil
}

// Refresh exchanges a refresh token for a new pair. The new pair is NOT
// persisted here — rotation inside the pipeline and explicit callers decide
// what to do with it.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*credstore.TokenPair, error) {
	body, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return nil, fmt.Errorf("api: encoding refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("api: creating refresh request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	c.setCommonHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: POST %s: %w", refreshPath, err)
	}

	return decodeTokenResponse(resp)
}

// Logout deletes both stored tokens. Idempotent; the server holds no
// session state worth revoking from this layer.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("api: clearing credentials: %w", err)
	}

	c.logger.Info("logged out")

	return nil
}

// Me fetches the authenticated user's profile through the pipeline.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.GetJSON(ctx, mePath, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// postMultipart sends fields (and an optional file part) as a multipart
// form to an auth endpoint and decodes the token pair reply.
func (c *Client) postMultipart(ctx context.Context, path string, fields map[string]string, file io.Reader, fileName string) (*credstore.TokenPair, error) {
	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("api: encoding form field %s: %w", name, err)
		}
	}

	if file != nil {
		if fileName == "" {
			fileName = "profile"
		}

		part, err := w.CreateFormFile("profilePicture", fileName)
		if err != nil {
			return nil, fmt.Errorf("api: creating file part: %w", err)
		}

		if _, err := io.Copy(part, file); err != nil {
			return nil, fmt.Errorf("api: encoding profile picture: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("api: finalizing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("api: creating request: %w", err)
	}

	req.Header.Set("Content-Type", w.FormDataContentType())
	c.setCommonHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: POST %s: %w", path, err)
	}

	return decodeTokenResponse(resp)
}

// setCommonHeaders applies the headers every request carries, authenticated
// or not.
func (c *Client) setCommonHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)

	if c.deviceID != "" {
		req.Header.Set("X-Device-ID", c.deviceID)
	}
}

// decodeTokenResponse parses a token pair reply, classifying error statuses
// and rejecting incomplete pairs.
func decodeTokenResponse(resp *http.Response) (*credstore.TokenPair, error) {
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, drainAPIError(resp)
	}

	defer resp.Body.Close()

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("api: decoding token response: %w", err)
	}

	if tr.AccessToken == "" || tr.RefreshToken == "" {
		return nil, fmt.Errorf("api: token response missing %w", credstore.ErrPartialPair)
	}

	return &credstore.TokenPair{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
	}, nil
}
