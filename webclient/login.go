package webclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

type userStatusResponse struct {
	Body struct {
		UserStatus struct {
			IsLoggedIn bool `json:"is_logged_in"`
		} `json:"user_status"`
	} `json:"body"`
}

// LoginPage fetches the login page body. The one-time login token is
// embedded in there, extracting it is the caller's job.
func (c *Client) LoginPage(ctx context.Context) ([]byte, error) {
	reqUrl := c.accountsUrl.JoinPath("/login")
	reqUrl.RawQuery = url.Values{"lang": {"en"}}.Encode()

	body, err := c.get(ctx, reqUrl)
	if err != nil {
		return nil, fmt.Errorf("failed requesting login page: %w", err)
	}

	return body, nil
}

// SubmitLogin posts the credentials together with the one-time token to the
// login endpoint. A nil error only means the request was delivered, whether
// the login was accepted must be checked with IsLoggedIn.
func (c *Client) SubmitLogin(ctx context.Context, username, password, postKey string) error {
	reqUrl := c.accountsUrl.JoinPath("/api/login")
	reqUrl.RawQuery = url.Values{"lang": {"en"}}.Encode()

	form := url.Values{
		"pixiv_id": {username},
		"password": {password},
		"post_key": {postKey},
	}

	if _, err := c.postForm(ctx, reqUrl, form); err != nil {
		return fmt.Errorf("failed submitting login request: %w", err)
	}

	return nil
}

// IsLoggedIn asks the server whether the current session cookies belong to a
// logged in account.
func (c *Client) IsLoggedIn(ctx context.Context) (bool, error) {
	body, err := c.get(ctx, c.wwwUrl.JoinPath("/touch/ajax/user/self/status"))
	if err != nil {
		return false, fmt.Errorf("failed requesting user status: %w", err)
	}

	var status userStatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return false, fmt.Errorf("failed decoding user status: %w", err)
	}

	return status.Body.UserStatus.IsLoggedIn, nil
}
