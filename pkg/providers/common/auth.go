package common

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

// OAuthConfig describes a client-credentials grant used to authenticate provider calls
// against gateways that sit in front of the model API.
type OAuthConfig struct {
	ClientID        string   `yaml:"client_id" toml:"client_id"`
	ClientSecretEnv string   `yaml:"client_secret_env" toml:"client_secret_env"`
	TokenURL        string   `yaml:"token_url" toml:"token_url"`
	Scopes          []string `yaml:"scopes" toml:"scopes"`
}

// Enabled reports whether the config carries enough to request a token.
func (c *OAuthConfig) Enabled() bool {
	return c != nil && c.ClientID != "" && c.TokenURL != ""
}

// NewHTTPClient returns the HTTP client provider SDKs should use. With OAuth configured
// the client attaches and refreshes bearer tokens automatically; otherwise a plain
// client with the given timeout is returned.
func NewHTTPClient(ctx context.Context, oauth *OAuthConfig, timeout time.Duration) (*http.Client, error) {
	if !oauth.Enabled() {
		return &http.Client{Timeout: timeout}, nil
	}

	secret := ""
	if oauth.ClientSecretEnv != "" {
		secret = os.Getenv(oauth.ClientSecretEnv)
		if secret == "" {
			return nil, fmt.Errorf("oauth client secret env %s is empty", oauth.ClientSecretEnv)
		}
	}

	cfg := clientcredentials.Config{
		ClientID:     oauth.ClientID,
		ClientSecret: secret,
		TokenURL:     oauth.TokenURL,
		Scopes:       oauth.Scopes,
	}

	client := cfg.Client(ctx)
	client.Timeout = timeout
	return client, nil
}
