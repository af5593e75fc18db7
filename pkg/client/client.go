// Package client provides OAuth2 client setup for the Google Sheets export.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// TokenFile is where the cached OAuth token lives.
const TokenFile = "data/token.json"

// New creates an authenticated HTTP client from a client secret file. On
// first use it runs a console auth flow and caches the token.
func New(ctx context.Context, secretFilePath string, scope ...string) (*http.Client, error) {
	b, err := os.ReadFile(secretFilePath)
	if err != nil {
		return nil, fmt.Errorf("reading client secret file: %w", err)
	}
	return NewFromJSON(ctx, b, scope...)
}

// NewFromJSON is New for in-memory client secret JSON.
func NewFromJSON(ctx context.Context, secretJSON []byte, scope ...string) (*http.Client, error) {
	config, err := google.ConfigFromJSON(secretJSON, scope...)
	if err != nil {
		return nil, fmt.Errorf("parsing client secret: %w", err)
	}

	tok, err := tokenFromFile(TokenFile)
	if err != nil {
		slog.Info("no cached token found, starting auth flow")
		tok, err = tokenFromConsole(ctx, config)
		if err != nil {
			return nil, fmt.Errorf("authorizing: %w", err)
		}
		if err := saveToken(TokenFile, tok); err != nil {
			slog.Error("failed to cache token", "error", err)
		}
	}

	return config.Client(ctx, tok), nil
}

// tokenFromConsole prints the auth URL and reads the authorization code
// from stdin. Good enough for a tool that runs in a terminal.
func tokenFromConsole(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	config.RedirectURL = "urn:ietf:wg:oauth:2.0:oob"
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)

	fmt.Printf("Visit this URL, authorize the app, then paste the code here:\n%s\n\ncode: ", authURL)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return nil, fmt.Errorf("reading authorization code: %w", err)
	}

	tok, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return tok, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating token file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	return nil
}
