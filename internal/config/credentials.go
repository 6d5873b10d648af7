package config

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	csvAccessKeyColumn = "Access key ID"
	csvSecretKeyColumn = "Secret access key"
)

// ErrNoCredentials indicates neither a credentials file nor environment keys were found.
var ErrNoCredentials = errors.New("no AWS credentials configured")

// Credentials is an AWS access key pair.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	Source          string
}

// LoadCredentials reads mturk.credentials when set, otherwise falls back to
// AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY.
func (c *Config) LoadCredentials() (Credentials, error) {
	if c.MTurk.Credentials != "" {
		file, err := os.Open(c.MTurk.Credentials)
		if err != nil {
			return Credentials{}, fmt.Errorf("mturk.credentials: %w", err)
		}
		defer file.Close()
		creds, err := ParseCredentialsCSV(file)
		if err != nil {
			return Credentials{}, fmt.Errorf("mturk.credentials %s: %w", c.MTurk.Credentials, err)
		}
		creds.Source = c.MTurk.Credentials
		return creds, nil
	}

	key := strings.TrimSpace(os.Getenv("AWS_ACCESS_KEY_ID"))
	secret := strings.TrimSpace(os.Getenv("AWS_SECRET_ACCESS_KEY"))
	if key == "" || secret == "" {
		return Credentials{}, ErrNoCredentials
	}
	return Credentials{AccessKeyID: key, SecretAccessKey: secret, Source: "environment"}, nil
}

// ParseCredentialsCSV reads the first data row of an AWS console access key export.
func ParseCredentialsCSV(r io.Reader) (Credentials, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		return Credentials{}, fmt.Errorf("read header: %w", err)
	}
	keyIdx, secretIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")) {
		case csvAccessKeyColumn:
			keyIdx = i
		case csvSecretKeyColumn:
			secretIdx = i
		}
	}
	if keyIdx < 0 || secretIdx < 0 {
		return Credentials{}, fmt.Errorf("missing %q or %q column", csvAccessKeyColumn, csvSecretKeyColumn)
	}
	row, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Credentials{}, errors.New("no credential rows")
		}
		return Credentials{}, fmt.Errorf("read row: %w", err)
	}
	if keyIdx >= len(row) || secretIdx >= len(row) {
		return Credentials{}, errors.New("credential row is too short")
	}
	creds := Credentials{
		AccessKeyID:     strings.TrimSpace(row[keyIdx]),
		SecretAccessKey: strings.TrimSpace(row[secretIdx]),
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return Credentials{}, errors.New("empty access key or secret")
	}
	return creds, nil
}
