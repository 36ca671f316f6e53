// File: internal/credentials/credentials.go

// Package credentials loads account credentials from the environment.
// Credentials are never persisted by this program and never logged in
// plaintext.
package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"
)

// EnvVar is the environment variable holding the credential map as a JSON
// object of account identifier -> secret.
const EnvVar = "CREDENTIALS"

// Set is one account's login pair. String redacts the secret so a Set can
// be passed to loggers without leaking it.
type Set struct {
	Account string
	Secret  string
}

func (s Set) String() string {
	return fmt.Sprintf("{Account:%s Secret:[redacted]}", s.Account)
}

// Load reads the credential map from the environment, first merging any
// .env file at the given path (missing files are fine; the variable may
// already be exported). Sets are returned in sorted account order so runs
// are reproducible.
func Load(dotenvPath string) ([]Set, error) {
	if dotenvPath != "" {
		// Load, not Overload: explicitly exported variables win.
		if err := godotenv.Load(dotenvPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading %s: %w", dotenvPath, err)
		}
	}

	raw := os.Getenv(EnvVar)
	if raw == "" {
		return nil, fmt.Errorf("environment variable %s is not set", EnvVar)
	}

	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("%s is not a valid JSON object: %w", EnvVar, err)
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("%s contains no credential sets", EnvVar)
	}

	sets := make([]Set, 0, len(m))
	for account, secret := range m {
		if account == "" || secret == "" {
			return nil, fmt.Errorf("%s contains an entry with an empty account or secret", EnvVar)
		}
		sets = append(sets, Set{Account: account, Secret: secret})
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].Account < sets[j].Account })
	return sets, nil
}
