// Package config loads credentials and sync options from the process
// environment, with optional .env and creds.yaml files for local runs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Env keys. Matching the deployment's lowercase convention.
const (
	EnvSWConsumerKey    = "sw_consumer_key"
	EnvSWConsumerSecret = "sw_consumer_secret"
	EnvSWAPIKey         = "sw_api_key"
	EnvYNABToken        = "ynab_personal_access_token"
	EnvYNABBudgetName   = "ynab_budget_name"
	EnvYNABAccountName  = "ynab_account_name"
	EnvUseUpdatedAt     = "sync_update_date"
	EnvSyncReverse      = "sync_ynab_to_sw"
	EnvMultiUserSecrets = "multi_user_secrets_json"
)

// Credentials is one user's credential set for both services.
type Credentials struct {
	UserName         string
	SWConsumerKey    string
	SWConsumerSecret string
	SWAPIKey         string
	YNABToken        string
	YNABBudgetName   string
	YNABAccountName  string
}

// Validate fails fast when a required credential is missing, before any
// network call is made for this user.
func (c Credentials) Validate() error {
	var missing []string
	for _, field := range []struct {
		key, value string
	}{
		{EnvSWConsumerKey, c.SWConsumerKey},
		{EnvSWConsumerSecret, c.SWConsumerSecret},
		{EnvSWAPIKey, c.SWAPIKey},
		{EnvYNABToken, c.YNABToken},
		{EnvYNABBudgetName, c.YNABBudgetName},
		{EnvYNABAccountName, c.YNABAccountName},
	} {
		if field.value == "" {
			missing = append(missing, field.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Config is the full sync configuration: options plus one credential set per
// user.
type Config struct {
	// UseUpdatedAt selects the record-modification-time window for the
	// expense fetch instead of the expense-date window.
	UseUpdatedAt bool
	// SyncReverse also runs the ledger-to-source direction after the forward
	// pass.
	SyncReverse bool
	Users       []Credentials
}

// Load reads configuration from the environment. An optional .env file and,
// outside CI, an optional creds.yaml are merged into the environment first.
// Credential validation is per user and left to the caller so one bad user
// does not block the others.
func Load(credsPath string) (*Config, error) {
	// .env is a local convenience; absence is not an error.
	_ = godotenv.Load()

	if os.Getenv("GITHUB_ACTIONS") == "" && credsPath != "" {
		if err := mergeYAML(credsPath); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		UseUpdatedAt: boolEnv(EnvUseUpdatedAt, false),
		SyncReverse:  boolEnv(EnvSyncReverse, true),
	}

	users, err := multiUserCredentials()
	if err != nil {
		return nil, err
	}
	if len(users) > 0 {
		cfg.Users = users
	} else {
		cfg.Users = []Credentials{credentialsFromEnv()}
	}
	return cfg, nil
}

func mergeYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	secrets := map[string]string{}
	if err := yaml.Unmarshal(data, &secrets); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	for key, value := range secrets {
		os.Setenv(key, value)
	}
	return nil
}

func boolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return strings.ToLower(v) == "true"
}

func credentialsFromEnv() Credentials {
	return Credentials{
		SWConsumerKey:    os.Getenv(EnvSWConsumerKey),
		SWConsumerSecret: os.Getenv(EnvSWConsumerSecret),
		SWAPIKey:         os.Getenv(EnvSWAPIKey),
		YNABToken:        os.Getenv(EnvYNABToken),
		YNABBudgetName:   os.Getenv(EnvYNABBudgetName),
		YNABAccountName:  os.Getenv(EnvYNABAccountName),
	}
}

// multiUserCredentials parses the multi-tenant JSON array. Keys are
// case-insensitive; entries without a user_name are skipped. The YNAB
// account name and the option booleans always come from the process
// environment, shared across users.
func multiUserCredentials() ([]Credentials, error) {
	raw := os.Getenv(EnvMultiUserSecrets)
	if raw == "" {
		return nil, nil
	}
	var entries []map[string]string
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", EnvMultiUserSecrets, err)
	}

	var users []Credentials
	for _, entry := range entries {
		lowered := make(map[string]string, len(entry))
		for key, value := range entry {
			lowered[strings.ToLower(key)] = value
		}
		if lowered["user_name"] == "" {
			continue
		}
		users = append(users, Credentials{
			UserName:         lowered["user_name"],
			SWConsumerKey:    lowered[EnvSWConsumerKey],
			SWConsumerSecret: lowered[EnvSWConsumerSecret],
			SWAPIKey:         lowered[EnvSWAPIKey],
			YNABToken:        lowered[EnvYNABToken],
			YNABBudgetName:   lowered[EnvYNABBudgetName],
			YNABAccountName:  os.Getenv(EnvYNABAccountName),
		})
	}
	return users, nil
}
