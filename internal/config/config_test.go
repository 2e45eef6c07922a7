package config

import (
	"testing"
)

func setFullEnv(t *testing.T) {
	t.Setenv(EnvSWConsumerKey, "ck")
	t.Setenv(EnvSWConsumerSecret, "cs")
	t.Setenv(EnvSWAPIKey, "ak")
	t.Setenv(EnvYNABToken, "tok")
	t.Setenv(EnvYNABBudgetName, "Household")
	t.Setenv(EnvYNABAccountName, "Splitwise")
	t.Setenv(EnvMultiUserSecrets, "")
}

func TestLoadSingleUser(t *testing.T) {
	setFullEnv(t)
	t.Setenv(EnvUseUpdatedAt, "true")
	t.Setenv(EnvSyncReverse, "false")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.UseUpdatedAt {
		t.Error("expected UseUpdatedAt")
	}
	if cfg.SyncReverse {
		t.Error("expected SyncReverse false")
	}
	if len(cfg.Users) != 1 {
		t.Fatalf("Users = %d, want 1", len(cfg.Users))
	}
	user := cfg.Users[0]
	if err := user.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if user.SWAPIKey != "ak" || user.YNABBudgetName != "Household" {
		t.Errorf("unexpected credentials: %+v", user)
	}
}

func TestLoadDefaults(t *testing.T) {
	setFullEnv(t)
	t.Setenv(EnvUseUpdatedAt, "")
	t.Setenv(EnvSyncReverse, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UseUpdatedAt {
		t.Error("UseUpdatedAt should default to false")
	}
	if !cfg.SyncReverse {
		t.Error("SyncReverse should default to true")
	}
}

func TestValidateMissing(t *testing.T) {
	c := Credentials{SWConsumerKey: "ck"}
	err := c.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadMultiUser(t *testing.T) {
	setFullEnv(t)
	t.Setenv(EnvMultiUserSecrets, `[
		{"USER_NAME": "alice", "SW_CONSUMER_KEY": "ack", "SW_CONSUMER_SECRET": "acs",
		 "SW_API_KEY": "aak", "YNAB_PERSONAL_ACCESS_TOKEN": "atok", "YNAB_BUDGET_NAME": "Alice Budget"},
		{"SW_CONSUMER_KEY": "no-name-entry"},
		{"user_name": "bob", "sw_consumer_key": "bck", "sw_consumer_secret": "bcs",
		 "sw_api_key": "bak", "ynab_personal_access_token": "btok", "ynab_budget_name": "Bob Budget"}
	]`)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Users) != 2 {
		t.Fatalf("Users = %d, want 2 (nameless entry skipped)", len(cfg.Users))
	}
	if cfg.Users[0].UserName != "alice" || cfg.Users[1].UserName != "bob" {
		t.Errorf("unexpected user order: %+v", cfg.Users)
	}
	if cfg.Users[0].SWAPIKey != "aak" {
		t.Errorf("keys not lower-cased: %+v", cfg.Users[0])
	}
	// The account name is shared process-level config, not per-user.
	if cfg.Users[0].YNABAccountName != "Splitwise" {
		t.Errorf("account name = %q, want env value", cfg.Users[0].YNABAccountName)
	}
	if err := cfg.Users[1].Validate(); err != nil {
		t.Errorf("bob should validate: %v", err)
	}
}

func TestLoadBadMultiUserJSON(t *testing.T) {
	setFullEnv(t)
	t.Setenv(EnvMultiUserSecrets, "{not json")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for malformed multi-user JSON")
	}
}
