package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.ServerPort)
	}
	if cfg.ConversationTimeout != DefaultConversationTimeout {
		t.Errorf("expected default timeout %s, got %s", DefaultConversationTimeout, cfg.ConversationTimeout)
	}
	if cfg.MongoDB != "conversations" {
		t.Errorf("expected default mongo database name, got %s", cfg.MongoDB)
	}
}

func TestLoadConfigParsesTimeout(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("CONVERSATION_TIMEOUT", "90m")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ConversationTimeout != 90*time.Minute {
		t.Errorf("expected 90m timeout, got %s", cfg.ConversationTimeout)
	}
}

func TestLoadConfigUnparsableTimeoutFallsBack(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("CONVERSATION_TIMEOUT", "three hours")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ConversationTimeout != DefaultConversationTimeout {
		t.Errorf("expected fallback to default timeout, got %s", cfg.ConversationTimeout)
	}
}

func TestValidateRequiresMongoURL(t *testing.T) {
	cfg := &Config{StoreBackend: BackendMongo, ConversationTimeout: time.Hour}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing MONGO_URL")
	}
	if !strings.Contains(err.Error(), "MONGO_URL") {
		t.Errorf("expected MONGO_URL in error, got %v", err)
	}
}

func TestValidateRequiresPostgresSettings(t *testing.T) {
	cfg := &Config{StoreBackend: BackendPostgres, ConversationTimeout: time.Hour}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing postgres settings")
	}
	for _, key := range []string{"DB_HOST", "DB_USER", "DB_NAME"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("expected %s in error, got %v", key, err)
		}
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := &Config{StoreBackend: "dynamo", ConversationTimeout: time.Hour}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestValidateRejectsNonPositiveTimeout(t *testing.T) {
	cfg := &Config{StoreBackend: BackendMemory}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero timeout")
	}
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{
		DBHost: "localhost", DBPort: "5432", DBUser: "app",
		DBPassword: "secret", DBName: "conversations", DBSSLMode: "disable",
	}

	dsn := cfg.GetDSN()
	want := "host=localhost port=5432 user=app password=secret dbname=conversations sslmode=disable"
	if dsn != want {
		t.Errorf("expected %q, got %q", want, dsn)
	}
}
