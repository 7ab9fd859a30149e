package config

import (
	"os"
	"path/filepath"
	"testing"
)

// setEnv sets an environment variable, ignoring errors (for test setup)
func setEnv(key, value string) {
	_ = os.Setenv(key, value)
}

// unsetEnv unsets an environment variable, ignoring errors (for test cleanup)
func unsetEnv(key string) {
	_ = os.Unsetenv(key)
}

var envVars = []string{
	"API_PORT", "LOG_LEVEL", "LOG_FORMAT", "DB_PATH",
	"GEMINI_API_KEY", "GEMINI_MODEL", "EMBEDDING_MODEL",
	"QDRANT_URL", "QDRANT_COLLECTION",
	"NEO4J_URI", "NEO4J_USER", "NEO4J_PASSWORD",
	"MCP_ENDPOINT", "MAX_TOOL_ROUNDS", "RETRIEVAL_TOP_K",
}

func TestLoad(t *testing.T) {
	// Save original env vars
	originalEnv := make(map[string]string)
	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
		unsetEnv(key)
	}
	defer func() {
		for key, value := range originalEnv {
			if value != "" {
				setEnv(key, value)
			} else {
				unsetEnv(key)
			}
		}
	}()

	tests := []struct {
		name        string
		setupEnv    func(*testing.T)
		wantErr     bool
		checkConfig func(*Config) bool
	}{
		{
			name: "valid config with required fields only",
			setupEnv: func(t *testing.T) {
				setEnv("GEMINI_API_KEY", "test-key")
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "test.db"))
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.GeminiAPIKey == "test-key" &&
					cfg.GeminiModel == "gemini-2.5-flash" &&
					cfg.EmbeddingModel == "gemini-embedding-001" &&
					cfg.QdrantURL == "http://localhost:6333" &&
					cfg.QdrantCollection == "library_docs" &&
					cfg.APIPort == "9000" &&
					cfg.MaxRounds == 5 &&
					cfg.RetrievalTopK == 5
			},
		},
		{
			name:     "missing GEMINI_API_KEY",
			setupEnv: func(t *testing.T) {},
			wantErr:  true,
		},
		{
			name: "neo4j uri without password",
			setupEnv: func(t *testing.T) {
				setEnv("GEMINI_API_KEY", "test-key")
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "test.db"))
				setEnv("NEO4J_URI", "neo4j://localhost:7687")
			},
			wantErr: true,
		},
		{
			name: "neo4j fully configured",
			setupEnv: func(t *testing.T) {
				setEnv("GEMINI_API_KEY", "test-key")
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "test.db"))
				setEnv("NEO4J_URI", "neo4j://localhost:7687")
				setEnv("NEO4J_PASSWORD", "secret")
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.Neo4jURI == "neo4j://localhost:7687" &&
					cfg.Neo4jUser == "neo4j" &&
					cfg.Neo4jPassword == "secret"
			},
		},
		{
			name: "invalid MAX_TOOL_ROUNDS",
			setupEnv: func(t *testing.T) {
				setEnv("GEMINI_API_KEY", "test-key")
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "test.db"))
				setEnv("MAX_TOOL_ROUNDS", "invalid")
			},
			wantErr: true,
		},
		{
			name: "zero MAX_TOOL_ROUNDS",
			setupEnv: func(t *testing.T) {
				setEnv("GEMINI_API_KEY", "test-key")
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "test.db"))
				setEnv("MAX_TOOL_ROUNDS", "0")
			},
			wantErr: true,
		},
		{
			name: "negative RETRIEVAL_TOP_K",
			setupEnv: func(t *testing.T) {
				setEnv("GEMINI_API_KEY", "test-key")
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "test.db"))
				setEnv("RETRIEVAL_TOP_K", "-1")
			},
			wantErr: true,
		},
		{
			name: "custom optional values",
			setupEnv: func(t *testing.T) {
				setEnv("GEMINI_API_KEY", "test-key")
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "custom", "db.db"))
				setEnv("GEMINI_MODEL", "custom-model")
				setEnv("MAX_TOOL_ROUNDS", "3")
				setEnv("MCP_ENDPOINT", "http://localhost:8100/mcp")
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.GeminiModel == "custom-model" &&
					cfg.MaxRounds == 3 &&
					cfg.MCPEndpoint == "http://localhost:8100/mcp" &&
					filepath.Base(cfg.DBPath) == "db.db"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Change to a temp directory without .env file to avoid loading it
			tmpDir := t.TempDir()
			originalWd, _ := os.Getwd()
			_ = os.Chdir(tmpDir)
			defer func() {
				_ = os.Chdir(originalWd)
			}()

			for _, key := range envVars {
				unsetEnv(key)
			}

			tt.setupEnv(t)

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error: %v", err)
				return
			}

			if cfg == nil {
				t.Fatal("Load() returned nil config")
			}

			if tt.checkConfig != nil && !tt.checkConfig(cfg) {
				t.Errorf("Load() config validation failed")
			}
		})
	}
}

func TestLoad_CreatesDataDirectory(t *testing.T) {
	originalEnv := make(map[string]string)
	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
		unsetEnv(key)
	}
	defer func() {
		for key, value := range originalEnv {
			if value != "" {
				setEnv(key, value)
			} else {
				unsetEnv(key)
			}
		}
	}()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "db.db")

	setEnv("GEMINI_API_KEY", "test-key")
	setEnv("DB_PATH", dbPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	dir := filepath.Dir(dbPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Errorf("Load() should create data directory: %v", err)
	}

	if cfg.DBPath != dbPath {
		t.Errorf("Load() DBPath = %v, want %v", cfg.DBPath, dbPath)
	}
}

func TestGetEnv(t *testing.T) {
	originalValue := os.Getenv("TEST_ENV_VAR")
	defer func() {
		if originalValue != "" {
			setEnv("TEST_ENV_VAR", originalValue)
		} else {
			unsetEnv("TEST_ENV_VAR")
		}
	}()

	tests := []struct {
		name         string
		setupEnv     func()
		key          string
		defaultValue string
		want         string
	}{
		{
			name: "env var set",
			setupEnv: func() {
				setEnv("TEST_ENV_VAR", "set-value")
			},
			key:          "TEST_ENV_VAR",
			defaultValue: "default",
			want:         "set-value",
		},
		{
			name: "env var not set",
			setupEnv: func() {
				unsetEnv("TEST_ENV_VAR")
			},
			key:          "TEST_ENV_VAR",
			defaultValue: "default",
			want:         "default",
		},
		{
			name: "empty env var uses default",
			setupEnv: func() {
				setEnv("TEST_ENV_VAR", "")
			},
			key:          "TEST_ENV_VAR",
			defaultValue: "default",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupEnv()
			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}
