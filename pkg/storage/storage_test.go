package storage_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/JaimeStill/clientes/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func TestNewReturnsSystem(t *testing.T) {
	cfg := &storage.Config{ContainerName: "icons", ConnectionString: azuriteConnString}

	sys, err := storage.New(cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sys == nil {
		t.Fatal("New() returned nil system")
	}
}

func TestNewInvalidConnectionString(t *testing.T) {
	cfg := &storage.Config{ContainerName: "icons", ConnectionString: "not-a-connection-string"}

	if _, err := storage.New(cfg, slog.Default()); err == nil {
		t.Fatal("expected error for invalid connection string, got nil")
	}
}

func TestURLUsesAccountEndpoint(t *testing.T) {
	cfg := &storage.Config{ContainerName: "icons", ConnectionString: azuriteConnString}
	sys, err := storage.New(cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got := sys.URL("123-abc.png")
	if !strings.HasPrefix(got, "http://127.0.0.1:10000/devstoreaccount1/icons/") {
		t.Errorf("URL() = %q, want account endpoint and container prefix", got)
	}
	if !strings.HasSuffix(got, "/123-abc.png") {
		t.Errorf("URL() = %q, want blob name suffix", got)
	}
}

func TestURLUsesPublicURL(t *testing.T) {
	cfg := &storage.Config{
		ContainerName:    "icons",
		ConnectionString: azuriteConnString,
		PublicURL:        "https://cdn.example.com/icons",
	}
	sys, err := storage.New(cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got, want := sys.URL("a.png"), "https://cdn.example.com/icons/a.png"; got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}

func TestKeyValidationShortCircuits(t *testing.T) {
	cfg := &storage.Config{ContainerName: "icons", ConnectionString: azuriteConnString}
	sys, err := storage.New(cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()

	if err := sys.Upload(ctx, "", strings.NewReader("x"), "image/png"); !errors.Is(err, storage.ErrEmptyKey) {
		t.Errorf("Upload(\"\") error = %v, want ErrEmptyKey", err)
	}
	if err := sys.Delete(ctx, "../escape"); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("Delete(\"../escape\") error = %v, want ErrInvalidKey", err)
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key  string
		want error
	}{
		{"", storage.ErrEmptyKey},
		{"icons/../x", storage.ErrInvalidKey},
		{"icons/123.png", nil},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := storage.ValidateKey(tt.key); !errors.Is(got, tt.want) {
				t.Errorf("ValidateKey(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestConfigFinalizeDefaults(t *testing.T) {
	cfg := storage.Config{ConnectionString: azuriteConnString}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.ContainerName != "icons" {
		t.Errorf("ContainerName = %q, want icons", cfg.ContainerName)
	}
	if !cfg.Public() {
		t.Error("Public() = false, want true by default")
	}
}

func TestConfigFinalizeEnv(t *testing.T) {
	t.Setenv("TEST_STORAGE_CONN", azuriteConnString)
	t.Setenv("TEST_STORAGE_PUBLIC", "false")
	t.Setenv("TEST_STORAGE_URL", "https://cdn.example.com/")

	cfg := storage.Config{}
	err := cfg.Finalize(&storage.Env{
		ConnectionString: "TEST_STORAGE_CONN",
		PublicAccess:     "TEST_STORAGE_PUBLIC",
		PublicURL:        "TEST_STORAGE_URL",
	})
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Public() {
		t.Error("Public() = true, want false from env")
	}
	if cfg.PublicURL != "https://cdn.example.com" {
		t.Errorf("PublicURL = %q, want trailing slash trimmed", cfg.PublicURL)
	}
}

func TestConfigFinalizeRequiresConnectionString(t *testing.T) {
	cfg := storage.Config{}
	err := cfg.Finalize(nil)
	if err == nil || !strings.Contains(err.Error(), "connection_string required") {
		t.Errorf("Finalize() error = %v, want connection_string required", err)
	}
}

func TestConfigMerge(t *testing.T) {
	public := false
	base := storage.Config{ContainerName: "icons", ConnectionString: "a"}
	base.Merge(&storage.Config{ConnectionString: "b", PublicAccess: &public})

	if base.ContainerName != "icons" {
		t.Errorf("ContainerName = %q, want unchanged", base.ContainerName)
	}
	if base.ConnectionString != "b" {
		t.Errorf("ConnectionString = %q, want b", base.ConnectionString)
	}
	if base.Public() {
		t.Error("Public() = true, want false after merge")
	}
}
