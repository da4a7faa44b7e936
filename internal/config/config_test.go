package config

import (
	"os"
	"path/filepath"
	"testing"

	"rentdesk/internal/models"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("TEST_SHOP_NAME", "Demo Rental Shop")

	yamlContent := `
shop:
  id: "demo-shop"
  name: "${TEST_SHOP_NAME}"
database:
  path: "test.db"
items:
  - id: 1
    name: "Sony A7SIII"
    quantity: 2
    daily_rate_cents: 15000
    deposit_cents: 50000
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Shop.ID != "demo-shop" {
		t.Errorf("expected shop id demo-shop, got %s", cfg.Shop.ID)
	}
	if cfg.Shop.Name != "Demo Rental Shop" {
		t.Errorf("expected env-expanded shop name, got %s", cfg.Shop.Name)
	}
	if len(cfg.Items) != 1 || cfg.Items[0].ID != 1 || cfg.Items[0].Quantity != 2 {
		t.Errorf("expected 1 item with ID 1 and quantity 2")
	}
}

func TestLoadConfigMissingEnvFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
shop:
  id: "demo-shop"
  name: "Demo"
database:
  path: "test.db"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	// No .env in the working directory; loading must still succeed.
	if _, err := Load(configPath); err != nil {
		t.Fatalf("expected load without .env to succeed, got %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Shop:     ShopConfig{ID: "demo-shop", Name: "Demo"},
				Database: DatabaseConfig{Path: "path"},
				Items:    []models.Item{{ID: 1, Name: "Item 1", Quantity: 1}},
			},
			wantErr: false,
		},
		{
			name: "missing shop id",
			cfg: Config{
				Shop:     ShopConfig{Name: "Demo"},
				Database: DatabaseConfig{Path: "path"},
			},
			wantErr: true,
		},
		{
			name: "missing database path",
			cfg: Config{
				Shop: ShopConfig{ID: "demo-shop", Name: "Demo"},
			},
			wantErr: true,
		},
		{
			name: "duplicate item id",
			cfg: Config{
				Shop:     ShopConfig{ID: "demo-shop", Name: "Demo"},
				Database: DatabaseConfig{Path: "path"},
				Items: []models.Item{
					{ID: 1, Name: "Item 1"},
					{ID: 1, Name: "Item 2"},
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.API.Port != 8080 {
		t.Errorf("expected default API port 8080, got %d", cfg.API.Port)
	}
	if cfg.API.Auth.HeaderAPIKey != "x-api-key" {
		t.Errorf("expected default api key header, got %s", cfg.API.Auth.HeaderAPIKey)
	}
	if cfg.Shop.Timezone != "UTC" {
		t.Errorf("expected default timezone UTC, got %s", cfg.Shop.Timezone)
	}
	if cfg.Booking.CacheTTLSeconds != 30 {
		t.Errorf("expected default cache ttl 30s, got %d", cfg.Booking.CacheTTLSeconds)
	}
}

func TestValidateItems(t *testing.T) {
	tests := []struct {
		name    string
		items   []models.Item
		wantErr bool
	}{
		{
			name: "Valid items",
			items: []models.Item{
				{ID: 1, Name: "Item 1", Quantity: 2},
				{ID: 2, Name: "Item 2", Quantity: 0},
			},
			wantErr: false,
		},
		{
			name: "Duplicate ID",
			items: []models.Item{
				{ID: 1, Name: "Item 1"},
				{ID: 1, Name: "Item 2"},
			},
			wantErr: true,
		},
		{
			name: "ID 0",
			items: []models.Item{
				{ID: 0, Name: "Item 1"},
			},
			wantErr: true,
		},
		{
			name: "Negative quantity",
			items: []models.Item{
				{ID: 1, Name: "Item 1", Quantity: -1},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItems(tt.items)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateItems() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
