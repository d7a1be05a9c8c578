package server

import "testing"

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Host != "127.0.0.1" {
		t.Errorf("expected loopback host, got %q", cfg.Host)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.MaxBodySize != "512MB" {
		t.Errorf("expected 512MB body limit, got %q", cfg.MaxBodySize)
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		t.Error("expected CORS origins populated")
	}
}

func TestConfigApplyDefaults_KeepsExplicit(t *testing.T) {
	cfg := Config{Host: "0.0.0.0", Port: 9090, MaxBodySize: "1GB"}
	cfg.ApplyDefaults()

	if cfg.Host != "0.0.0.0" || cfg.Port != 9090 || cfg.MaxBodySize != "1GB" {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"port too large", func(c *Config) { c.Port = 70000 }, true},
		{"negative port", func(c *Config) { c.Port = -1 }, true},
		{"negative read timeout", func(c *Config) { c.ReadTimeout = -1 }, true},
		{"negative write timeout", func(c *Config) { c.WriteTimeout = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{}
			cfg.ApplyDefaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
