package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStore_Defaults(t *testing.T) {
	store := NewStore()

	got := store.GetProxyConfig()
	want := ProxyConfig{
		Behavior:     BehaviorAuto,
		ProxyBaseURL: DefaultProxyBaseURL,
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetProxyConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_Update(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProxyConfig
		want    ProxyConfig
		wantErr bool
	}{
		{
			name: "ValidUpdate",
			cfg: ProxyConfig{
				Behavior:     BehaviorNever,
				ProxyBaseURL: "https://proxy.internal/fetch",
			},
			want: ProxyConfig{
				Behavior:     BehaviorNever,
				ProxyBaseURL: "https://proxy.internal/fetch",
			},
		},
		{
			name: "EmptyBaseURLFallsBackToDefault",
			cfg:  ProxyConfig{Behavior: BehaviorAlways},
			want: ProxyConfig{
				Behavior:     BehaviorAlways,
				ProxyBaseURL: DefaultProxyBaseURL,
			},
		},
		{
			name:    "InvalidBehaviorRejected",
			cfg:     ProxyConfig{Behavior: "sometimes"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore()
			err := store.Update(tt.cfg)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Update() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, store.GetProxyConfig()); diff != "" {
				t.Errorf("GetProxyConfig() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewStoreFromViper(t *testing.T) {
	v := NewViper()
	v.Set("proxy.behavior", "NEVER")
	v.Set("proxy.s3_endpoint", "minio.local:9000")

	store, err := NewStoreFromViper(v)
	if err != nil {
		t.Fatalf("NewStoreFromViper() error = %v", err)
	}

	got := store.GetProxyConfig()
	if got.Behavior != BehaviorNever {
		t.Errorf("Behavior = %q, want %q", got.Behavior, BehaviorNever)
	}
	if got.CustomS3Endpoint != "minio.local:9000" {
		t.Errorf("CustomS3Endpoint = %q, want %q", got.CustomS3Endpoint, "minio.local:9000")
	}
	if got.ProxyBaseURL != DefaultProxyBaseURL {
		t.Errorf("ProxyBaseURL = %q, want default %q", got.ProxyBaseURL, DefaultProxyBaseURL)
	}
}

func TestNewStoreFromViper_InvalidBehavior(t *testing.T) {
	v := NewViper()
	v.Set("proxy.behavior", "maybe")

	if _, err := NewStoreFromViper(v); err == nil {
		t.Error("NewStoreFromViper() expected error for invalid behavior, got nil")
	}
}
