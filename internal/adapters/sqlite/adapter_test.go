package sqlite

import (
	"context"
	"errors"
	"hash/crc32"
	"testing"

	"github.com/ewilliams-labs/spotifind/internal/core/ports"
)

func TestAdapter_AccessSecretVersion(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, a *Adapter)
		version  string
		wantErr  error
		wantData string
	}{
		{
			name:    "not found",
			setup:   func(t *testing.T, a *Adapter) {},
			version: "latest",
			wantErr: ErrNotFound,
		},
		{
			name: "latest resolves to highest version",
			setup: func(t *testing.T, a *Adapter) {
				mustAdd(t, a, "old-secret")
				mustAdd(t, a, "new-secret")
			},
			version:  "latest",
			wantData: "new-secret",
		},
		{
			name: "explicit version",
			setup: func(t *testing.T, a *Adapter) {
				mustAdd(t, a, "old-secret")
				mustAdd(t, a, "new-secret")
			},
			version:  "1",
			wantData: "old-secret",
		},
		{
			name: "unknown explicit version",
			setup: func(t *testing.T, a *Adapter) {
				mustAdd(t, a, "only")
			},
			version: "9",
			wantErr: ErrNotFound,
		},
		{
			name:    "non numeric version",
			setup:   func(t *testing.T, a *Adapter) {},
			version: "first",
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAdapter(":memory:")
			if err != nil {
				t.Fatalf("new adapter: %v", err)
			}
			defer a.Close()

			tt.setup(t, a)
			got, err := a.AccessSecretVersion(context.Background(), ports.SecretVersionName{
				Project: "spotifind", Secret: "spotify-client-secret", Version: tt.version,
			})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got.Data) != tt.wantData {
				t.Errorf("data: got %q, want %q", got.Data, tt.wantData)
			}
			want := crc32.Checksum([]byte(tt.wantData), crc32.MakeTable(crc32.Castagnoli))
			if got.DataCRC32C != want {
				t.Errorf("crc32c: got %d, want %d", got.DataCRC32C, want)
			}
		})
	}
}

func TestAdapter_AddSecretVersion_Numbering(t *testing.T) {
	a, err := NewAdapter(":memory:")
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	defer a.Close()

	for i, want := range []string{"1", "2", "3"} {
		got, err := a.AddSecretVersion(context.Background(), "spotifind", "spotify-client-secret", []byte{byte(i)})
		if err != nil {
			t.Fatalf("add version: %v", err)
		}
		if got != want {
			t.Errorf("version: got %s, want %s", got, want)
		}
	}

	// Versions are numbered per secret.
	got, err := a.AddSecretVersion(context.Background(), "spotifind", "other", []byte("x"))
	if err != nil {
		t.Fatalf("add version: %v", err)
	}
	if got != "1" {
		t.Errorf("version: got %s, want 1", got)
	}
}

func mustAdd(t *testing.T, a *Adapter, data string) {
	t.Helper()
	if _, err := a.AddSecretVersion(context.Background(), "spotifind", "spotify-client-secret", []byte(data)); err != nil {
		t.Fatalf("add secret version: %v", err)
	}
}
