package ports

import (
	"context"
	"fmt"
)

// SecretVersionName addresses one version of a stored secret.
type SecretVersionName struct {
	Project string
	Secret  string
	Version string
}

// String renders the resource name used by Secret Manager.
func (n SecretVersionName) String() string {
	return fmt.Sprintf("projects/%s/secrets/%s/versions/%s", n.Project, n.Secret, n.Version)
}

// SecretPayload is the raw secret plus the CRC32C (Castagnoli) checksum the
// store reported for it. Callers verify the checksum themselves.
type SecretPayload struct {
	Data       []byte
	DataCRC32C uint32
}

// SecretStore returns a specific version of a secret.
type SecretStore interface {
	AccessSecretVersion(ctx context.Context, name SecretVersionName) (SecretPayload, error)
}
