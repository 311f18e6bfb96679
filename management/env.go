package management

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of the environment variables read by LoadEnv.
const EnvPrefix = "DOOFINDER"

// Env holds the client defaults read from the environment.
type Env struct {
	Token          string `envconfig:"TOKEN"`
	Zone           string `envconfig:"ZONE"`
	ManagementHost string `envconfig:"MANAGEMENT_HOST"`
}

// LoadEnv reads DOOFINDER_TOKEN, DOOFINDER_ZONE and DOOFINDER_MANAGEMENT_HOST.
func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return Env{}, fmt.Errorf("failed to read environment: %w", err)
	}
	return env, nil
}

// HostForZone returns the management API host serving zone.
func HostForZone(zone string) string {
	return fmt.Sprintf("https://%s-api.doofinder.com", zone)
}
