package cache

import (
	"crypto/tls"
	"net"
	"sync"

	"untitledone/internal/config"

	"github.com/valkey-io/valkey-go"
)

var (
	clientOnce   sync.Once
	valkeyClient valkey.Client
)

// GetCache returns the process-wide Valkey client backing the project cache,
// the digest queue and the share link rate limiter.
func GetCache() valkey.Client {
	clientOnce.Do(func() {
		client, err := valkey.NewClient(clientOptions(config.GetEnv()))
		if err != nil {
			panic(err)
		}

		valkeyClient = client
	})

	return valkeyClient
}

func clientOptions(env config.EnvVariables) valkey.ClientOption {
	options := valkey.ClientOption{
		InitAddress: []string{net.JoinHostPort(env.ValkeyHost, env.ValkeyPort)},
		Username:    env.ValkeyUsername,
		Password:    env.ValkeyPassword,
		ClientName:  "untitledone",
		// no client-side caching
		DisableCache: true,
	}

	if env.ValkeyIsSsl {
		options.TLSConfig = &tls.Config{ServerName: env.ValkeyHost, MinVersion: tls.VersionTLS12}
	}

	return options
}
