package valuesource

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/consul/api"

	"github.com/dzonerzy/snapargv/snap"
)

// ConsulConfig contains configuration options for the Consul source
type ConsulConfig struct {
	// Address of the Consul server (default: "127.0.0.1:8500")
	Address string

	// Scheme is "http" or "https" (default: "http")
	Scheme string

	// Token for Consul ACL authentication (optional)
	Token string

	// Datacenter to use (optional)
	Datacenter string

	// Prefix all keys live under, e.g. "config/myapp"
	Prefix string
}

// ConsulSource reads option values from the Consul KV store. The key for
// --region on "deploy" is "<prefix>/deploy/region". A value that is a JSON
// array gives one invocation per element, like file sources.
type ConsulSource struct {
	kv     *api.KV
	prefix string
}

// Consul creates a Consul-backed value source.
func Consul(config ConsulConfig) (*ConsulSource, error) {
	clientConfig := api.DefaultConfig()
	if config.Address != "" {
		clientConfig.Address = config.Address
	}
	if config.Scheme != "" {
		clientConfig.Scheme = config.Scheme
	}
	if config.Token != "" {
		clientConfig.Token = config.Token
	}
	if config.Datacenter != "" {
		clientConfig.Datacenter = config.Datacenter
	}

	client, err := api.NewClient(clientConfig)
	if err != nil {
		return nil, err
	}
	return &ConsulSource{kv: client.KV(), prefix: strings.Trim(config.Prefix, "/")}, nil
}

func (s *ConsulSource) key(keys []string) string {
	key := strings.Join(keys, "/")
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

// GetValues implements snap.ValueSource.
func (s *ConsulSource) GetValues(ctx *snap.Context, flag *snap.Flag) ([]snap.Invocation, error) {
	key := s.key(snap.KeyPath(ctx, flag))
	q := (&api.QueryOptions{}).WithContext(ctx.Context())
	pair, _, err := s.kv.Get(key, q)
	if err != nil {
		return nil, fmt.Errorf("consul: read %s: %w", key, err)
	}
	if pair == nil {
		return nil, nil
	}

	raw := strings.TrimSpace(string(pair.Value))
	if strings.HasPrefix(raw, "[") {
		var list []any
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			return invocations(flag, list), nil
		}
	}
	return []snap.Invocation{snap.ValueInvocation(flag, string(pair.Value))}, nil
}
