package valuesource

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dzonerzy/snapargv/snap"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// newApp builds a root with --verbose and a deploy subcommand carrying
// --region, --tags and --replicas.
func newApp(vs snap.ValueSource) *snap.App {
	app := snap.New("tool", "test tool").
		ValueSource(vs).
		EnvReader(snap.MapEnvReader(nil))
	app.BoolFlag("verbose", "verbose output")
	deploy := app.Command("deploy", "deploy things")
	deploy.StringFlag("region", "target region").Default("us-east-1")
	deploy.StringSliceFlag("tags", "tags")
	deploy.IntFlag("replicas", "replica count")
	return app
}

func parseLeaf(t *testing.T, app *snap.App, args ...string) *snap.Context {
	t.Helper()
	root, err := app.Parse(args)
	require.NoError(t, err)
	return root.Leaf()
}

func TestJSONSource(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"verbose": true,
		"deploy": {"region": "eu-west-1", "tags": ["a", "b"], "replicas": 3}
	}`)
	app := newApp(JSON(path))
	leaf := parseLeaf(t, app, "deploy")

	region, ok := leaf.String("region")
	require.True(t, ok)
	assert.Equal(t, "eu-west-1", region)
	assert.Equal(t, snap.SourceValueSource, leaf.Source("region"))

	tags, _ := leaf.StringSlice("tags")
	assert.Equal(t, []string{"a", "b"}, tags)

	replicas, _ := leaf.Int("replicas")
	assert.Equal(t, 3, replicas)

	verbose, _ := leaf.Root().Bool("verbose")
	assert.True(t, verbose)
}

func TestJSONSourceDottedKey(t *testing.T) {
	path := writeFile(t, "config.json", `{"deploy.region": "ap-south-1"}`)
	leaf := parseLeaf(t, newApp(JSON(path)), "deploy")

	region, _ := leaf.String("region")
	assert.Equal(t, "ap-south-1", region)
}

func TestArgvBeatsFile(t *testing.T) {
	path := writeFile(t, "config.json", `{"deploy": {"region": "eu-west-1"}}`)
	leaf := parseLeaf(t, newApp(JSON(path)), "deploy", "--region", "us-west-2")

	region, _ := leaf.String("region")
	assert.Equal(t, "us-west-2", region)
	assert.Equal(t, snap.SourceArgv, leaf.Source("region"))
}

func TestEnvBeatsFile(t *testing.T) {
	path := writeFile(t, "config.json", `{"deploy": {"region": "eu-west-1"}}`)
	app := newApp(JSON(path)).
		AutoEnvPrefix("TOOL").
		EnvReader(snap.MapEnvReader(map[string]string{"TOOL_DEPLOY_REGION": "sa-east-1"}))
	leaf := parseLeaf(t, app, "deploy")

	region, _ := leaf.String("region")
	assert.Equal(t, "sa-east-1", region)
	assert.Equal(t, snap.SourceEnv, leaf.Source("region"))
}

func TestMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.json")

	leaf := parseLeaf(t, newApp(JSON(missing)), "deploy")
	region, _ := leaf.String("region")
	assert.Equal(t, "us-east-1", region)
	assert.Equal(t, snap.SourceDefault, leaf.Source("region"))

	_, err := newApp(JSON(missing, Required())).Parse([]string{"deploy"})
	var pe *snap.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, snap.KindFileNotFound, pe.Kind)
}

func TestMalformedFile(t *testing.T) {
	path := writeFile(t, "config.json", `{"deploy": `)
	_, err := newApp(JSON(path)).Parse([]string{"deploy"})

	var pe *snap.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, snap.KindInvalidFileFormat, pe.Kind)
	assert.Contains(t, pe.Message, path)
}

func TestYAMLSource(t *testing.T) {
	path := writeFile(t, "config.yaml", strings.Join([]string{
		"verbose: true",
		"deploy:",
		"  region: eu-central-1",
		"  replicas: 5",
		"  tags:",
		"    - x",
		"    - y",
		"",
	}, "\n"))
	leaf := parseLeaf(t, newApp(YAML(path)), "deploy")

	region, _ := leaf.String("region")
	assert.Equal(t, "eu-central-1", region)
	replicas, _ := leaf.Int("replicas")
	assert.Equal(t, 5, replicas)
	tags, _ := leaf.StringSlice("tags")
	assert.Equal(t, []string{"x", "y"}, tags)
}

func TestINISource(t *testing.T) {
	path := writeFile(t, "config.ini", strings.Join([]string{
		"verbose = true",
		"",
		"[deploy]",
		"region = us-west-1",
		"tags = one",
		"tags = two",
		"",
	}, "\n"))
	leaf := parseLeaf(t, newApp(INI(path)), "deploy")

	region, _ := leaf.String("region")
	assert.Equal(t, "us-west-1", region)
	tags, _ := leaf.StringSlice("tags")
	assert.Equal(t, []string{"one", "two"}, tags)
	verbose, _ := leaf.Root().Bool("verbose")
	assert.True(t, verbose)
}

func TestHCLSource(t *testing.T) {
	path := writeFile(t, "config.hcl", `
verbose = true
deploy {
  region   = "eu-north-1"
  replicas = 2
  tags     = ["p", "q"]
}
`)
	leaf := parseLeaf(t, newApp(HCL(path)), "deploy")

	region, _ := leaf.String("region")
	assert.Equal(t, "eu-north-1", region)
	replicas, _ := leaf.Int("replicas")
	assert.Equal(t, 2, replicas)
	tags, _ := leaf.StringSlice("tags")
	assert.Equal(t, []string{"p", "q"}, tags)
}

func TestHCLMalformed(t *testing.T) {
	path := writeFile(t, "config.hcl", `deploy {`)
	_, err := newApp(HCL(path)).Parse([]string{"deploy"})

	var pe *snap.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, snap.KindInvalidFileFormat, pe.Kind)
}

func TestChainedSources(t *testing.T) {
	first := writeFile(t, "a.json", `{"deploy": {"region": "from-json"}}`)
	second := writeFile(t, "b.yaml", "deploy:\n  region: from-yaml\n  replicas: 7\n")

	leaf := parseLeaf(t, newApp(snap.ChainedValueSource{JSON(first), YAML(second)}), "deploy")

	region, _ := leaf.String("region")
	assert.Equal(t, "from-json", region)
	replicas, _ := leaf.Int("replicas")
	assert.Equal(t, 7, replicas)
}

// consulKV serves the Consul KV read endpoint for a fixed set of keys.
func consulKV(t *testing.T, kv map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Consul-Index", "1")
		w.Header().Set("X-Consul-LastContact", "0")
		w.Header().Set("X-Consul-KnownLeader", "true")

		key := strings.TrimPrefix(r.URL.Path, "/v1/kv/")
		value, ok := kv[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `[{"Key":%q,"Flags":0,"Value":%q,"CreateIndex":1,"ModifyIndex":1}]`,
			key, base64.StdEncoding.EncodeToString([]byte(value)))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConsulSource(t *testing.T) {
	srv := consulKV(t, map[string]string{
		"config/tool/deploy/region": "eu-south-1",
		"config/tool/deploy/tags":   `["red", "blue"]`,
	})

	source, err := Consul(ConsulConfig{
		Address: strings.TrimPrefix(srv.URL, "http://"),
		Prefix:  "/config/tool/",
	})
	require.NoError(t, err)

	leaf := parseLeaf(t, newApp(source), "deploy")

	region, _ := leaf.String("region")
	assert.Equal(t, "eu-south-1", region)
	tags, _ := leaf.StringSlice("tags")
	assert.Equal(t, []string{"red", "blue"}, tags)

	_, ok := leaf.Int("replicas")
	assert.False(t, ok)
}

func TestSQLiteSource(t *testing.T) {
	source, err := SQLite(":memory:", "")
	require.NoError(t, err)
	t.Cleanup(func() { source.Close() })

	ctx := context.Background()
	require.NoError(t, source.Set(ctx, "deploy.region", "af-south-1"))
	require.NoError(t, source.Set(ctx, "deploy.tags", "t1", "t2", "t3"))
	require.NoError(t, source.Set(ctx, "deploy.replicas", "1"))
	require.NoError(t, source.Set(ctx, "deploy.replicas", "4"))

	leaf := parseLeaf(t, newApp(source), "deploy")

	region, _ := leaf.String("region")
	assert.Equal(t, "af-south-1", region)
	tags, _ := leaf.StringSlice("tags")
	assert.Equal(t, []string{"t1", "t2", "t3"}, tags)
	replicas, _ := leaf.Int("replicas")
	assert.Equal(t, 4, replicas)
}

func TestSQLiteRejectsBadTable(t *testing.T) {
	_, err := SQLite(":memory:", "settings; DROP TABLE x")
	assert.Error(t, err)
}
