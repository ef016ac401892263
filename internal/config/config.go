// Package config builds the immutable per-run configuration: credentials,
// proxies, user agents, timing, and the seed that makes user-agent/proxy
// rotation reproducible.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Credential environment variables, keyed by the source id they belong to.
var credentialEnv = map[string]string{
	"hunterio":  "HUNTER_IO_API_KEY",
	"clearbit":  "CLEARBIT_API_KEY",
	"apolloio":  "APOLLO_IO_API_KEY",
	"zoominfo":  "ZOOMINFO_API_KEY",
	"websearch": "GEMINI_API_KEY",
}

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
}

// Config is fixed for the lifetime of one run. Nothing mutates it after
// Load; anything that varies per request (user agent, proxy) is derived from
// Seed and a caller-supplied counter.
type Config struct {
	Headless        bool
	Delay           time.Duration
	PageLoadTimeout time.Duration
	Seed            int64

	// Credentials maps source id -> API key. A missing entry means the
	// source degrades to sample data; it is never an error.
	Credentials map[string]string

	Proxies    []string
	UserAgents []string
}

// File is the optional YAML config file shape. Every field is optional and
// only overrides the built-in default when set.
type File struct {
	Headless   *bool    `yaml:"headless"`
	DelayMS    *int     `yaml:"delay_ms"`
	UserAgents []string `yaml:"user_agents"`
	Proxies    []string `yaml:"proxies"`
}

// Load assembles the run configuration. A .env file is honored if present.
// proxyFlag and delay come from the CLI; path optionally names a YAML file.
func Load(path, proxyFlag string, delay time.Duration, headless bool, seed int64) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Headless:        headless,
		Delay:           delay,
		PageLoadTimeout: 30 * time.Second,
		Seed:            seed,
		Credentials:     loadCredentials(),
		Proxies:         loadProxies(),
		UserAgents:      defaultUserAgents,
	}

	if path != "" {
		f, err := loadFile(path)
		if err != nil {
			return Config{}, err
		}
		if f.Headless != nil {
			cfg.Headless = *f.Headless
		}
		if f.DelayMS != nil {
			cfg.Delay = time.Duration(*f.DelayMS) * time.Millisecond
		}
		if len(f.UserAgents) > 0 {
			cfg.UserAgents = f.UserAgents
		}
		if len(f.Proxies) > 0 {
			cfg.Proxies = f.Proxies
		}
	}

	if proxyFlag != "" {
		// An explicit proxy wins over any configured rotation list.
		cfg.Proxies = []string{proxyFlag}
	}

	return cfg, nil
}

func loadFile(path string) (File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return File{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return f, nil
}

func loadCredentials() map[string]string {
	out := make(map[string]string, len(credentialEnv))
	for id, env := range credentialEnv {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			out[id] = v
		}
	}
	return out
}

// loadProxies reads PROXY_LIST (comma separated) or a proxies.txt file in
// the working directory, in that order.
func loadProxies() []string {
	if env := strings.TrimSpace(os.Getenv("PROXY_LIST")); env != "" {
		return splitNonEmpty(env, ",")
	}
	b, err := os.ReadFile("proxies.txt")
	if err != nil {
		return nil
	}
	return splitNonEmpty(string(b), "\n")
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// UserAgent returns the user agent for the n-th session of this run. Same
// seed and n, same agent.
func (c Config) UserAgent(n int) string {
	if len(c.UserAgents) == 0 {
		return ""
	}
	return c.UserAgents[rotationIndex(c.Seed, n, len(c.UserAgents))]
}

// Proxy returns the proxy endpoint for the n-th session, or "" when no
// proxies are configured.
func (c Config) Proxy(n int) string {
	if len(c.Proxies) == 0 {
		return ""
	}
	return c.Proxies[rotationIndex(c.Seed, n, len(c.Proxies))]
}

// Credential returns the API key for a source id, if configured.
func (c Config) Credential(id string) (string, bool) {
	v, ok := c.Credentials[id]
	return v, ok
}

// rotationIndex spreads counters across a list deterministically. splitmix64
// finalizer; cheap and well distributed for small lists.
func rotationIndex(seed int64, n, size int) int {
	z := uint64(seed) + uint64(n)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	return int(z % uint64(size))
}
