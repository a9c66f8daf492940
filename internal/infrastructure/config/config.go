package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/davarch/release-reporter/internal/domain"
	"gopkg.in/yaml.v3"
)

type Pipeline struct {
	Name    string `yaml:"name"`
	Branch  string `yaml:"branch"`
	Enabled bool   `yaml:"enabled"`
}

type Notice struct {
	Enabled      bool   `yaml:"enabled"`
	MinutesAhead int    `yaml:"minutes_ahead"`
	RoundTo      int    `yaml:"round_to"`
	Timezone     string `yaml:"timezone"`
}

type Config struct {
	Buildkite struct {
		BaseURL      string        `yaml:"base_url"`
		Organization string        `yaml:"organization"`
		Token        string        `yaml:"token,omitempty"`
		Timeout      time.Duration `yaml:"timeout,omitempty"`
	} `yaml:"buildkite"`

	Report struct {
		Pipelines   []Pipeline `yaml:"pipelines"`
		Selection   string     `yaml:"selection"`
		FetchPolicy string     `yaml:"fetch_policy"`
		Notice      Notice     `yaml:"notice"`
	} `yaml:"report"`

	Watch struct {
		Interval  time.Duration `yaml:"interval"`
		PauseFile string        `yaml:"pause_file"`
	} `yaml:"watch"`
}

func Load(path string) (Config, error) {
	var c Config

	c.Buildkite.BaseURL = "https://api.buildkite.com/v2"
	c.Report.Selection = string(domain.SelectPrefix)
	c.Report.FetchPolicy = string(domain.FetchLenient)
	c.Report.Notice.MinutesAhead = 30
	c.Report.Notice.RoundTo = 15
	c.Report.Notice.Timezone = "AEST/AEDT"
	c.Watch.Interval = 5 * time.Minute

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return c, fmt.Errorf("parse %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return c, err
		}
	}

	if v := os.Getenv("BUILDKITE_BASE_URL"); v != "" {
		c.Buildkite.BaseURL = v
	}

	if v := os.Getenv("BUILDKITE_ORGANIZATION"); v != "" {
		c.Buildkite.Organization = v
	}

	if v := os.Getenv("BUILDKITE_API_TOKEN"); v != "" {
		c.Buildkite.Token = v
	}

	if v := os.Getenv("BUILDKITE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return c, fmt.Errorf("BUILDKITE_TIMEOUT: %w", err)
		}
		c.Buildkite.Timeout = d
	}

	if v := os.Getenv("RELEASE_SELECTION"); v != "" {
		c.Report.Selection = v
	}

	if v := os.Getenv("RELEASE_FETCH_POLICY"); v != "" {
		c.Report.FetchPolicy = v
	}

	if v := os.Getenv("WATCH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return c, fmt.Errorf("WATCH_INTERVAL: %w", err)
		}
		c.Watch.Interval = d
	}

	if s := os.Getenv("RELEASE_PIPELINES"); s != "" {
		if ps := parsePipelines(s); len(ps) > 0 {
			c.Report.Pipelines = ps
		}
	}

	if c.Buildkite.BaseURL == "" {
		c.Buildkite.BaseURL = "https://api.buildkite.com/v2"
	}

	if c.Watch.Interval <= 0 {
		c.Watch.Interval = 5 * time.Minute
	}

	if c.Report.Notice.RoundTo <= 0 {
		c.Report.Notice.RoundTo = 15
	}

	if c.Watch.PauseFile == "" {
		c.Watch.PauseFile = expandHome("~/.cache/release_reporter_paused")
	}
	c.Watch.PauseFile = expandHome(c.Watch.PauseFile)

	return c, nil
}

// Validate checks what the report needs before any network activity.
func (c Config) Validate() error {
	if c.Buildkite.Token == "" {
		return errors.New("BUILDKITE_API_TOKEN is required")
	}

	if c.Buildkite.Organization == "" {
		return errors.New("buildkite organization is required (YAML or BUILDKITE_ORGANIZATION)")
	}

	if len(c.Refs()) == 0 {
		return errors.New("no enabled pipelines configured (YAML or RELEASE_PIPELINES)")
	}

	if _, err := domain.ParseSelectionPolicy(c.Report.Selection); err != nil {
		return err
	}

	if _, err := domain.ParseFetchPolicy(c.Report.FetchPolicy); err != nil {
		return err
	}

	return nil
}

// Refs returns the enabled pipelines in configuration order. A missing branch
// defaults to main.
func (c Config) Refs() []domain.PipelineRef {
	var refs []domain.PipelineRef
	for _, p := range c.Report.Pipelines {
		if !p.Enabled || p.Name == "" {
			continue
		}
		branch := p.Branch
		if branch == "" {
			branch = "main"
		}
		refs = append(refs, domain.PipelineRef{Pipeline: p.Name, Branch: branch})
	}
	return refs
}

// SetPipelineEnabled flips the enabled flag of every pipeline named name in
// the file at path. It edits the YAML document itself, so comments, the token
// and anything else in the file stay as written, and environment overrides
// never reach the disk.
func SetPipelineEnabled(path, name string, enabled bool) (bool, error) {
	if path == "" {
		return false, errors.New("empty config path")
	}

	unlock, err := lockFile(path)
	if err != nil {
		return false, err
	}
	defer unlock()

	b, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}

	if !setEnabledNode(&doc, name, enabled) {
		return false, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return false, err
	}
	if err := enc.Close(); err != nil {
		return false, err
	}

	return true, writeAtomic(path, buf.Bytes())
}

func setEnabledNode(doc *yaml.Node, name string, enabled bool) bool {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return false
	}

	pipelines := mappingValue(mappingValue(doc.Content[0], "report"), "pipelines")
	if pipelines == nil || pipelines.Kind != yaml.SequenceNode {
		return false
	}

	want := strconv.FormatBool(enabled)
	changed := false
	for _, item := range pipelines.Content {
		if n := mappingValue(item, "name"); n == nil || n.Value != name {
			continue
		}

		cur := mappingValue(item, "enabled")
		if cur == nil {
			// a missing flag already means disabled
			if !enabled {
				continue
			}
			item.Content = append(item.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "enabled"},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: want},
			)
			changed = true
			continue
		}

		if was, _ := strconv.ParseBool(cur.Value); was == enabled {
			continue
		}
		cur.Kind, cur.Tag, cur.Value, cur.Style = yaml.ScalarNode, "!!bool", want, 0
		changed = true
	}
	return changed
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func lockFile(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	lf, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, err
	}

	if runtime.GOOS != "windows" {
		if err := syscall.Flock(int(lf.Fd()), syscall.LOCK_EX); err != nil {
			_ = lf.Close()
			return nil, err
		}
	}

	return func() {
		if runtime.GOOS != "windows" {
			_ = syscall.Flock(int(lf.Fd()), syscall.LOCK_UN)
		}
		_ = lf.Close()
	}, nil
}

func writeAtomic(path string, b []byte) error {
	mode := os.FileMode(0o644)
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode().Perm()
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}

	defer func() { _ = f.Close() }()

	if _, err := f.Write(b); err != nil {
		return err
	}

	if err := f.Sync(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// parsePipelines reads "name:branch,name:branch". A bare name means main.
func parsePipelines(s string) []Pipeline {
	var ps []Pipeline
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, branch, _ := strings.Cut(item, ":")
		if name == "" {
			continue
		}
		if branch == "" {
			branch = "main"
		}
		ps = append(ps, Pipeline{Name: name, Branch: branch, Enabled: true})
	}
	return ps
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		if h, _ := os.UserHomeDir(); h != "" {
			return h + p[1:]
		}
	}
	return p
}

