package proc

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gopkg.in/yaml.v2"
)

// Conf for list feed, yml or toml
type Conf struct {
	ConsumerKey       string `yaml:"consumer_key" toml:"consumer_key"`
	ConsumerSecret    string `yaml:"consumer_secret" toml:"consumer_secret"`
	AccessToken       string `yaml:"access_token" toml:"access_token"`
	AccessTokenSecret string `yaml:"access_token_secret" toml:"access_token_secret"`

	Username string `yaml:"username" toml:"username"`
	ListName string `yaml:"listname" toml:"listname"`

	RssTitle       string `yaml:"rss_title" toml:"rss_title"`
	RssURL         string `yaml:"rss_url" toml:"rss_url"`
	RssDescription string `yaml:"rss_description" toml:"rss_description"`

	Port string `yaml:"port" toml:"port"`

	ShortLinks bool `yaml:"short_links" toml:"short_links"`
	Sanitize   bool `yaml:"sanitize" toml:"sanitize"`
	Concurrent int  `yaml:"concurrent" toml:"concurrent"`
}

// ConfigError lists required keys missing in config
type ConfigError struct {
	Keys []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing config keys: %s", strings.Join(e.Keys, ", "))
}

// LoadConf reads config file, toml for .toml files and yml for everything else
func LoadConf(fname string) (*Conf, error) {
	data, err := os.ReadFile(fname) // nolint
	if err != nil {
		return nil, errors.Wrapf(err, "can't read config %s", fname)
	}

	res := &Conf{}
	switch strings.ToLower(filepath.Ext(fname)) {
	case ".toml":
		if _, err := toml.Decode(string(data), res); err != nil {
			return nil, errors.Wrapf(err, "can't parse toml config %s", fname)
		}
	default:
		if err := yaml.Unmarshal(data, res); err != nil {
			return nil, errors.Wrapf(err, "can't parse yml config %s", fname)
		}
	}

	if err := res.Validate(); err != nil {
		return nil, err
	}
	res.setDefaults()
	return res, nil
}

// Validate checks all required keys are set
func (c *Conf) Validate() error {
	required := []struct{ key, val string }{
		{"consumer_key", c.ConsumerKey},
		{"consumer_secret", c.ConsumerSecret},
		{"access_token", c.AccessToken},
		{"access_token_secret", c.AccessTokenSecret},
		{"username", c.Username},
		{"listname", c.ListName},
		{"rss_title", c.RssTitle},
		{"rss_url", c.RssURL},
		{"rss_description", c.RssDescription},
		{"port", c.Port},
	}
	missing := lo.FilterMap(required, func(r struct{ key, val string }, _ int) (string, bool) {
		return r.key, strings.TrimSpace(r.val) == ""
	})
	if len(missing) > 0 {
		return &ConfigError{Keys: missing}
	}

	if _, err := c.PortNumber(); err != nil {
		return err
	}
	return nil
}

// PortNumber returns port as int
func (c *Conf) PortNumber() (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || port <= 0 || port > 65535 {
		return 0, errors.Errorf("invalid port %q", c.Port)
	}
	return port, nil
}

func (c *Conf) setDefaults() {
	if c.Concurrent <= 0 {
		c.Concurrent = 8
	}
}
