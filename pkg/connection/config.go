package connection

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/cmislib/cmislib.go/pkg/constants"
	"github.com/cmislib/cmislib.go/pkg/logger"
)

type Config struct {
	// URL is the CMIS service document URL with any user info removed.
	URL url.URL
	// BaseURL is scheme://host of URL.
	BaseURL string

	Username string
	Password string

	Timeout time.Duration
	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client
	Logger     logger.Logger
}

// NewConfig creates a Config for the CMIS service document at u, for example
// "http://localhost:8080/alfresco/s/cmis". Credentials embedded in u are moved
// into Username and Password.
func NewConfig(u *url.URL) *Config {
	service := *u
	var username, password string
	if service.User != nil {
		username = service.User.Username()
		password, _ = service.User.Password()
		service.User = nil
	}
	return &Config{
		URL:      service,
		BaseURL:  fmt.Sprintf("%s://%s", service.Scheme, service.Host),
		Username: username,
		Password: password,
		Timeout:  constants.DefaultHTTPTimeout,
		Logger:   logger.New(slog.NewTextHandler(os.Stdout, nil)),
	}
}

// ParseConfig is NewConfig for a URL string.
func ParseConfig(serviceURL string) (*Config, error) {
	u, err := url.Parse(serviceURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case constants.HTTPScheme, constants.HTTPSecureScheme:
	default:
		return nil, fmt.Errorf("invalid service url %q: scheme must be http or https", serviceURL)
	}
	if u.Host == "" {
		return nil, constants.ErrNoBaseURL
	}
	return NewConfig(u), nil
}

// WithCredentials sets the basic-auth credentials and returns c.
func (c *Config) WithCredentials(username, password string) *Config {
	c.Username = username
	c.Password = password
	return c
}

// WithLogger sets the logger and returns c.
func (c *Config) WithLogger(l logger.Logger) *Config {
	c.Logger = l
	return c
}
