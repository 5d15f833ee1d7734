package postgres

import (
	"fmt"
	"net/url"
)

type Config struct {
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	SslMode  string `yaml:"ssl_mode"`
}

func (c Config) ToDBConnectionURI() string {
	if c.Port == 0 {
		c.Port = 5432
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Database,
	}

	if c.SslMode != "" {
		q := u.Query()
		q.Set("sslmode", c.SslMode)
		u.RawQuery = q.Encode()
	}

	return u.String()
}
