package mysql

import "fmt"

type Config struct {
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
}

func (c Config) ToDBConnectionURI() string {
	if c.Port == 0 {
		c.Port = 3306
	}

	hostPort := fmt.Sprintf("%s:%d", c.Host, c.Port)

	return fmt.Sprintf(
		"%s:%s@tcp(%s)/%s",
		c.Username,
		c.Password,
		hostPort,
		c.Database,
	)
}
