package temporalx

import (
	"strings"
	"time"
)

type Config struct {
	Address   string `yaml:"address"`
	Namespace string `yaml:"namespace"`
	TaskQueue string `yaml:"task_queue"`

	ClientCertPath string `yaml:"client_cert_path"`
	ClientKeyPath  string `yaml:"client_key_path"`
	ClientCAPath   string `yaml:"client_ca_path"`

	AutoRegisterNamespace bool          `yaml:"auto_register_namespace"`
	DialTimeout           time.Duration `yaml:"dial_timeout"`
	DialMaxWait           time.Duration `yaml:"dial_max_wait"`
	// SweepInterval schedules the priority sweep workflow; zero disables the schedule.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Address) != ""
}

func (c Config) withDefaults() Config {
	c.Namespace = stringsOr(c.Namespace, "medsupply")
	c.TaskQueue = stringsOr(c.TaskQueue, "medsupply")
	if c.DialTimeout <= 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.DialMaxWait < 0 {
		c.DialMaxWait = 0
	} else if c.DialMaxWait == 0 {
		c.DialMaxWait = time.Minute
	}
	return c
}

func (c Config) hasTLS() bool {
	return c.ClientCertPath != "" || c.ClientKeyPath != "" || c.ClientCAPath != ""
}

func stringsOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}
