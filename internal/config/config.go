package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env       string          `yaml:"env" env-default:"local"`
	HTTP      HTTPConfig      `yaml:"http"`
	Admin     AdminConfig     `yaml:"admin"`
	Meeting   MeetingConfig   `yaml:"meeting"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type HTTPConfig struct {
	Address string `yaml:"address" env:"HTTP_ADDRESS" env-default:""`
}

type AdminConfig struct {
	Password string `yaml:"password" env:"ADMIN_PASSWORD" env-default:"8888"`
}

type MeetingConfig struct {
	// IdleTimeout is how long a meeting may stay inactive before the
	// reaper force-terminates it. Adjustable per meeting at runtime.
	IdleTimeout    time.Duration `yaml:"idle_timeout" env:"TIMEOUT_DURATION" env-default:"3h"`
	MaxMeetings    int           `yaml:"max_meetings" env:"MAX_MEETINGS" env-default:"50"`
	DeletionGrace  time.Duration `yaml:"deletion_grace" env-default:"1h"`
	ReaperInterval time.Duration `yaml:"reaper_interval" env-default:"1m"`
	MaxPollSeconds int           `yaml:"max_poll_seconds" env-default:"3600"`
}

type RateLimitConfig struct {
	LoginLimit  int           `yaml:"login_limit" env-default:"5"`
	CreateLimit int           `yaml:"create_limit" env-default:"10"`
	Window      time.Duration `yaml:"window" env-default:"1m"`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		panic("config path is empty")
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	cfg.setDefaults()

	return &cfg
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	if res == "" {
		res = "config/local.yaml"
	}

	return res
}

func (c *Config) setDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Meeting.IdleTimeout <= 0 {
		c.Meeting.IdleTimeout = 3 * time.Hour
	}
	if c.Meeting.MaxMeetings <= 0 {
		c.Meeting.MaxMeetings = 50
	}
	if c.Meeting.DeletionGrace <= 0 {
		c.Meeting.DeletionGrace = time.Hour
	}
	if c.Meeting.ReaperInterval <= 0 {
		c.Meeting.ReaperInterval = time.Minute
	}
	if c.Meeting.MaxPollSeconds <= 0 {
		c.Meeting.MaxPollSeconds = 3600
	}
	if c.RateLimit.LoginLimit <= 0 {
		c.RateLimit.LoginLimit = 5
	}
	if c.RateLimit.CreateLimit <= 0 {
		c.RateLimit.CreateLimit = 10
	}
	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = time.Minute
	}
}
