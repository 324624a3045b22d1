package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	HTTPPort               int           `yaml:"http_port"`
	BaseURL                string        `yaml:"base_url"` // used to build evidence download links
	JwtTTL                 time.Duration `yaml:"jwt_ttl"`
	UploadsDir             string        `yaml:"uploads_dir"`
	StorageProvider        string        `yaml:"storage_provider"` // "local" or "s3"
	MaxTotalAttachmentSize int64         `yaml:"max_total_attachment_size"`
	MailAttachmentLimit    int64         `yaml:"mail_attachment_limit"` // above this, mail carries links instead of files
	MailTimeout            time.Duration `yaml:"mail_timeout"`
	AllowedOrigins         []string      `yaml:"allowed_origins"`
	LogLevel               string        `yaml:"log_level"`
	LogJSON                bool          `yaml:"log_json"`
}

type Private struct {
	JwtKey string `yaml:"jwt_key"`
	Pg     Pg     `yaml:"pg"`
	Smtp   Smtp   `yaml:"smtp"`
	S3     S3     `yaml:"s3"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Smtp struct {
	Server     string `yaml:"server"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	SenderName string `yaml:"sender_name"`
	From       string `yaml:"from"`
}

type S3 struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func (c *Config) JwtTTL() time.Duration {
	return c.Public.JwtTTL
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Public.HTTPPort == 0 {
		c.Public.HTTPPort = 3001
	}
	if c.Public.JwtTTL == 0 {
		c.Public.JwtTTL = 8 * time.Hour
	}
	if c.Public.UploadsDir == "" {
		c.Public.UploadsDir = "uploads"
	}
	if c.Public.StorageProvider == "" {
		c.Public.StorageProvider = "local"
	}
	if c.Public.MaxTotalAttachmentSize == 0 {
		c.Public.MaxTotalAttachmentSize = 50 << 20
	}
	if c.Public.MailAttachmentLimit == 0 {
		c.Public.MailAttachmentLimit = 10 << 20
	}
	if c.Public.MailTimeout == 0 {
		c.Public.MailTimeout = 30 * time.Second
	}
}
