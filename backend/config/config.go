package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type DB struct {
	Host string
	Port int
	User string
	Pass string
	Name string
}

type HTTP struct {
	Host string
	Port int
}

type Backup struct {
	StoragePath string
	// Protocol and BaseURL build the public download URL:
	// {protocol}://{base_url}/public/backups/{filename}
	Protocol string
	BaseURL  string
	// Hex-encoded AES-256 key (32 bytes) and CBC IV (16 bytes).
	EncryptionKey string
	IV            string
}

type Redis struct {
	Addr string
	Pass string
}

type Config struct {
	HTTP  HTTP
	DB    DB
	Redis Redis
	JWT   struct {
		Secret string
		Issuer string
		ExpMin int
	}
	Backup Backup
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("backend.host", "127.0.0.1")
	v.SetDefault("backend.port", 9200)
	v.SetDefault("backend.db.host", "127.0.0.1")
	v.SetDefault("backend.db.port", 3306)
	v.SetDefault("backend.db.user", "root")
	v.SetDefault("backend.db.pass", "")
	v.SetDefault("backend.db.name", "structura")
	v.SetDefault("backend.backup.storage_path", "public/backups")
	v.SetDefault("backend.backup.protocol", "http")
	v.SetDefault("backend.backup.base_url", "127.0.0.1:9200")
	v.SetDefault("backend.redis.addr", "")

	// The cipher material may come from the environment instead of the file.
	_ = v.BindEnv("backend.backup.encryption_key", "ENCRYPTION_KEY")
	_ = v.BindEnv("backend.backup.iv", "IV")
	_ = v.BindEnv("backend.backup.protocol", "PROTOCOL")
	_ = v.BindEnv("backend.backup.base_url", "BASE_URL")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{
		HTTP: HTTP{Host: v.GetString("backend.host"), Port: v.GetInt("backend.port")},
		DB:   DB{Host: v.GetString("backend.db.host"), Port: v.GetInt("backend.db.port"), User: v.GetString("backend.db.user"), Pass: v.GetString("backend.db.pass"), Name: v.GetString("backend.db.name")},
		Redis: Redis{
			Addr: v.GetString("backend.redis.addr"),
			Pass: v.GetString("backend.redis.pass"),
		},
		Backup: Backup{
			StoragePath:   v.GetString("backend.backup.storage_path"),
			Protocol:      v.GetString("backend.backup.protocol"),
			BaseURL:       v.GetString("backend.backup.base_url"),
			EncryptionKey: v.GetString("backend.backup.encryption_key"),
			IV:            v.GetString("backend.backup.iv"),
		},
	}
	cfg.JWT.Secret = v.GetString("backend.jwt.secret")
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "dev-secret"
	}
	cfg.JWT.Issuer = v.GetString("backend.jwt.issuer")
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "structura"
	}
	cfg.JWT.ExpMin = v.GetInt("backend.jwt.exp_min")
	if cfg.JWT.ExpMin <= 0 {
		cfg.JWT.ExpMin = 60
	}
	return cfg, nil
}
