package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "CARMARKET"

// Load 在默认配置之上叠加 config.yaml（位于 dir 目录，可缺省）与 CARMARKET_* 环境变量
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults 逐个注册 key，AutomaticEnv 只对已知 key 生效
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("admin_server.host", d.AdminServer.Host)
	v.SetDefault("admin_server.port", d.AdminServer.Port)
	v.SetDefault("mysql.dsn", d.MySQL.DSN)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.pool_size", d.Redis.PoolSize)
	v.SetDefault("rabbitmq.url", d.RabbitMQ.URL)
	v.SetDefault("rabbitmq.order_queue", d.RabbitMQ.OrderQueue)
	v.SetDefault("jwt.secret", d.JWT.Secret)
	v.SetDefault("jwt.ttl_minutes", d.JWT.TTLMinutes)
	v.SetDefault("session.cookie", d.Session.Cookie)
	v.SetDefault("session.ttl_minutes", d.Session.TTLMinutes)
	v.SetDefault("checkout.lock_ttl_seconds", d.Checkout.LockTTLSeconds)
	v.SetDefault("checkout.strict_items", d.Checkout.StrictItems)
	v.SetDefault("checkout.rate_capacity", d.Checkout.RateCapacity)
	v.SetDefault("checkout.rate_refill", d.Checkout.RateRefill)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
}
