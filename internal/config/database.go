package config

import "github.com/kubecrud/items-api/internal/database"

// StoreConfig converts the environment settings into the store's config.
func (c DatabaseConfig) StoreConfig() database.Config {
	return database.Config{
		Host:           c.Host,
		Port:           c.Port,
		User:           c.User,
		Password:       c.Password,
		Name:           c.Name,
		SSLMode:        c.SSLMode,
		PoolSize:       c.PoolSize,
		AcquireTimeout: c.AcquireTimeout,
		ConnectTimeout: c.ConnectTimeout,
	}
}
