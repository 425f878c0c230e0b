package whoop

import (
	"github.com/go-redis/redis/v8"

	"github.com/jkor2/lifeof/internal/config"
	"github.com/jkor2/lifeof/internal/logger"
)

func OptionsFrom(c config.WhoopConfig) Options {
	return Options{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURI:  c.RedirectURI,
		AuthURL:      c.AuthURL,
		TokenURL:     c.TokenURL,
		APIBase:      c.APIBase,
	}
}

// StoreFrom keeps tokens in Redis when an address is configured, otherwise
// in the token file.
func StoreFrom(w config.WhoopConfig, r config.RedisConfig) TokenStore {
	if r.Addr == "" {
		return NewFileTokenStore(w.TokenFile)
	}
	logger.Info("whoop.token_store", "backend", "redis", "addr", r.Addr, "key", r.TokenKey)
	rc := redis.NewClient(&redis.Options{Addr: r.Addr, Password: r.Password, DB: r.DB})
	return NewRedisTokenStore(rc, r.TokenKey)
}
