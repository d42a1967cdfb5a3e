package app

import (
	"context"
	"time"

	"github.com/yungbote/coursemarket-backend/internal/platform/certimage"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
	"github.com/yungbote/coursemarket-backend/internal/platform/rediscache"
	"github.com/yungbote/coursemarket-backend/internal/platform/vnpay"
)

type Clients struct {
	Cache    rediscache.Cache
	Gateway  *vnpay.Client
	Renderer *certimage.Renderer
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis
	cache := rediscache.Nop()
	if cfg.RedisAddr != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		c, err := rediscache.New(pingCtx, log, rediscache.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   "coursemarket:",
		})
		cancel()
		if err != nil {
			log.Warn("redis unavailable, certificate cache disabled", "error", err)
		} else {
			cache = c
		}
	}

	// VNPay
	var gateway *vnpay.Client
	if missing := cfg.VNPay.Missing(); len(missing) > 0 {
		log.Warn("payment gateway not configured, payment routes disabled", "missing", missing)
	} else {
		gateway = vnpay.NewClient(cfg.VNPay)
	}

	// Badge renderer
	renderer, err := certimage.NewRenderer()
	if err != nil {
		return Clients{}, err
	}

	return Clients{Cache: cache, Gateway: gateway, Renderer: renderer}, nil
}

func (c Clients) Close() {
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
}
