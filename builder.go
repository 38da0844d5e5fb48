package notesauth

import (
	"errors"
	"log/slog"

	internalaudit "github.com/ancorit/notesauth/internal/audit"
	"github.com/ancorit/notesauth/jwt"
	"github.com/ancorit/notesauth/refresh"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. A Builder is single-use; configure it with
// the With* methods and call Build once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	directory    Directory
	refreshStore RefreshStore
	auditSink    AuditSink
	logger       *slog.Logger

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration. The Builder keeps a copy.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the client used when Refresh.Backend is "redis".
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithDirectory sets the user directory. Required.
func (b *Builder) WithDirectory(d Directory) *Builder {
	b.directory = d
	return b
}

// WithRefreshStore overrides the store selected by Refresh.Backend.
func (b *Builder) WithRefreshStore(s RefreshStore) *Builder {
	b.refreshStore = s
	return b
}

// WithAuditSink sets where audit events go when Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the engine logger. Defaults to slog.Default().
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the resolve latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.directory == nil {
		return nil, errors.New("directory required")
	}

	store := b.refreshStore
	if store == nil {
		switch cfg.Refresh.Backend {
		case "redis":
			if b.redis == nil {
				return nil, errors.New("redis refresh backend requires redis client")
			}
			store = refresh.NewRedisStore(b.redis, cfg.Refresh.RedisPrefix)
		default:
			store = refresh.NewMemoryStore()
		}
	}

	jm, err := jwt.NewManager(jwt.Config{
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		Secret:        cloneBytes(cfg.JWT.Secret),
		PrivateKey:    cloneBytes(cfg.JWT.PrivateKey),
		PublicKey:     cloneBytes(cfg.JWT.PublicKey),
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		Leeway:        cfg.JWT.Leeway,
		KeyID:         cfg.JWT.KeyID,
	})
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	engine := &Engine{
		config:    cfg,
		tokens:    jm,
		directory: b.directory,
		refresh:   store,
		logger:    logger.With(slog.String("component", "notesauth")),
		metrics:   NewMetrics(cfg.Metrics),
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
	}

	b.built = true

	return engine, nil
}
