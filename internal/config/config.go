package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// minSecretLen applies outside dev; HS256 keys shorter than the hash output
// weaken the MAC.
const minSecretLen = 32

type Config struct {
	//App
	Env string // dev / staging / prod
	//HTTP
	HTTPAddr string
	//Auth / Security
	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration

	// Password hashing
	PasswordHashAlgo string // bcrypt | argon2id
	BcryptCost       int
	Argon2Time       uint32
	Argon2MemoryKiB  uint32
	Argon2Threads    uint8

	// Infrastructure
	DBAddr         string
	DBAutoMigrate  bool
	DBPool         PoolConfig
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RabbitURL      string
	RabbitExchange string

	// Document storage (S3 / MinIO). Disabled when S3Bucket is empty.
	S3Endpoint        string
	S3Region          string
	S3Bucket          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3UsePathStyle    bool
	UploadURLTTL      time.Duration

	// Throttling per client IP; the window is shared by both limits.
	LoginRateLimit    int
	RegisterRateLimit int
	LoginRateWindow   time.Duration

	// Browser origins allowed by CORS. Empty disables the CORS middleware.
	CORSAllowedOrigins []string

	SeedDevIdentities bool

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

func (c *Config) IsDev() bool { return c.Env == "dev" }

// Error is returned by Load for missing or malformed settings.
type Error struct {
	Key    string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config %s: %s: %v", e.Key, e.Reason, e.Err)
	}
	return fmt.Sprintf("config %s: %s", e.Key, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

func missing(key string) error {
	return &Error{Key: key, Reason: "missing required env var"}
}

// Load reads configuration from the environment. A .env file (ENV_FILE,
// default ".env") is loaded first when present; real env vars win.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, &Error{Key: "ENV_FILE", Reason: "cannot read " + envFile, Err: err}
	}

	cfg := &Config{
		Env:            getEnv("ENV", "dev"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		JWTIssuer:      getEnv("JWT_ISSUER", "jiayou-auth"),
		RabbitExchange: getEnv("RABBIT_EXCHANGE", "jiayou.events"),
		S3Region:       getEnv("S3_REGION", "us-east-1"),
	}

	// required values
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, missing("JWT_SECRET")
	}
	if !cfg.IsDev() && len(cfg.JWTSecret) < minSecretLen {
		return nil, &Error{Key: "JWT_SECRET", Reason: fmt.Sprintf("must be at least %d bytes outside dev", minSecretLen)}
	}

	var err error
	if cfg.AccessTokenTTL, err = getDuration("ACCESS_TOKEN_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, &Error{Key: "ACCESS_TOKEN_TTL", Reason: "must be positive"}
	}

	// Password hashing
	cfg.PasswordHashAlgo = strings.ToLower(getEnv("PASSWORD_HASH_ALGO", "bcrypt"))
	if cfg.PasswordHashAlgo != "bcrypt" && cfg.PasswordHashAlgo != "argon2id" {
		return nil, &Error{Key: "PASSWORD_HASH_ALGO", Reason: "must be bcrypt or argon2id"}
	}
	if cfg.BcryptCost, err = getInt("BCRYPT_COST", 12); err != nil {
		return nil, err
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, &Error{Key: "BCRYPT_COST", Reason: "must be between 4 and 31"}
	}
	at, err := getInt("ARGON2_TIME", 3)
	if err != nil {
		return nil, err
	}
	am, err := getInt("ARGON2_MEMORY_KIB", 64*1024)
	if err != nil {
		return nil, err
	}
	ap, err := getInt("ARGON2_THREADS", 4)
	if err != nil {
		return nil, err
	}
	// Upper bounds match the ceilings the verifier enforces on stored hashes.
	if at < 1 || at > 16 || am < 8 || am > 1<<20 || ap < 1 || ap > 64 {
		return nil, &Error{Key: "ARGON2_*", Reason: "1<=time<=16, 8 KiB<=memory<=1 GiB, 1<=threads<=64"}
	}
	cfg.Argon2Time, cfg.Argon2MemoryKiB, cfg.Argon2Threads = uint32(at), uint32(am), uint8(ap)

	// Infrastructure dependencies.
	// Outside dev the service cannot run without its database; in dev an
	// in-memory store is used when DB_ADDR is empty.
	cfg.DBAddr = os.Getenv("DB_ADDR")
	if cfg.DBAddr == "" && !cfg.IsDev() {
		return nil, missing("DB_ADDR")
	}
	if cfg.DBAddr != "" && !strings.HasPrefix(cfg.DBAddr, "postgres://") && !strings.HasPrefix(cfg.DBAddr, "postgresql://") {
		return nil, &Error{Key: "DB_ADDR", Reason: "must be a postgres:// URL"}
	}
	// The dev default must not silently apply to a real database.
	if cfg.DBAddr != "" && os.Getenv("ENV") == "" {
		return nil, &Error{Key: "ENV", Reason: "must be set explicitly when DB_ADDR is set"}
	}
	if cfg.DBAutoMigrate, err = getBool("DB_AUTO_MIGRATE", false); err != nil {
		return nil, err
	}
	if cfg.DBPool, err = loadPool(); err != nil {
		return nil, err
	}

	// Redis and RabbitMQ are optional: revocation and rate limiting fall back
	// to memory, events fall back to logging.
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	cfg.RabbitURL = os.Getenv("RABBIT_URL")

	cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.S3Bucket = os.Getenv("S3_BUCKET")
	cfg.S3AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	cfg.S3SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")
	if cfg.S3UsePathStyle, err = getBool("S3_USE_PATH_STYLE", cfg.S3Endpoint != ""); err != nil {
		return nil, err
	}
	if cfg.UploadURLTTL, err = getDuration("UPLOAD_URL_TTL", 15*time.Minute); err != nil {
		return nil, err
	}

	if cfg.LoginRateLimit, err = getInt("LOGIN_RATE_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.RegisterRateLimit, err = getInt("REGISTER_RATE_LIMIT", 5); err != nil {
		return nil, err
	}
	if cfg.LoginRateWindow, err = getDuration("LOGIN_RATE_WINDOW", time.Minute); err != nil {
		return nil, err
	}
	cfg.CORSAllowedOrigins = getList("CORS_ALLOWED_ORIGINS")
	for _, o := range cfg.CORSAllowedOrigins {
		if o == "*" && !cfg.IsDev() {
			return nil, &Error{Key: "CORS_ALLOWED_ORIGINS", Reason: "wildcard origin only allowed when ENV=dev"}
		}
	}

	// Seeding a database is opt-in; the in-memory dev store is seeded by default.
	if cfg.SeedDevIdentities, err = getBool("SEED_DEV_IDENTITIES", cfg.IsDev() && cfg.DBAddr == ""); err != nil {
		return nil, err
	}
	if cfg.SeedDevIdentities && !cfg.IsDev() {
		return nil, &Error{Key: "SEED_DEV_IDENTITIES", Reason: "only allowed when ENV=dev"}
	}

	//Timeout values are optional and have a default value if not
	if cfg.HTTPReadTimeout, err = getDuration("HTTP_READ_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPWriteTimeout, err = getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPIdleTimeout, err = getDuration("HTTP_IDLE_TIMEOUT", time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadPool() (PoolConfig, error) {
	p := DefaultPool
	var err error
	if p.MaxOpenConns, err = getInt("DB_MAX_OPEN_CONNS", p.MaxOpenConns); err != nil {
		return p, err
	}
	if p.MaxIdleConns, err = getInt("DB_MAX_IDLE_CONNS", p.MaxIdleConns); err != nil {
		return p, err
	}
	if p.ConnMaxIdleTime, err = getDuration("DB_CONN_MAX_IDLE_TIME", p.ConnMaxIdleTime); err != nil {
		return p, err
	}
	if p.ConnMaxLifetime, err = getDuration("DB_CONN_MAX_LIFETIME", p.ConnMaxLifetime); err != nil {
		return p, err
	}
	if p.MaxOpenConns < 1 {
		return p, &Error{Key: "DB_MAX_OPEN_CONNS", Reason: "must be at least 1"}
	}
	if p.MaxIdleConns < 0 || p.MaxIdleConns > p.MaxOpenConns {
		return p, &Error{Key: "DB_MAX_IDLE_CONNS", Reason: "must be between 0 and DB_MAX_OPEN_CONNS"}
	}
	return p, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getList splits a comma separated value, dropping empty items.
func getList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, &Error{Key: key, Reason: fmt.Sprintf("invalid duration %q", v), Err: err}
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &Error{Key: key, Reason: fmt.Sprintf("invalid integer %q", v), Err: err}
	}
	return n, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, &Error{Key: key, Reason: fmt.Sprintf("invalid bool %q", v), Err: err}
	}
	return b, nil
}
