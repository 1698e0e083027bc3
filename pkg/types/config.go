package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Captcha token salt. Must match the value the previous deployment
	// used so tokens issued before a rollout still verify.
	CaptchaSalt string `envconfig:"CAPTCHA_SALT" default:"sbf-ankara-2024"`

	// Admin session
	SessionCookieName string `envconfig:"SESSION_COOKIE_NAME" default:"fp_session"`
	SessionMaxAgeSec  int    `envconfig:"SESSION_MAX_AGE_SEC" default:"28800"` // 8 hours
	SessionSecret     string `envconfig:"SESSION_SECRET"` // HS256 signing key, base64

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// File storage: "local" keeps receipts and policy PDFs under DataDir,
	// "s3" puts them in S3Bucket under the same keys.
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"local"`
	DataDir        string `envconfig:"DATA_DIR" default:"data"`
	S3Bucket       string `envconfig:"S3_BUCKET"`

	// Public read cache TTL for the form schema endpoint.
	FormCacheTTLSec uint `envconfig:"FORM_CACHE_TTL_SEC" default:"60"`
}
