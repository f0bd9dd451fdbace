package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	DatabaseSchema  string `envconfig:"DATABASE_SCHEMA" default:"strot"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Cognito Auth, optional. Leaving the client id empty disables the
	// managed provider and only local sessions are accepted.
	CognitoUserPoolID string `envconfig:"COGNITO_USER_POOL_ID"`
	CognitoClientID   string `envconfig:"COGNITO_CLIENT_ID"`
	CognitoIssuerURL  string `envconfig:"COGNITO_ISSUER_URL"`

	// Supabase Storage (S3 compatible endpoint)
	StorageEndpoint      string `envconfig:"STORAGE_ENDPOINT"`
	StorageRegion        string `envconfig:"STORAGE_REGION" default:"us-east-1"`
	StorageAccessKeyID   string `envconfig:"STORAGE_ACCESS_KEY_ID"`
	StorageSecretKey     string `envconfig:"STORAGE_SECRET_ACCESS_KEY"`
	StorageBucketName    string `envconfig:"STORAGE_BUCKET_NAME" default:"donation-proofs"`
	StoragePublicBaseURL string `envconfig:"STORAGE_PUBLIC_BASE_URL"`

	// Stripe, optional. CSR contributions are recorded without a payment
	// intent when no key is set.
	StripeSecretKey string `envconfig:"STRIPE_SECRET_KEY"`
	CSRCurrency     string `envconfig:"CSR_CURRENCY" default:"inr"`

	// Auth Configuration
	CookieName       string `envconfig:"SESSION_COOKIE_NAME" default:"strot_session"`
	SessionMaxAgeSec int    `envconfig:"SESSION_MAX_AGE_SEC" default:"604800"` // 7 days

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// Seed
	SeedAdminEmail    string `envconfig:"SEED_ADMIN_EMAIL" default:"admin@strot.local"`
	SeedAdminPassword string `envconfig:"SEED_ADMIN_PASSWORD"`
}

func (c *Config) CognitoEnabled() bool {
	return c.CognitoClientID != "" && c.CognitoIssuerURL != ""
}

func (c *Config) StorageEnabled() bool {
	return c.StorageEndpoint != "" && c.StorageAccessKeyID != ""
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
