package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. The types reflect how the values are used
// in the application: strings for identifiers and secrets, ints for
// durations and costs.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	AccessTokenSecret  string // secret used to sign access tokens
	RefreshTokenSecret string // secret used to sign refresh tokens
	AccessTTLMin       int    // access token time-to-live in minutes
	RefreshTTLDays     int    // refresh token time-to-live in days
	OTPTTLMin          int    // verification code time-to-live in minutes
	BcryptCost         int    // bcrypt cost for password hashing

	GoogleClientID          string // OAuth client id for Google federation
	GoogleClientSecret      string // OAuth client secret
	GoogleRedirectURI       string // callback URL registered with Google
	GoogleClientRedirectURL string // frontend URL tokens/errors are redirected to

	SMTPHost string // SMTP server host for OTP email delivery
	SMTPPort string // SMTP server port (implicit TLS)
	SMTPUser string // SMTP username
	SMTPPass string // SMTP password
	SMTPFrom string // From address (defaults to SMTPUser)

	RabbitURL string // AMQP broker URL (optional, local default)
}

// Load reads configuration values from the environment, after loading a
// .env file when one is present. Required variables are enforced by
// must() and missing values cause the program to exit with a fatal log
// message.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:  must("APP_ENV"),
		Port: must("APP_PORT"),

		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		AccessTokenSecret:  must("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: must("REFRESH_TOKEN_SECRET"),
		AccessTTLMin:       mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:     mustInt("REFRESH_TOKEN_TTL_DAYS"),
		OTPTTLMin:          mustInt("OTP_TTL_MIN"),
		BcryptCost:         mustInt("BCRYPT_COST"),

		GoogleClientID:          must("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:      must("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURI:       must("GOOGLE_REDIRECT_URI"),
		GoogleClientRedirectURL: must("GOOGLE_CLIENT_REDIRECT_URL"),

		SMTPHost: must("SMTP_HOST"),
		SMTPPort: must("SMTP_PORT"),
		SMTPUser: must("SMTP_USER"),
		SMTPPass: must("SMTP_PASS"),
		SMTPFrom: os.Getenv("SMTP_FROM"),

		RabbitURL: os.Getenv("RABBITMQ_URL"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
