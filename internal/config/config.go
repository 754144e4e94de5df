package config // package config loads application configuration from environment variables

import (
	"log"  // log is used to report configuration errors and halt execution
	"os"   // os provides access to environment variables
	"time" // time parses duration values
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Gateway credential blocks stay empty when
// a provider is not configured; the server then refuses that payment
// method at checkout instead of failing at startup.
type Config struct {
	Env       string        // application environment (e.g. "dev", "prod")
	Port      string        // HTTP port to listen on
	DBUser    string        // database username
	DBPass    string        // database password (optional)
	DBHost    string        // database host address
	DBPort    string        // database port number
	DBName    string        // database name
	JWTSecret string        // secret used to verify access tokens
	QRSecret  string        // secret used to sign admission QR tokens
	HoldTTL   time.Duration // seat hold lifetime in Redis

	Momo    MomoConfig
	PayPal  PayPalConfig
	Visa    VisaConfig
	Vnpay   VnpayConfig
	Zalopay ZalopayConfig
}

// MomoConfig carries the MoMo wallet credentials and endpoints.
type MomoConfig struct {
	PartnerCode string
	AccessKey   string
	SecretKey   string
	CreateURL   string
	QueryURL    string
	ReturnURL   string
	IPNURL      string
}

// PayPalConfig carries the PayPal REST credentials and endpoints.
type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	BaseURL      string
	SuccessURL   string
	CancelURL    string
	BrandName    string
}

// VisaConfig carries the Stripe secret key and redirect URLs.
type VisaConfig struct {
	SecretKey  string
	SuccessURL string
	CancelURL  string
}

// VnpayConfig carries the VNPay terminal credentials and endpoints.
type VnpayConfig struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	QueryURL   string
	ReturnURL  string
}

// ZalopayConfig carries the ZaloPay app credentials and endpoints.
type ZalopayConfig struct {
	AppID     int64
	Key1      string
	Endpoint  string
	QueryURL  string
	ReturnURL string
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Provider blocks
// are optional by design.
func Load() Config {
	return Config{
		Env:       must("APP_ENV"),
		Port:      must("APP_PORT"),
		DBUser:    must("DB_USER"),
		DBPass:    os.Getenv("DB_PASS"), // empty allowed
		DBHost:    must("DB_HOST"),
		DBPort:    must("DB_PORT"),
		DBName:    must("DB_NAME"),
		JWTSecret: must("JWT_SECRET"),
		QRSecret:  must("QR_SECRET"),
		HoldTTL:   mustDur("SEAT_HOLD_TTL", 5*time.Minute),
		Momo: MomoConfig{
			PartnerCode: os.Getenv("MOMO_PARTNER_CODE"),
			AccessKey:   os.Getenv("MOMO_ACCESS_KEY"),
			SecretKey:   os.Getenv("MOMO_SECRET_KEY"),
			CreateURL:   os.Getenv("MOMO_CREATE_URL"),
			QueryURL:    os.Getenv("MOMO_QUERY_URL"),
			ReturnURL:   os.Getenv("MOMO_RETURN_URL"),
			IPNURL:      os.Getenv("MOMO_IPN_URL"),
		},
		PayPal: PayPalConfig{
			ClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
			ClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
			AuthURL:      os.Getenv("PAYPAL_AUTH_URL"),
			BaseURL:      os.Getenv("PAYPAL_BASE_URL"),
			SuccessURL:   os.Getenv("PAYPAL_SUCCESS_URL"),
			CancelURL:    os.Getenv("PAYPAL_CANCEL_URL"),
			BrandName:    envStr("PAYPAL_BRAND_NAME", "cinetick"),
		},
		Visa: VisaConfig{
			SecretKey:  os.Getenv("STRIPE_SECRET_KEY"),
			SuccessURL: os.Getenv("STRIPE_SUCCESS_URL"),
			CancelURL:  os.Getenv("STRIPE_CANCEL_URL"),
		},
		Vnpay: VnpayConfig{
			TmnCode:    os.Getenv("VNPAY_TMN_CODE"),
			HashSecret: os.Getenv("VNPAY_HASH_SECRET"),
			PayURL:     os.Getenv("VNPAY_PAY_URL"),
			QueryURL:   os.Getenv("VNPAY_QUERY_URL"),
			ReturnURL:  os.Getenv("VNPAY_RETURN_URL"),
		},
		Zalopay: ZalopayConfig{
			AppID:     int64(envInt("ZALOPAY_APP_ID", 0)),
			Key1:      os.Getenv("ZALOPAY_KEY1"),
			Endpoint:  os.Getenv("ZALOPAY_ENDPOINT"),
			QueryURL:  os.Getenv("ZALOPAY_QUERY_URL"),
			ReturnURL: os.Getenv("ZALOPAY_RETURN_URL"),
		},
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustDur parses a duration variable, falling back to def when unset and
// exiting when the value is present but malformed.
func mustDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", key, v)
	}
	return d
}
