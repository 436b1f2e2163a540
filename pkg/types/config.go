package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"3001"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Payments
	StripeAPIKey string `envconfig:"STRIPE_API_KEY"`
	// Cents charged per exported record.
	PricePerRecordCents int64 `envconfig:"PRICE_PER_RECORD_CENTS" default:"5"`
	// Code is compared case-insensitively. Empty disables discounts.
	DiscountCode string `envconfig:"DISCOUNT_CODE" default:"FREEUCC2024"`
	// Total charged when the discount code applies.
	DiscountedTotalCents int64 `envconfig:"DISCOUNTED_TOTAL_CENTS" default:"1"`

	// Uploads
	UploadDir      string `envconfig:"UPLOAD_DIR" default:"uploads"`
	MaxUploadBytes int64  `envconfig:"MAX_UPLOAD_BYTES" default:"52428800"` // 50 MiB

	// Raw uploads are archived here after a successful import.
	// Empty disables archiving.
	S3ArchiveBucket string `envconfig:"S3_ARCHIVE_BUCKET"`

	// Emails allowed to call the admin endpoints (upload,
	// save-configuration). Empty list leaves the gate open.
	AdminEmails []string `envconfig:"ADMIN_EMAILS"`

	// Origins allowed by the CORS middleware.
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
}
