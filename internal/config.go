package internal

import "time"

type Config struct {
	HTTPAddr       string `env:"HTTP_ADDR,default=:8080"`
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,default=INFO"`

	BufferSize    int  `env:"BUFFER_SIZE,default=64"`
	LimitMessages *int `env:"LIMIT_MESSAGES"`

	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	ResetTokenTTL     time.Duration `env:"RESET_TOKEN_TTL,default=1h"`
	ResetURL          string        `env:"RESET_URL,default=/login.html"`

	// Secrets are looked up by name in the secret store at call time;
	// only the names live in plain configuration.
	SigningSecretName string `env:"SIGNING_SECRET_NAME,default=EASYCHAT_JWT_SECRET"`
	MailSecretName    string `env:"MAIL_SECRET_NAME,default=SMTP_PASSWORD"`

	SMTPHost    string        `env:"SMTP_HOST,default=smtp.gmail.com"`
	SMTPPort    int           `env:"SMTP_PORT,default=587"`
	SMTPUser    string        `env:"SMTP_USER"`
	SMTPUseTLS  bool          `env:"SMTP_USE_TLS,default=true"`
	SMTPTimeout time.Duration `env:"SMTP_TIMEOUT,default=30s"`

	SenderAddr      string `env:"SENDER_ADDR,required=true"`
	NotifyBcc       string `env:"NOTIFY_BCC"`
	NotifierEnabled bool   `env:"NOTIFIER_ENABLED,default=true"`
}
