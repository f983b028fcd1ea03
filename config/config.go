package config

import (
	"time"
)

type AppConfig struct {
	APIPort string `env:"PORT" envDefault:"12222"`
	APIKey  string `env:"API_KEY"`
	Workers int    `env:"TRIAGE_WORKERS" envDefault:"8"`
	// DraftsDir is where the local draft store writes drafts, empty keeps
	// them in memory only.
	DraftsDir string `env:"DRAFTS_DIR"`
}

// PolicyConfig is the env view of the triage policy. Lists read here are
// extended by the optional policy file.
type PolicyConfig struct {
	PolicyFile                 string   `env:"POLICY_FILE"`
	PriorityThreshold          int      `env:"PRIORITY_THRESHOLD" envDefault:"70"`
	MaxEmails                  int      `env:"MAX_EMAILS_TO_PROCESS" envDefault:"100"`
	VIPEmails                  []string `env:"VIP_EMAILS" envSeparator:","`
	VIPDomains                 []string `env:"VIP_DOMAINS" envSeparator:","`
	TeamDomains                []string `env:"TEAM_DOMAINS" envSeparator:","`
	AllowedDomains             []string `env:"ALLOWED_DOMAINS" envSeparator:","`
	BlockedDomains             []string `env:"BLOCKED_DOMAINS" envSeparator:","`
	DNDMode                    bool     `env:"DND_MODE" envDefault:"false"`
	AutoResponder              bool     `env:"AUTO_RESPONDER" envDefault:"true"`
	RequireApprovalForExternal bool     `env:"REQUIRE_APPROVAL_FOR_EXTERNAL" envDefault:"true"`
	EnablePIIDetection         bool     `env:"ENABLE_PII_DETECTION" envDefault:"true"`
	EnableDomainRestrictions   bool     `env:"ENABLE_DOMAIN_RESTRICTIONS" envDefault:"true"`
	EnableToneEnforcement      bool     `env:"ENABLE_TONE_ENFORCEMENT" envDefault:"true"`
}

// CapabilitiesConfig is the set of mail permissions granted to the runner,
// as OAuth style scopes.
type CapabilitiesConfig struct {
	Scopes []string `env:"MAIL_SCOPES" envSeparator:"," envDefault:"readonly,compose,send,modify"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	Prefix   string `env:"REDIS_SEEN_PREFIX" envDefault:"mailtriage:seen:"`
	TTLHours int    `env:"REDIS_SEEN_TTL_HOURS" envDefault:"168"`
}

// RabbitMQConfig drives the decision publisher. An empty URL disables it.
type RabbitMQConfig struct {
	URL                 string        `env:"RABBITMQ_URL"`
	MessageTTL          time.Duration `env:"RABBITMQ_MESSAGE_TTL" envDefault:"240h"`
	MaxRetries          int           `env:"RABBITMQ_PUBLISH_RETRIES" envDefault:"3"`
	PublishTimeout      time.Duration `env:"RABBITMQ_PUBLISH_TIMEOUT" envDefault:"5s"`
	ReconnectBackoff    time.Duration `env:"RABBITMQ_RECONNECT_BACKOFF" envDefault:"1s"`
	MaxReconnectBackoff time.Duration `env:"RABBITMQ_MAX_RECONNECT_BACKOFF" envDefault:"30s"`
}

type CronConfig struct {
	// Heartbeat check, every minute
	HeartbeatSchedule string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// TriageSchedule is a cron spec with seconds, empty disables the job.
	TriageSchedule string `env:"CRON_SCHEDULE_TRIAGE"`
	SourceDir      string `env:"CRON_SOURCE_DIR"`
	ScreenDomains  bool   `env:"CRON_SCREEN_DOMAINS" envDefault:"false"`
}

type AIConfig struct {
	Url            string `env:"AI_API_URL"`
	ApiKey         string `env:"AI_API_KEY"`
	TimeoutSeconds int    `env:"AI_TIMEOUT_SECONDS" envDefault:"30"`
}

// IMAPConfig points scheduled runs at a live mailbox. The folder is always
// opened read-only.
type IMAPConfig struct {
	Server     string `env:"IMAP_SERVER"`
	Port       int    `env:"IMAP_PORT" envDefault:"993"`
	TLS        bool   `env:"IMAP_TLS" envDefault:"true"`
	Username   string `env:"IMAP_USERNAME"`
	Password   string `env:"IMAP_PASSWORD"`
	Folder     string `env:"IMAP_FOLDER" envDefault:"INBOX"`
	UnseenOnly bool   `env:"IMAP_UNSEEN_ONLY" envDefault:"true"`
}

// DraftStorageConfig selects an S3 compatible bucket for drafts. An empty
// bucket keeps the local draft store.
type DraftStorageConfig struct {
	Provider        string `env:"DRAFTS_STORAGE_PROVIDER" envDefault:"s3"`
	Bucket          string `env:"DRAFTS_BUCKET"`
	Prefix          string `env:"DRAFTS_PREFIX" envDefault:"drafts/"`
	Region          string `env:"DRAFTS_AWS_REGION" envDefault:"eu-west-1"`
	R2AccountID     string `env:"DRAFTS_R2_ACCOUNT_ID"`
	AccessKeyID     string `env:"DRAFTS_ACCESS_KEY_ID"`
	AccessKeySecret string `env:"DRAFTS_ACCESS_KEY_SECRET"`
}
