package config

const (
	// EnvPrefix is intentionally empty: every variable names its full key in
	// its envconfig tag.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv                 = "PARTNERHUB_APP_ENV"
	EnvPort                   = "PARTNERHUB_APP_PORT"
	EnvDBDSN                  = "PARTNERHUB_DB_DSN"
	EnvDBHost                 = "PARTNERHUB_DB_HOST"
	EnvDBUser                 = "PARTNERHUB_DB_USER"
	EnvDBName                 = "PARTNERHUB_DB_NAME"
	EnvRedisURL               = "PARTNERHUB_REDIS_URL"
	EnvJWTSecret              = "PARTNERHUB_JWT_SECRET"
	EnvJWTIssuer              = "PARTNERHUB_JWT_ISSUER"
	EnvJWTExpMins             = "PARTNERHUB_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "PARTNERHUB_REFRESH_TOKEN_TTL_MINUTES"
	EnvGCPProjectID           = "PARTNERHUB_GCP_PROJECT_ID"
	EnvGCSBucket              = "PARTNERHUB_GCS_BUCKET_NAME"
	EnvGCSUploadExpiry        = "PARTNERHUB_GCS_UPLOAD_URL_EXPIRY"
	EnvGCSDownloadExpiry      = "PARTNERHUB_GCS_DOWNLOAD_URL_EXPIRY"
	EnvPartnerEventsTopic     = "PARTNERHUB_PUBSUB_PARTNER_EVENTS_TOPIC"
)

// legacyDBEnvVars are the discrete connection variables accepted when a full
// DSN is not supplied.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
