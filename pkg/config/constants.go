package config

// Environment variable names used by tests and tooling.
const (
	EnvAppEnv = "KEKSOKO_APP_ENV"
	EnvPort   = "KEKSOKO_APP_PORT"

	EnvRedisURL = "KEKSOKO_REDIS_URL"

	EnvSessionSecret = "KEKSOKO_SESSION_SECRET"
	EnvSessionIssuer = "KEKSOKO_SESSION_ISSUER"

	EnvUpstreamBaseURL = "KEKSOKO_UPSTREAM_BASE_URL"

	EnvCheckoutPollInterval = "KEKSOKO_CHECKOUT_POLL_INTERVAL"
	EnvCheckoutPollTimeout  = "KEKSOKO_CHECKOUT_POLL_TIMEOUT"
	EnvCheckoutPhonePattern = "KEKSOKO_CHECKOUT_PHONE_PATTERN"
)
