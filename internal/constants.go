package internal

const (
	COOKIE_ACCESS_TOKEN_NAME = "strot_access_token"
	COOKIE_REDIRECT_NAME     = "strot_redirect"
)
