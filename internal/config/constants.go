package config

const (
	DefaultDatabasePath  = "./jobdesk.db"
	DefaultSessionCookie = "jobdesk_session"
)
