package core

// Logger is any service that can log messages.
// Expected args: error, map[string]interface{}, auth.Identity or user.User (the acting user, reported once).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
