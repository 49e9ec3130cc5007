package config

import "time"

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, syncChannel, announceChannel string) *Slack {
	return &Slack{
		botToken:        botToken,
		syncChannel:     syncChannel,
		announceChannel: announceChannel,
	}
}

// NewAuthForTest creates an Auth config for testing purposes
func NewAuthForTest(clientID, noAuthSub string) *Auth {
	return &Auth{
		clientID:  clientID,
		noAuthSub: noAuthSub,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewDirectoryForTest creates a Directory config for testing purposes
func NewDirectoryForTest(tenantID, clientID, clientSecret string) *Directory {
	return &Directory{tenantID: tenantID, clientID: clientID, clientSecret: clientSecret}
}

// NewSyncForTest creates a Sync config for testing purposes
func NewSyncForTest(pageSize int, rateEvery time.Duration, burst int) *Sync {
	return &Sync{
		pageSize:       pageSize,
		timeout:        time.Second,
		rateLimitEvery: rateEvery,
		rateLimitBurst: burst,
	}
}

var RedactFilter = redactFilter
