package constants

import "time"

const (
	DefaultHTTPTimeout = 10 * time.Second
)

const (
	CacheKeyPrefixTransaction = "txn:"
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	HTTPStatusOKMin = 200
	HTTPStatusOKMax = 300
)

const (
	// DateDisplayFormat renders deadlines the way they appear in
	// notification emails, e.g. "7 February 2022".
	DateDisplayFormat = "2 January 2006"

	DefaultDisplayTimezone = "Europe/London"
)
