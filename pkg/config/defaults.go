package config

import "time"

// SonarQube connection defaults.
const (
	DefaultURL             = "http://localhost:9000"
	DefaultProjectKey      = "lineage-sonar"
	DefaultPageSize        = 500
	MaxPageSize            = 500 // server-side cap on ps
	DefaultTimeout         = time.Duration(0)
	DefaultMaxResponseSize = "64MB"
)

// Report defaults.
const (
	DefaultReportDuplications = true
	DefaultReportCoverage     = true
	DefaultReportValidateJSON = true
	DefaultReportNoColor      = false
)

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = LogFormatText
)

// Telemetry defaults.
const (
	DefaultOTLPEndpoint    = ""
	DefaultOTLPInsecure    = false
	DefaultMetricsTextfile = ""
	DefaultEnvironment     = ""
)
