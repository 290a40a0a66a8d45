package logging

import (
	"fmt"
	"log"
	"os"
	"sort"
	"time"
)

// writeLog is the unified internal logging function that handles all
// output. DEBUG/INFO/WARN go to stdout, ERROR/FATAL to stderr. Fields are
// appended key-sorted so output is stable for tests and grepping.
func (l *Logger) writeLog(level, msg string, fields map[string]interface{}) {
	logMsg := fmt.Sprintf("[%s] [%s] %s: %s", GetTimestamp(), level, l.name, msg)

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		logMsg += " |"
		for _, k := range keys {
			logMsg += fmt.Sprintf(" %s=%v", k, fields[k])
		}
	}

	if level == "ERROR" || level == "FATAL" {
		fmt.Fprintf(os.Stderr, "%s\n", logMsg)
	} else {
		log.Println(logMsg)
	}
}

// logf is the internal logging function for formatted messages
func (l *Logger) logf(level, msg string, args ...interface{}) {
	l.writeLog(level, fmt.Sprintf(msg, args...), l.fields)
}

// GetTimestamp returns a formatted timestamp
// Uses RFC3339 format for sortability and timezone awareness
// Can be overridden via LOG_TIMESTAMP env var for testing
func GetTimestamp() string {
	if override := os.Getenv("LOG_TIMESTAMP"); override != "" {
		return override
	}
	return time.Now().Format(time.RFC3339)
}
