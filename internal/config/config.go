// Package config provides functionality for managing configuration options
// for the application using command-line flags and environment variables.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log"
	"os"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the server's listening address (ip:port).
	Addr string `json:"address"`

	// DatabaseDSN holds the database connection string for the row store.
	DatabaseDSN string `json:"database_dsn"`

	// SessionKey signs and encrypts the login session cookie. When
	// empty, a random key is generated at startup and sessions do not
	// survive a restart.
	SessionKey string `json:"session_key"`

	// LogLevel sets the logging verbosity.
	LogLevel string `json:"log_level"`

	// Config is the path to the config file.
	Config string `json:"-"`
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Addr, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.LogLevel, "l", "Info", "log level")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Addr = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if key := os.Getenv("SESSION_KEY"); key != "" {
		options.SessionKey = key
	}

	if options.SessionKey == "" {
		log.Println("WARNING: no session key configured, generating a random one; sessions will be invalidated on restart")
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err != nil {
			log.Fatalf("error while generating session key: %v", err)
		}
		options.SessionKey = hex.EncodeToString(randomKey)
	}

	return options
}
