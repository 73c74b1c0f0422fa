package main

import (
	"flag"
	"os"
)

var (
	flagRunAddr     string
	flagLogLevel    string
	flagDatabaseURI string
	flagIntentsFile string
	flagBaseURL     string
	flagHAURL       string
	flagHAToken     string
)

func parseFlags() {
	flag.StringVar(&flagRunAddr, "a", ":8080", "address and port to run server")
	flag.StringVar(&flagLogLevel, "l", "info", "log level")
	flag.StringVar(&flagDatabaseURI, "d", "", "database URI, entries are kept in memory when empty")
	flag.StringVar(&flagIntentsFile, "i", "", "intents file")
	flag.StringVar(&flagBaseURL, "b", "http://localhost:8080", "external base URL of the server")
	flag.StringVar(&flagHAURL, "ha-url", "", "home automation REST API URL")
	flag.StringVar(&flagHAToken, "ha-token", "", "home automation REST API token")
	flag.Parse()

	if envRunAddr := os.Getenv("RUN_ADDR"); envRunAddr != "" {
		flagRunAddr = envRunAddr
	}
	if envLogLevel := os.Getenv("LOG_LEVEL"); envLogLevel != "" {
		flagLogLevel = envLogLevel
	}
	if envDatabaseURI := os.Getenv("DATABASE_URI"); envDatabaseURI != "" {
		flagDatabaseURI = envDatabaseURI
	}
	if envIntentsFile := os.Getenv("INTENTS_FILE"); envIntentsFile != "" {
		flagIntentsFile = envIntentsFile
	}
	if envBaseURL := os.Getenv("BASE_URL"); envBaseURL != "" {
		flagBaseURL = envBaseURL
	}
	if envHAURL := os.Getenv("HA_URL"); envHAURL != "" {
		flagHAURL = envHAURL
	}
	if envHAToken := os.Getenv("HA_TOKEN"); envHAToken != "" {
		flagHAToken = envHAToken
	}
}
