package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	acceptnorm "github.com/always-cache/accept-norm"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// CLI flags
	portFlag           int
	originFlag         string
	addrFlag           string
	hostFlag           string
	configFilenameFlag string
	preferredFlag      string
	modeFlag           string
	verbosityTraceFlag bool
	logFilenameFlag    string

	// this is set by goreleaser
	version string
)

func init() {
	flag.StringVar(&originFlag, "origin", "", "Origin URL to proxy to (overrides addr and host)")
	flag.StringVar(&addrFlag, "addr", "", "Origin IP address to proxy to")
	flag.StringVar(&hostFlag, "host", "", "Hostname of origin")
	flag.IntVar(&portFlag, "port", 8080, "Port to listen on")
	flag.StringVar(&configFilenameFlag, "config", "", "Path to config file")
	flag.StringVar(&preferredFlag, "preferred", "", "Comma-separated preferred media types (overrides config)")
	flag.StringVar(&modeFlag, "mode", acceptnorm.ModeCanonicalize, "Normalization mode: canonicalize, filter, best or prefer")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.StringVar(&logFilenameFlag, "log-file", "", "Log file to use (in addition to stdout)")

	if version == "" {
		version = "DEV"
	}
}

func main() {
	flag.Parse()

	// set log level
	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stdout
	// also output to logfile if specified
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: os.Stdout})
	if logFilenameFlag != "" {
		if logFileOutput, err := os.OpenFile(logFilenameFlag, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644); err != nil {
			log.Fatal().Err(err).Msg("Cannot open log file")
		} else {
			logOutputs = append(logOutputs, logFileOutput)
		}
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Str("version", version).Logger()

	normConfig := acceptnorm.Config{}

	var origin string

	if configFilenameFlag != "" {
		config, err := getConfig(configFilenameFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("Cannot read config file")
		}
		if len(config.Origins) != 1 {
			log.Fatal().Msg("Need exactly one origin")
		}
		originConfig := config.Origins[0]
		origin = originConfig.Origin
		normConfig.OriginHost = originConfig.Host
		normConfig.Rules = originConfig.Rules
	}

	// flags override config
	if originFlag != "" {
		origin = originFlag
	}
	if preferredFlag != "" {
		normConfig.Rules = acceptnorm.Rules{
			{Mode: modeFlag, Preferred: preferredFlag},
		}
	}
	if len(normConfig.Rules) == 0 {
		// canonicalize everything if nothing is configured
		normConfig.Rules = acceptnorm.Rules{{}}
	}
	if err := normConfig.Rules.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid rules")
	}

	// get the downstream server address
	if origin != "" {
		originUrl, err := url.Parse(origin)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not parse url")
		}
		normConfig.OriginURL = *originUrl
	} else if addrFlag != "" {
		originUrl, err := url.Parse("https://" + addrFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not parse url")
		}
		normConfig.OriginURL = *originUrl
		normConfig.OriginHost = hostFlag
	} else {
		log.Fatal().Msg("Please specify origin")
	}

	anorm := acceptnorm.New(normConfig)
	log.Info().Msgf("Proxying port %v to %s (with hostname '%s')", portFlag, normConfig.OriginURL.String(), normConfig.OriginHost)
	err := http.ListenAndServe(fmt.Sprintf(":%d", portFlag), anorm)

	if err != nil {
		panic(err)
	}
}
