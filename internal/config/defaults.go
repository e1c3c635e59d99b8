package config

const (
	defaultConfigPath  = "~/.config/matchdata/config.toml"
	projectConfigFile  = "matchdata.toml"
	defaultSourceDir   = "VCF_Mediacoach_Data/Temporada_24_25/La_Liga/Partidos"
	defaultOutputDir   = "data"
	defaultLogDir      = "~/.local/share/matchdata/logs"
	defaultLedgerPath  = "~/.local/share/matchdata/ledger.db"
	defaultSeason      = "24_25"
	defaultCompetition = "La Liga"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
)

// Environment variables consulted after the config file is decoded.
const (
	EnvSourceDir   = "MATCHDATA_SOURCE_DIR"
	EnvOutputDir   = "MATCHDATA_OUTPUT_DIR"
	EnvSeason      = "MATCHDATA_SEASON"
	EnvCompetition = "MATCHDATA_COMPETITION"
	EnvLogLevel    = "MATCHDATA_LOG_LEVEL"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir:  defaultSourceDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
			LedgerPath: defaultLedgerPath,
		},
		Season: Season{
			Season:      defaultSeason,
			Competition: defaultCompetition,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Ledger: Ledger{
			Enabled: true,
		},
	}
}
