package config

const (
	defaultConfigPath       = "~/.config/tasklist/config.toml"
	defaultDataDir          = "~/.local/share/tasklist"
	defaultLogDir           = "~/.local/share/tasklist/logs"
	defaultBind             = "127.0.0.1:7489"
	defaultMaxBodyBytes     = 1 << 20
	defaultBackend          = BackendFile
	defaultFileName         = "todos.json"
	defaultServerURL        = "http://127.0.0.1:7489"
	defaultTimeoutSeconds   = 10
	defaultOnSaveFailure    = SaveFailureRollback
	defaultSaveRetries      = 2
	defaultRetryBaseDelayMS = 200
	defaultRetryMaxDelayMS  = 2000
	defaultLocale           = "en"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Client save failure policies.
const (
	SaveFailureRollback = "rollback"
	SaveFailureKeep     = "keep"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Server: Server{
			Bind:         defaultBind,
			MaxBodyBytes: defaultMaxBodyBytes,
		},
		Storage: Storage{
			Backend:      defaultBackend,
			FileName:     defaultFileName,
			AtomicWrites: true,
			SeedEmpty:    true,
		},
		Client: Client{
			ServerURL:        defaultServerURL,
			TimeoutSeconds:   defaultTimeoutSeconds,
			OnSaveFailure:    defaultOnSaveFailure,
			SaveRetries:      defaultSaveRetries,
			RetryBaseDelayMS: defaultRetryBaseDelayMS,
			RetryMaxDelayMS:  defaultRetryMaxDelayMS,
			Locale:           defaultLocale,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
