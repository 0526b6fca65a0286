package command

const (
	JSONOutputFlag = "json"
	ConfigFlag     = "config"
	EnvFileFlag    = "env-file"
	LogLevelFlag   = "log-level"
)

const DefaultEnvFile = ".env"
