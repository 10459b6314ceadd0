package core

import (
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName      string
		Env          string // DEV (local; default), TEST, QA, PROD
		Debug        bool
		TestMode     bool
		Build        string
		RollbarToken string
		WorkDir      string
		Storage      string // inmem | postgres
		Server       ServerConfig
		Database     DatabaseConfig
		Forms        FormsConfig
	}

	ServerConfig struct {
		Host           string
		Address        string
		DisableReqLogs bool
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	FormsConfig struct {
		File     string // optional YAML/JSON file with extra form definitions
		PageSize int
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// UsesPostgres reports whether submissions are stored in PostgreSQL.
func (c *Config) UsesPostgres() bool {
	return c.Storage == "postgres"
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "Masomo Forms")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "dev")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("storage", "inmem")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "masomo_forms")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("forms.file", "")
	v.SetDefault("forms.pageSize", 15)
}

// LoadConfig reads the configuration from defaults, `config/.env.<env>` (if it exists)
// and the environment. Environment keys are prefixed with the env name, e.g.
// DEV_DATABASE_HOST or PROD_ROLLBARTOKEN.
func LoadConfig() (*Config, error) {
	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	wd, err := Getwd()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	if env == "TEST" {
		v.SetDefault("testMode", true)
		v.SetDefault("server.disableReqLogs", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "stat %s", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{
		AppName:      v.GetString("appName"),
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		Build:        v.GetString("build"),
		RollbarToken: v.GetString("rollbarToken"),
		WorkDir:      wd,
		Storage:      strings.ToLower(v.GetString("storage")),
		Server: ServerConfig{
			Host:           v.GetString("server.host"),
			Address:        v.GetString("server.address"),
			DisableReqLogs: v.GetBool("server.disableReqLogs"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Forms: FormsConfig{
			File:     v.GetString("forms.file"),
			PageSize: v.GetInt("forms.pageSize"),
		},
	}

	switch conf.Storage {
	case "inmem", "postgres":
	default:
		return nil, errors.Errorf("unknown storage %q (want inmem or postgres)", conf.Storage)
	}
	if conf.Forms.File != "" && !filepath.IsAbs(conf.Forms.File) {
		conf.Forms.File = filepath.Join(wd, conf.Forms.File)
	}
	return conf, nil
}
