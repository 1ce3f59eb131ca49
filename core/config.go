package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	serverConfig struct {
		Host                      string
		Address                   string
		DebugAddress              string
		FrontendBaseURL           string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		ShutdownTimeout           time.Duration
		DisableReqLogs            bool
	}

	databaseConfig struct {
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

	mongoConfig struct {
		URI      string
		Database string
		Timeout  time.Duration
	}

	redisConfig struct {
		Address      string
		Password     string
		DB           int
		DashboardTTL time.Duration
	}

	geminiConfig struct {
		APIKey string
		Model  string
	}

	muxlisaConfig struct {
		APIKey  string
		BaseURL string
		Timeout time.Duration
	}

	storageConfig struct {
		Driver          string // local | oss
		LocalDir        string
		LocalBaseURL    string
		OSSEndpoint     string
		OSSAccessKey    string
		OSSSecretKey    string
		OSSBucket       string
		CoverMaxWidth   int
		MaxUploadSizeMB int64
	}

	Config struct {
		Env                       string
		Build                     string
		AppName                   string
		Debug                     bool
		TestMode                  bool
		WorkDir                   string
		SecretKey                 string
		RollbarToken              string
		SendgridApiKey            string
		DefaultFromEmail          mail.Address
		PasswordResetTimeoutDelta time.Duration

		Server   serverConfig
		Database databaseConfig
		Mongo    mongoConfig
		Redis    redisConfig
		Gemini   geminiConfig
		Muxlisa  muxlisaConfig
		Storage  storageConfig
	}
)

func (dbc databaseConfig) Address() string {
	return dbc.Host + ":" + dbc.Port
}

// NewConfig loads the app configuration from the environment (and config/.env.<env> if present).
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("build", "dev")
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "Kitob AI")
	conf.SetDefault("secretKey", "k1t0b-s3cr3t)f7q$+22=hx&uo#*d9(#yz4h^$ab2emy")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("defaultFromName", "Kitob AI")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverAddress", ":8000")
	conf.SetDefault("serverDebugAddress", ":4000")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("jwtRefreshExpirationDelta", 30*24*time.Hour)
	conf.SetDefault("shutdownTimeout", 10*time.Second)
	conf.SetDefault("disableReqLogs", false)

	conf.SetDefault("dbEngine", "postgres")
	conf.SetDefault("dbHost", "localhost")
	conf.SetDefault("dbPort", "5432")
	conf.SetDefault("dbName", "kitob")
	conf.SetDefault("dbUser", "kitob")
	conf.SetDefault("dbPassword", "kitob")
	conf.SetDefault("dbAdminUser", "postgres")
	conf.SetDefault("dbAdminPassword", "postgres")
	conf.SetDefault("dbDisableTLS", true)

	conf.SetDefault("mongoURI", "mongodb://localhost:27017")
	conf.SetDefault("mongoDatabase", "kitob")
	conf.SetDefault("mongoTimeout", 10*time.Second)

	conf.SetDefault("redisAddress", "localhost:6379")
	conf.SetDefault("redisPassword", "")
	conf.SetDefault("redisDB", 0)
	conf.SetDefault("dashboardCacheTTL", 30*time.Second)

	conf.SetDefault("geminiApiKey", "")
	conf.SetDefault("geminiModel", "gemini-1.5-flash")

	conf.SetDefault("muxlisaApiKey", "")
	conf.SetDefault("muxlisaBaseURL", "https://service.muxlisa.uz")
	conf.SetDefault("muxlisaTimeout", 60*time.Second)

	conf.SetDefault("storageDriver", "local")
	conf.SetDefault("storageLocalDir", "media")
	conf.SetDefault("storageLocalBaseURL", "http://localhost:8000/media")
	conf.SetDefault("ossEndpoint", "")
	conf.SetDefault("ossAccessKey", "")
	conf.SetDefault("ossSecretKey", "")
	conf.SetDefault("ossBucket", "")
	conf.SetDefault("coverMaxWidth", 1200)
	conf.SetDefault("maxUploadSizeMB", 10)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd(): %v", err)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Env:            env,
		Build:          conf.GetString("build"),
		AppName:        conf.GetString("appName"),
		Debug:          conf.GetBool("debug"),
		TestMode:       conf.GetBool("testMode"),
		WorkDir:        wd,
		SecretKey:      conf.GetString("secretKey"),
		RollbarToken:   conf.GetString("rollbarToken"),
		SendgridApiKey: conf.GetString("sendgridApiKey"),
		DefaultFromEmail: mail.Address{
			Name:    conf.GetString("defaultFromName"),
			Address: conf.GetString("defaultFromEmail"),
		},
		PasswordResetTimeoutDelta: conf.GetDuration("passwordResetTimeoutDelta"),
		Server: serverConfig{
			Host:                      conf.GetString("serverHost"),
			Address:                   conf.GetString("serverAddress"),
			DebugAddress:              conf.GetString("serverDebugAddress"),
			FrontendBaseURL:           conf.GetString("frontendBaseURL"),
			JWTExpirationDelta:        conf.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("jwtRefreshExpirationDelta"),
			ShutdownTimeout:           conf.GetDuration("shutdownTimeout"),
			DisableReqLogs:            conf.GetBool("disableReqLogs"),
		},
		Database: databaseConfig{
			Engine:        conf.GetString("dbEngine"),
			Host:          conf.GetString("dbHost"),
			Port:          conf.GetString("dbPort"),
			Name:          conf.GetString("dbName"),
			User:          conf.GetString("dbUser"),
			Password:      conf.GetString("dbPassword"),
			AdminUser:     conf.GetString("dbAdminUser"),
			AdminPassword: conf.GetString("dbAdminPassword"),
			DisableTLS:    conf.GetBool("dbDisableTLS"),
		},
		Mongo: mongoConfig{
			URI:      conf.GetString("mongoURI"),
			Database: conf.GetString("mongoDatabase"),
			Timeout:  conf.GetDuration("mongoTimeout"),
		},
		Redis: redisConfig{
			Address:      conf.GetString("redisAddress"),
			Password:     conf.GetString("redisPassword"),
			DB:           conf.GetInt("redisDB"),
			DashboardTTL: conf.GetDuration("dashboardCacheTTL"),
		},
		Gemini: geminiConfig{
			APIKey: conf.GetString("geminiApiKey"),
			Model:  conf.GetString("geminiModel"),
		},
		Muxlisa: muxlisaConfig{
			APIKey:  conf.GetString("muxlisaApiKey"),
			BaseURL: conf.GetString("muxlisaBaseURL"),
			Timeout: conf.GetDuration("muxlisaTimeout"),
		},
		Storage: storageConfig{
			Driver:          conf.GetString("storageDriver"),
			LocalDir:        conf.GetString("storageLocalDir"),
			LocalBaseURL:    conf.GetString("storageLocalBaseURL"),
			OSSEndpoint:     conf.GetString("ossEndpoint"),
			OSSAccessKey:    conf.GetString("ossAccessKey"),
			OSSSecretKey:    conf.GetString("ossSecretKey"),
			OSSBucket:       conf.GetString("ossBucket"),
			CoverMaxWidth:   conf.GetInt("coverMaxWidth"),
			MaxUploadSizeMB: conf.GetInt64("maxUploadSizeMB"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests, without reading the environment.
func NewTestConfig() *Config {
	return &Config{
		Env:                       "TEST",
		Build:                     "test",
		AppName:                   "Kitob AI",
		TestMode:                  true,
		SecretKey:                 "test-secret",
		DefaultFromEmail:          mail.Address{Name: "Kitob AI", Address: "noreply@test.uz"},
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: serverConfig{
			FrontendBaseURL:           "http://localhost:3000",
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			ShutdownTimeout:           time.Second,
			DisableReqLogs:            true,
		},
		Muxlisa: muxlisaConfig{BaseURL: "http://muxlisa.test", Timeout: 5 * time.Second},
		Storage: storageConfig{Driver: "local", LocalBaseURL: "http://localhost/media", CoverMaxWidth: 1200, MaxUploadSizeMB: 10},
	}
}

func (c *Config) String() string {
	return fmt.Sprintf("%s(%s) env=%s debug=%v", c.AppName, c.Build, c.Env, c.Debug)
}
