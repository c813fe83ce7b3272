package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName      string
		Env          string // DEV (local; default), TEST, QA, PROD
		Build        string
		Debug        bool
		TestMode     bool
		SecretKey    string
		RollbarToken string

		Server   ServerConfig
		Database DatabaseConfig
		Session  SessionConfig
		Seed     SeedConfig
	}

	ServerConfig struct {
		Host            string
		Addr            string
		DebugHost       string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
	}

	DatabaseConfig struct {
		Path string
	}

	SessionConfig struct {
		CookieName string
		MaxAge     time.Duration
		Secure     bool
	}

	// SeedConfig holds the default dataset written on first run and on reset.
	SeedConfig struct {
		AdminUsername string
		AdminPassword string
		Users         []SeedAccount
		Module        SeedModule
	}

	SeedAccount struct {
		Username string
		Password string
	}

	SeedModule struct {
		Title    string
		Duration string
		Question string
		Answer   string
	}
)

// NewConfig loads the Config from defaults, an optional `config/.env.<env>` file and the environment.
// Environment variables are prefixed with the upper-cased ENV, e.g. `DEV_SERVER_ADDR`.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "Mafunzo")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("secretKey", "mz8#q2-v@h!4)kle0$w+u7=r3x9(pj^f&c1t5*dn6")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.debugHost", ":5001")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("database.path", "mafunzo.db")

	v.SetDefault("session.cookieName", "mafunzo_session")
	v.SetDefault("session.maxAge", 12*time.Hour)
	v.SetDefault("session.secure", false)

	v.SetDefault("seed.adminUsername", "admin")
	v.SetDefault("seed.adminPassword", "secret")
	v.SetDefault("seed.users", "user1:password123,user2:password456")
	v.SetDefault("seed.module.title", "Database 101")
	v.SetDefault("seed.module.duration", "10 minutes")
	v.SetDefault("seed.module.question", "What does SQL stand for?")
	v.SetDefault("seed.module.answer", "Structured Query Language")

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("debug", false)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:      v.GetString("appName"),
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Addr:            v.GetString("server.addr"),
			DebugHost:       v.GetString("server.debugHost"),
			ReadTimeout:     v.GetDuration("server.readTimeout"),
			WriteTimeout:    v.GetDuration("server.writeTimeout"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
		},
		Database: DatabaseConfig{
			Path: v.GetString("database.path"),
		},
		Session: SessionConfig{
			CookieName: v.GetString("session.cookieName"),
			MaxAge:     v.GetDuration("session.maxAge"),
			Secure:     v.GetBool("session.secure"),
		},
		Seed: SeedConfig{
			AdminUsername: v.GetString("seed.adminUsername"),
			AdminPassword: v.GetString("seed.adminPassword"),
			Users:         parseSeedAccounts(v.GetString("seed.users")),
			Module: SeedModule{
				Title:    v.GetString("seed.module.title"),
				Duration: v.GetString("seed.module.duration"),
				Question: v.GetString("seed.module.question"),
				Answer:   v.GetString("seed.module.answer"),
			},
		},
	}
}

// parseSeedAccounts parses "uname:pwd,uname2:pwd2". Malformed entries are skipped.
func parseSeedAccounts(s string) []SeedAccount {
	accounts := make([]SeedAccount, 0)
	for _, pair := range strings.Split(s, ",") {
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			continue
		}
		uname, pwd := CleanString(parts[0], true /* lower */), parts[1]
		if uname == "" || pwd == "" {
			continue
		}
		accounts = append(accounts, SeedAccount{Username: uname, Password: pwd})
	}
	return accounts
}
