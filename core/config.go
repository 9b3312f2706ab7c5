package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host            string
		Address         string
		DebugHost       string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		AllowedOrigins  []string
	}

	// IdentityConfig describes how session tokens issued by the identity provider are verified.
	IdentityConfig struct {
		Issuer        string
		SigningMethod string // HS256 | RS256
		SigningKey    string // shared secret (HS256) or PEM encoded public key (RS256)
	}

	DatabaseConfig struct {
		Engine        string // postgres | sqlite3
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		Path          string // sqlite3 only
	}

	StorageConfig struct {
		Endpoint       string
		AccessKey      string
		SecretKey      string
		Bucket         string
		UseTLS         bool
		UploadExpiry   time.Duration
		DownloadExpiry time.Duration
	}

	PortalConfig struct {
		// EnforceOwnership restricts note & assignment deletion to the owning teacher.
		EnforceOwnership bool
	}

	Config struct {
		Env          string
		Build        string
		AppName      string
		Debug        bool
		TestMode     bool
		WorkDir      string
		RollbarToken string

		Server   ServerConfig
		Identity IdentityConfig
		Database DatabaseConfig
		Storage  StorageConfig
		Portal   PortalConfig
	}
)

func (dc DatabaseConfig) Address() string {
	return net.JoinHostPort(dc.Host, dc.Port)
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("build", "develop")
	conf.SetDefault("appName", "KistConnect")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.debugHost", ":4000")
	conf.SetDefault("server.readTimeout", 5*time.Second)
	conf.SetDefault("server.writeTimeout", 5*time.Second)
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.allowedOrigins", []string{"http://localhost:3000"})

	conf.SetDefault("identity.issuer", "")
	conf.SetDefault("identity.signingMethod", "HS256")
	conf.SetDefault("identity.signingKey", "6v!wq$kt0n-xo2)h+8=f&uo_d9(j3!e#c2(#yg4h^$cegm2emy")

	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.name", "kistconnect")
	conf.SetDefault("database.user", "kistconnect")
	conf.SetDefault("database.password", "kistconnect")
	conf.SetDefault("database.adminUser", "postgres")
	conf.SetDefault("database.adminPassword", "postgres")
	conf.SetDefault("database.disableTLS", true)
	conf.SetDefault("database.path", "kistconnect.db")

	conf.SetDefault("storage.endpoint", "localhost:9000")
	conf.SetDefault("storage.accessKey", "minioadmin")
	conf.SetDefault("storage.secretKey", "minioadmin")
	conf.SetDefault("storage.bucket", "kistconnect-files")
	conf.SetDefault("storage.useTLS", false)
	conf.SetDefault("storage.uploadExpiry", 15*time.Minute)
	conf.SetDefault("storage.downloadExpiry", time.Hour)

	conf.SetDefault("portal.enforceOwnership", false)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	workDir := Getwd()
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Env:          env,
		Build:        conf.GetString("build"),
		AppName:      conf.GetString("appName"),
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		WorkDir:      workDir,
		RollbarToken: conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:            conf.GetString("server.host"),
			Address:         conf.GetString("server.address"),
			DebugHost:       conf.GetString("server.debugHost"),
			ReadTimeout:     conf.GetDuration("server.readTimeout"),
			WriteTimeout:    conf.GetDuration("server.writeTimeout"),
			ShutdownTimeout: conf.GetDuration("server.shutdownTimeout"),
			AllowedOrigins:  conf.GetStringSlice("server.allowedOrigins"),
		},
		Identity: IdentityConfig{
			Issuer:        conf.GetString("identity.issuer"),
			SigningMethod: strings.ToUpper(conf.GetString("identity.signingMethod")),
			SigningKey:    conf.GetString("identity.signingKey"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("database.engine"),
			Host:          conf.GetString("database.host"),
			Port:          conf.GetString("database.port"),
			Name:          conf.GetString("database.name"),
			User:          conf.GetString("database.user"),
			Password:      conf.GetString("database.password"),
			AdminUser:     conf.GetString("database.adminUser"),
			AdminPassword: conf.GetString("database.adminPassword"),
			DisableTLS:    conf.GetBool("database.disableTLS"),
			Path:          conf.GetString("database.path"),
		},
		Storage: StorageConfig{
			Endpoint:       conf.GetString("storage.endpoint"),
			AccessKey:      conf.GetString("storage.accessKey"),
			SecretKey:      conf.GetString("storage.secretKey"),
			Bucket:         conf.GetString("storage.bucket"),
			UseTLS:         conf.GetBool("storage.useTLS"),
			UploadExpiry:   conf.GetDuration("storage.uploadExpiry"),
			DownloadExpiry: conf.GetDuration("storage.downloadExpiry"),
		},
		Portal: PortalConfig{
			EnforceOwnership: conf.GetBool("portal.enforceOwnership"),
		},
	}
}
