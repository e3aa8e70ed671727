package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Application struct {
	Server      Server      `koanf:"server"`
	Frontend    Frontend    `koanf:"frontend"`
	Storage     Storage     `koanf:"storage"`
	Attachments Attachments `koanf:"attachments"`
	Amqp        Amqp        `koanf:"amqp"`
}

type Server struct {
	Addr string `koanf:"addr"`
	// Location is the IANA zone used to turn timestamps into calendar dates.
	Location string `koanf:"location"`
}

type Frontend struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
}

type Storage struct {
	Backend  string   `koanf:"backend"`
	SQLite   SQLite   `koanf:"sqlite"`
	Postgres Database `koanf:"postgres"`
}

type SQLite struct {
	Path string `koanf:"path"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Attachments struct {
	MaxBytes int `koanf:"maxbytes"`
}

type Amqp struct {
	Url      string `koanf:"url"`
	Exchange string `koanf:"exchange"`
}

func Defaults() Application {
	return Application{
		Server: Server{
			Addr:     ":8181",
			Location: "Local",
		},
		Frontend: Frontend{
			Enabled: false,
			Dir:     "./frontend",
		},
		Storage: Storage{
			Backend: BackendSQLite,
			SQLite: SQLite{
				Path: "./data/walletfy.db",
			},
			Postgres: Database{
				Host:   "localhost",
				Port:   5432,
				User:   "walletfy",
				Pass:   "",
				Name:   "walletfy",
				Schema: "walletfy",
			},
		},
		Attachments: Attachments{
			MaxBytes: 5 * 1024 * 1024,
		},
		Amqp: Amqp{
			Exchange: "walletfy.events",
		},
	}
}

// Load reads the configuration from defaults, the YAML file at path and
// WALLETFY_ prefixed environment variables, in that order. A .env file in the
// working directory is loaded into the environment first.
func Load(path string) (Application, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("could not load .env file: %v", err)
	}

	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "WALLETFY_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "WALLETFY_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}

// Validate reports every invalid setting at once.
func (a Application) Validate() error {
	var errs []error
	if a.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if _, err := a.Server.TimeLocation(); err != nil {
		errs = append(errs, fmt.Errorf("server.location: %w", err))
	}
	if a.Frontend.Enabled && a.Frontend.Dir == "" {
		errs = append(errs, errors.New("frontend.dir must be set when the frontend is enabled"))
	}
	switch a.Storage.Backend {
	case BackendSQLite:
		if a.Storage.SQLite.Path == "" {
			errs = append(errs, errors.New("storage.sqlite.path must not be empty"))
		}
	case BackendPostgres:
		if a.Storage.Postgres.Host == "" || a.Storage.Postgres.Name == "" {
			errs = append(errs, errors.New("storage.postgres.host and storage.postgres.name must be set"))
		}
		if a.Storage.Postgres.Port <= 0 {
			errs = append(errs, fmt.Errorf("storage.postgres.port must be positive, got %d", a.Storage.Postgres.Port))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.backend must be one of %s, %s, %s, got %q",
			BackendSQLite, BackendPostgres, BackendMemory, a.Storage.Backend))
	}
	if a.Attachments.MaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("attachments.maxbytes must be positive, got %d", a.Attachments.MaxBytes))
	}
	if a.Amqp.Url != "" && a.Amqp.Exchange == "" {
		errs = append(errs, errors.New("amqp.exchange must be set when amqp.url is set"))
	}
	return errors.Join(errs...)
}

func (s Server) TimeLocation() (*time.Location, error) {
	if s.Location == "" || s.Location == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(s.Location)
}
