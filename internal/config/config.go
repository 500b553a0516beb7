package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	JWT struct {
		// El token lo emite la aplicación anfitriona; aquí solo se verifica.
		Secret string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Roster struct {
		// Días de futuro que se materializan al pintar una serie, además del
		// mes visible de la fecha de inicio.
		HorizonDays int `env:"HORIZON_DAYS" envDefault:"60"`
		MinYear     int `env:"MIN_YEAR" envDefault:"2000"`
		MaxYear     int `env:"MAX_YEAR" envDefault:"2100"`
	} `envPrefix:"ROSTER_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host           string `env:"HOST" envDefault:"localhost"`
		Port           int    `env:"PORT" envDefault:"6379"`
		Password       string `env:"PASSWORD,required"`
		ConnectTimeout int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		// Tiempo de vida del candado por ranura y tiempo máximo de espera
		// para adquirirlo antes de devolver un error de conflicto.
		LockExpiration int `env:"LOCK_EXPIRATION" envDefault:"10"`
		LockWait       int `env:"LOCK_WAIT" envDefault:"5"`
	} `envPrefix:"REDIS_"`
	Seed struct {
		InstallationID int64 `env:"INSTALLATION_ID" envDefault:"1"`
	} `envPrefix:"SEED_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// Solo se devuelve el primer error para que el log quede claro
			return nil, aggErr.Errors[0]
		}
	}

	return cfg, nil
}
