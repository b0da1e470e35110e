package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/glotchimo/warden/internal/bot"
	"github.com/joho/godotenv"
)

type Conf struct {
	Debug   bool     `env:"DEBUG"`
	Token   string   `env:"BOT_TOKEN,required,notEmpty"`
	Intents int      `env:"BOT_INTENTS" envDefault:"37377"`
	Prefix  string   `env:"BOT_PREFIX" envDefault:"!"`
	Owners  []string `env:"BOT_OWNERS" envSeparator:","`

	DatabaseURL   string `env:"DATABASE_URL"`
	CacheURL      string `env:"REDIS_URL"`
	MigrationsURL string `env:"MIGRATIONS_URL" envDefault:"file://migrations"`

	ShardID    int `env:"SHARD_ID" envDefault:"0"`
	ShardCount int `env:"SHARD_COUNT" envDefault:"1"`

	MessageCommands     bool    `env:"LOAD_MESSAGE_COMMANDS" envDefault:"true"`
	InteractionCommands bool    `env:"LOAD_INTERACTION_COMMANDS" envDefault:"true"`
	RegisterCommands    bool    `env:"REGISTER_COMMANDS" envDefault:"true"`
	RegisterRate        float64 `env:"REGISTER_RATE" envDefault:"2"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}

	var conf Conf
	if err := env.Parse(&conf); err != nil {
		panic(err)
	}

	b, err := bot.NewBot(bot.Config{
		Debug:               conf.Debug,
		Token:               conf.Token,
		Intents:             conf.Intents,
		Prefix:              conf.Prefix,
		Owners:              conf.Owners,
		DatabaseURL:         conf.DatabaseURL,
		CacheURL:            conf.CacheURL,
		MigrationsURL:       conf.MigrationsURL,
		ShardID:             conf.ShardID,
		ShardCount:          conf.ShardCount,
		MessageCommands:     conf.MessageCommands,
		InteractionCommands: conf.InteractionCommands,
		RegisterCommands:    conf.RegisterCommands,
		RegisterRate:        conf.RegisterRate,
	})
	if err != nil {
		panic(err)
	}
	defer b.Close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}
