package main

import (
	"context"
	"fmt"
	"os"

	pikax "github.com/Akashic-y/Pikax"
	"github.com/Akashic-y/Pikax/artwork"
	"github.com/Akashic-y/Pikax/auth"
	"github.com/Akashic-y/Pikax/resolver"
	"github.com/Akashic-y/Pikax/store"
	"github.com/Akashic-y/Pikax/webclient"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

type Config struct {
	LogLevel    string  `koanf:"log_level"`
	Username    string  `koanf:"username"`
	Password    string  `koanf:"password"`
	AuthMethod  string  `koanf:"auth_method"`
	SessionFile string  `koanf:"session_file"`
	Concurrency int     `koanf:"concurrency"`
	Mode        string  `koanf:"mode"`
	IDs         []int64 `koanf:"ids"`
	Keyword     string  `koanf:"keyword"`
	Limit       int     `koanf:"limit"`
	RankMode    string  `koanf:"rank_mode"`
	RankContent string  `koanf:"rank_content"`
	RankDate    string  `koanf:"rank_date"`
	ProcessType string  `koanf:"process_type"`
	OutputDir   string  `koanf:"output_dir"`
	Download    bool    `koanf:"download"`
}

func loadConfig(args []string) (*Config, error) {
	f := pflag.NewFlagSet("pikax", pflag.ExitOnError)
	configPath := f.String("config", "config.yml", "configuration file path")
	f.String("log_level", "", "log level (trace, debug, info, warn, error)")
	f.String("username", "", "account username for password login")
	f.String("password", "", "account password for password login")
	f.String("auth_method", "", "strategy tried first (password, stored, interactive)")
	f.String("session_file", "", "path of the persisted session file")
	f.Int("concurrency", 0, "worker pool size, 0 for available parallelism")
	f.String("mode", "", "id source (ids, search, ranking)")
	f.Int64Slice("ids", nil, "explicit artwork ids to resolve")
	f.String("keyword", "", "search keyword")
	f.Int("limit", 0, "maximum number of ids to gather")
	f.String("rank_mode", "", "ranking mode (daily, weekly, monthly, rookie)")
	f.String("rank_content", "", "ranking content (illust, manga)")
	f.String("rank_date", "", "ranking date in yyyymmdd form, empty for today")
	f.String("process_type", "", "artwork constructor (illust, manga)")
	f.String("output_dir", "", "download output directory")
	f.Bool("download", false, "download page images of resolved artworks")
	if err := f.Parse(args); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"log_level":    "info",
		"auth_method":  "stored",
		"session_file": "cookies.json",
		"mode":         "ranking",
		"limit":        50,
		"rank_mode":    "daily",
		"rank_content": "illust",
		"process_type": "illust",
		"output_dir":   "downloads",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed loading defaults: %w", err)
	}

	if _, err := os.Stat(*configPath); err == nil {
		if err := k.Load(file.Provider(*configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed loading configuration file: %w", err)
		}
	}

	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, fmt.Errorf("failed loading flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed unmarshalling configuration: %w", err)
	}

	return &cfg, nil
}

// buildStrategies assembles the login cascade. The configured auth method
// only decides which strategy goes first, the authenticator itself is order
// agnostic.
func buildStrategies(cfg *Config, log pikax.Logger, client *webclient.Client, sessionStore *store.SessionStore) []auth.Strategy {
	stored := auth.NewStoredSession(log, client, sessionStore)
	interactive := auth.NewInteractiveSession(log, client, sessionStore, newTerminalPrompter())

	var direct auth.Strategy
	if cfg.Username != "" {
		password := cfg.Password
		if password == "" {
			var err error
			if password, err = askPassword(fmt.Sprintf("password for %s: ", pikax.ObfuscateUsername(cfg.Username))); err != nil {
				logrus.WithError(err).Fatal("failed reading password")
			}
		}

		direct = auth.NewDirectCredentials(log, client, sessionStore, cfg.Username, password)
	}

	var strategies []auth.Strategy
	switch cfg.AuthMethod {
	case "password":
		if direct == nil {
			logrus.Fatal("auth method password requires a username")
		}
		strategies = []auth.Strategy{direct, stored, interactive}
	case "stored":
		strategies = []auth.Strategy{stored}
		if direct != nil {
			strategies = append(strategies, direct)
		}
		strategies = append(strategies, interactive)
	case "interactive":
		strategies = []auth.Strategy{interactive}
	default:
		logrus.Fatalf("unknown auth method: %s", cfg.AuthMethod)
	}

	if direct == nil && cfg.AuthMethod != "interactive" {
		log.Debug("no username configured, skipping password strategy")
	}

	return strategies
}

func gatherIDs(ctx context.Context, cfg *Config, sess *auth.Session) ([]pikax.ArtworkID, error) {
	switch cfg.Mode {
	case "ids":
		ids := make([]pikax.ArtworkID, 0, len(cfg.IDs))
		for _, id := range cfg.IDs {
			ids = append(ids, pikax.ArtworkID(id))
		}
		return ids, nil
	case "search":
		if cfg.Keyword == "" {
			return nil, fmt.Errorf("search mode requires a keyword")
		}
		return sess.Client.SearchIDs(ctx, cfg.Keyword, cfg.Limit)
	case "ranking":
		return sess.Client.RankingIDs(ctx, cfg.RankMode, cfg.RankContent, cfg.RankDate, cfg.Limit)
	default:
		return nil, fmt.Errorf("unknown mode: %s", cfg.Mode)
	}
}

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		logrus.WithError(err).Fatal("failed reading configuration")
	}

	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithError(err).Fatalf("invalid log level: %s", cfg.LogLevel)
	}
	logrus.SetLevel(logLevel)

	log := LogrusAdapter{logrus.NewEntry(logrus.StandardLogger())}

	client, err := webclient.NewClient(log)
	if err != nil {
		logrus.WithError(err).Fatal("failed creating web client")
	}

	sessionStore := store.NewSessionStore(log, cfg.SessionFile)

	ctx := context.Background()

	authenticator := auth.NewAuthenticator(log, buildStrategies(cfg, log, client, sessionStore)...)
	sess, err := authenticator.Login(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("login failed")
	}

	ids, err := gatherIDs(ctx, cfg, sess)
	if err != nil {
		logrus.WithError(err).Fatal("failed gathering artwork ids")
	} else if len(ids) == 0 {
		log.Info("nothing to resolve")
		return
	}

	processor := artwork.NewProcessor(log, sess.Client)
	res, err := processor.Process(ctx, ids, pikax.ProcessType(cfg.ProcessType), resolver.Options{
		Concurrency: cfg.Concurrency,
		OnProgress: func(done, total int) {
			log.Infof("resolved %d/%d", done, total)
		},
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed resolving artworks")
	}

	if cfg.Download {
		if err := downloadAll(ctx, log, sess.Client, res.Successes, cfg.OutputDir); err != nil {
			logrus.WithError(err).Fatal("failed downloading artworks")
		}
	}
}
