package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/DoyleJ11/seat-roulette/internal/engine"
	"github.com/DoyleJ11/seat-roulette/internal/store"
	"github.com/DoyleJ11/seat-roulette/internal/store/kv"
	"github.com/DoyleJ11/seat-roulette/internal/wheel"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ROULETTE_PORT.
const EnvPrefix = "ROULETTE"

type Config struct {
	Bind string
	Port int

	Store         string
	StorePath     string
	StoreKey      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PostgresDSN   string

	RosterFile string
	RosterSize int
	Threshold  int

	Rows       int
	Columns    int
	GroupARows int

	SpinTicks    int
	SpinInterval time.Duration

	Verbose bool
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

func (c *Config) Layout() engine.Layout {
	return engine.Layout{Rows: c.Rows, Columns: c.Columns, GroupARows: c.GroupARows}
}

func (c *Config) Spin() wheel.Options {
	return wheel.Options{Ticks: c.SpinTicks, Interval: c.SpinInterval, Step: wheel.DefaultOptions.Step}
}

func (c *Config) StoreOptions() kv.Options {
	return kv.Options{
		Backend: c.Store,
		Path:    c.StorePath,
		Redis: kv.RedisOptions{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		},
		PostgresDSN: c.PostgresDSN,
	}
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if err := c.Layout().Validate(); err != nil {
		return err
	}
	if c.RosterFile == "" && (c.RosterSize < 1 || c.Threshold < 0 || c.Threshold > c.RosterSize) {
		return fmt.Errorf("invalid roster: size %d, threshold %d", c.RosterSize, c.Threshold)
	}
	if c.SpinTicks < 1 || c.SpinInterval <= 0 {
		return errors.New("spin ticks and interval must be positive")
	}

	switch c.Store {
	case kv.BackendMemory:
	case kv.BackendBolt:
		if c.StorePath == "" {
			return errors.New("--store-path is required for the bolt store")
		}
	case kv.BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("--redis-addr is required for the redis store")
		}
	case kv.BackendPostgres:
		if c.PostgresDSN == "" {
			return errors.New("--postgres-dsn is required for the postgres store")
		}
	default:
		return fmt.Errorf("%w: %q", kv.ErrUnknownBackend, c.Store)
	}
	return nil
}

// RegisterFlags binds every setting to fs. The defaults describe a
// 40-member, 8x5 classroom.
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&c.Bind, "bind", "b", "127.0.0.1", "address to bind to (env: ROULETTE_BIND)")
	fs.IntVarP(&c.Port, "port", "p", 8080, "port to listen on (env: ROULETTE_PORT)")

	fs.StringVar(&c.Store, "store", kv.BackendBolt, "storage backend: memory, bolt, redis, postgres (env: ROULETTE_STORE)")
	fs.StringVar(&c.StorePath, "store-path", "roulette.db", "bolt database file (env: ROULETTE_STORE_PATH)")
	fs.StringVar(&c.StoreKey, "store-key", store.DefaultKey, "key the progress record is saved under (env: ROULETTE_STORE_KEY)")
	fs.StringVar(&c.RedisAddr, "redis-addr", "localhost:6379", "redis host:port (env: ROULETTE_REDIS_ADDR)")
	fs.StringVar(&c.RedisPassword, "redis-password", "", "redis password (env: ROULETTE_REDIS_PASSWORD)")
	fs.IntVar(&c.RedisDB, "redis-db", 0, "redis database number (env: ROULETTE_REDIS_DB)")
	fs.StringVar(&c.PostgresDSN, "postgres-dsn", "", "postgres connection string (env: ROULETTE_POSTGRES_DSN)")

	fs.StringVar(&c.RosterFile, "roster-file", "", "YAML or JSON roster; overrides --roster-size (env: ROULETTE_ROSTER_FILE)")
	fs.IntVar(&c.RosterSize, "roster-size", 40, "number of generated members (env: ROULETTE_ROSTER_SIZE)")
	fs.IntVar(&c.Threshold, "threshold", 20, "highest id in group A (env: ROULETTE_THRESHOLD)")

	fs.IntVar(&c.Rows, "rows", engine.DefaultLayout.Rows, "seat rows (env: ROULETTE_ROWS)")
	fs.IntVar(&c.Columns, "columns", engine.DefaultLayout.Columns, "seats per row (env: ROULETTE_COLUMNS)")
	fs.IntVar(&c.GroupARows, "group-a-rows", engine.DefaultLayout.GroupARows, "leading rows seating group A (env: ROULETTE_GROUP_A_ROWS)")

	fs.IntVar(&c.SpinTicks, "spin-ticks", wheel.DefaultOptions.Ticks, "animation frames per spin (env: ROULETTE_SPIN_TICKS)")
	fs.DurationVar(&c.SpinInterval, "spin-interval", wheel.DefaultOptions.Interval, "delay between animation frames (env: ROULETTE_SPIN_INTERVAL)")

	fs.BoolVarP(&c.Verbose, "verbose", "v", false, "development logging at debug level (env: ROULETTE_VERBOSE)")
}

// ApplyEnv loads .env (if present) and copies ROULETTE_* variables onto
// flags the user did not set explicitly.
func ApplyEnv(fs *pflag.FlagSet, envFiles ...string) error {
	if err := godotenv.Load(envFiles...); err != nil && !isNotExist(err) {
		return fmt.Errorf("load env file: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			if setErr := fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); setErr != nil && err == nil {
				err = fmt.Errorf("env override for --%s: %w", f.Name, setErr)
			}
		}
	})
	return err
}
