package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
)

type Config struct {
	Addr   string
	APIUrl string
	Debug  bool

	// sandbox backend
	Sandbox       bool
	SandboxAddr   string
	DBUrl         string
	TokenSecret   string
	TokenTTL      time.Duration
	AdminUser     string
	AdminPassword string
}

// ParseFlags reads the command line; every flag left unset falls back to
// its QS_* environment variable.
func ParseFlags(args []string) (cfg Config, err error) {
	fs := flag.NewFlagSet("quick-survey-console", flag.ContinueOnError)

	var host string
	fs.StringVar(&host, "host", "0.0.0.0", "listen host name")
	var port uint
	fs.UintVar(&port, "port", 8080, "listen port number")
	fs.StringVar(&cfg.APIUrl, "api-url", "", "base URL of the survey backend API")
	fs.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")

	fs.BoolVar(&cfg.Sandbox, "sandbox", false, "run the embedded sandbox backend")
	fs.StringVar(&cfg.SandboxAddr, "sandbox-addr", "127.0.0.1:8081", "sandbox backend listen address")
	fs.StringVar(&cfg.DBUrl, "db-url", "qsurvey.sqlite", "path to the sandbox SQLite3 DB file")
	fs.StringVar(&cfg.TokenSecret, "token-secret", "", "sandbox secret key for token encryption and decryption")
	var ttl uint
	fs.UintVar(&ttl, "token-ttl", 120, "sandbox token TTL in seconds")
	fs.StringVar(&cfg.AdminUser, "admin-user", "admin", "sandbox admin username")
	fs.StringVar(&cfg.AdminPassword, "admin-password", "", "sandbox admin password")

	if err = fs.Parse(args); err != nil {
		return Config{}, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var errs *multierror.Error
	envString := func(name, env string, dst *string) {
		if v, ok := os.LookupEnv(env); ok && !set[name] {
			*dst = v
		}
	}
	envUint := func(name, env string, dst *uint) {
		if v, ok := os.LookupEnv(env); ok && !set[name] {
			n, perr := strconv.ParseUint(v, 10, 32)
			if perr != nil {
				errs = multierror.Append(errs, fmt.Errorf("invalid %s env variable: %w", env, perr))
				return
			}
			*dst = uint(n)
		}
	}
	envBool := func(name, env string, dst *bool) {
		if v, ok := os.LookupEnv(env); ok && !set[name] {
			b, perr := strconv.ParseBool(v)
			if perr != nil {
				errs = multierror.Append(errs, fmt.Errorf("invalid %s env variable: %w", env, perr))
				return
			}
			*dst = b
		}
	}

	envString("host", "QS_HOST", &host)
	envUint("port", "QS_PORT", &port)
	envString("api-url", "QS_API_URL", &cfg.APIUrl)
	envBool("debug", "QS_DEBUG", &cfg.Debug)
	envBool("sandbox", "QS_SANDBOX", &cfg.Sandbox)
	envString("sandbox-addr", "QS_SANDBOX_ADDR", &cfg.SandboxAddr)
	envString("db-url", "QS_DB_URL", &cfg.DBUrl)
	envString("token-secret", "QS_TOKEN_SECRET", &cfg.TokenSecret)
	envUint("token-ttl", "QS_TOKEN_TTL", &ttl)
	envString("admin-user", "QS_ADMIN_USER", &cfg.AdminUser)
	envString("admin-password", "QS_ADMIN_PASSWORD", &cfg.AdminPassword)

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second

	if cfg.Sandbox {
		if cfg.APIUrl == "" {
			cfg.APIUrl = "http://" + cfg.SandboxAddr
		}
		if cfg.TokenSecret == "" {
			errs = multierror.Append(errs, errors.New("missing parameter -token-secret"))
		}
		if cfg.AdminPassword == "" {
			errs = multierror.Append(errs, errors.New("missing parameter -admin-password"))
		}
	}

	if cfg.APIUrl == "" {
		errs = multierror.Append(errs, errors.New("missing parameter -api-url"))
	} else if u, perr := url.Parse(cfg.APIUrl); perr != nil || u.Scheme == "" || u.Host == "" {
		errs = multierror.Append(errs, fmt.Errorf("invalid -api-url %q", cfg.APIUrl))
	}

	if err = errs.ErrorOrNil(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}
