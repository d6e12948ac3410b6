// Command authctl talks to the account API.
//
// Usage:
//
//	authctl [flags] register <username>
//	authctl [flags] login <username>
//	authctl [flags] list
//	authctl [flags] me
//
// The password is read from the terminal without echo, or from the first
// line of stdin when it is not a terminal. list and me need a token, taken
// from -token or ACCOUNTS_AUTHCTL_TOKEN.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"golang.org/x/term"

	"github.com/mkrupp/homecase-accounts/internal/infra/config"
	"github.com/mkrupp/homecase-accounts/internal/infra/logging"
	"github.com/mkrupp/homecase-accounts/internal/svc/authsvc/authclient"
)

const (
	appName = "accounts"
	cmdName = "authctl"
)

var errUsage = errors.New("usage: authctl [flags] register|login <username> | list | me")

type Config struct {
	config.EnvConfig

	Log   logging.LoggerConfig        `envPrefix:"LOG_" toml:"log"`
	API   authclient.HTTPClientConfig `envPrefix:"API_" toml:"api"`
	Token string                      `env:"TOKEN"      toml:"token"`
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, cmdName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, cmdName}, "."))
	)

	// quiet unless asked otherwise
	if _, ok := os.LookupEnv(configPrefix + "_LOG_LEVEL"); !ok {
		_ = os.Setenv(configPrefix+"_LOG_LEVEL", "error")
	}

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	flags := flag.NewFlagSet(cmdName, flag.ExitOnError)
	flags.StringVar(&cfg.API.BaseURL, "url", cfg.API.BaseURL, "base URL of the account API")
	flags.StringVar(&cfg.Token, "token", cfg.Token, "bearer token for list and me")
	flags.Usage = func() {
		fmt.Fprintln(flags.Output(), errUsage)
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	logging.Configure(ctx, cfg.Log, loggerName)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	client := authclient.NewHTTPClient(cfg.API, nil)

	if err := run(ctx, client, cfg.Token, flags.Args(), os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()

		if errors.Is(err, errUsage) {
			os.Exit(2)
		}

		os.Exit(1)
	}
}

func run(ctx context.Context, client authclient.AuthClient, token string, args []string, in *os.File, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	var (
		result any
		err    error
	)

	switch cmd, rest := args[0], args[1:]; cmd {
	case "register", "login":
		if len(rest) != 1 {
			return errUsage
		}

		password, perr := readPassword(in)
		if perr != nil {
			return perr
		}

		if cmd == "register" {
			result, err = client.Register(ctx, rest[0], password)
		} else {
			result, err = client.Login(ctx, rest[0], password)
		}
	case "list":
		result, err = client.List(ctx, token)
	case "me":
		result, err = client.Me(ctx, token)
	default:
		return errUsage
	}

	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	return nil
}

func readPassword(in *os.File) (string, error) {
	fd := int(in.Fd()) //nolint:gosec

	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Password: ")

		password, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)

		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}

		return string(password), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}
