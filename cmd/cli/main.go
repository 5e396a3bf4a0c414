// Command catalog is a CLI client for the product catalog service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/and161185/goph-catalog/internal/model"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "goph-catalog")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "goph-catalog")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tok string, exp time.Time) error {
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(tokenPath(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{AccessToken: tok, ExpiresAt: exp})
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.AccessToken == "" || !time.Now().Before(tf.ExpiresAt) {
		return "", errors.New("no valid token (login required)")
	}
	return tf.AccessToken, nil
}

// tokenExpiry reads exp from a JWT without verifying it; the server is the authority.
func tokenExpiry(tok string, fallback time.Time) time.Time {
	var claims jwt.RegisteredClaims
	_, _, err := jwt.NewParser().ParseUnverified(tok, &claims)
	if err != nil || claims.ExpiresAt == nil {
		return fallback
	}
	return claims.ExpiresAt.Time
}

// ---- utils ----

// test seams for the terminal
var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

// promptPassword reads a password from the terminal without echo.
func promptPassword(out io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return "", errors.New("need -u and -p")
	}
	fmt.Fprint(out, "Password: ")
	b, err := readPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", errors.New("empty password")
	}
	return string(b), nil
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

const usageText = `catalog CLI
Usage:
  catalog [--addr URL] <cmd> [args]

Commands:
  version
  register   -u <username> [-p <password>]         (prompts when -p is omitted)
  login      -u <username> [-p <password>]         (saves token)
  list       [--name s] [--min n] [--max n] [--page n] [--limit n]
  get        --id <id>
  add        --name <s> --price <n> --qty <n>
  edit       --id <id> [--name s] [--price n] [--qty n]
  rm         --id <id>
  rm-many    --ids a,b,c
`

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err := run(ctx, os.Args[1:], os.Stdout)
	cancel()
	if err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprint(os.Stderr, usageText)
			os.Exit(2)
		}
		fail(err)
	}
}

type usageError string

func (e usageError) Error() string { return string(e) }

// run dispatches a subcommand against the API at --addr.
func run(ctx context.Context, args []string, out io.Writer) error {
	global := pflag.NewFlagSet("catalog", pflag.ContinueOnError)
	global.SetInterspersed(false)
	addr := global.StringP("addr", "a", "http://localhost:3001", "server base URL")
	if err := global.Parse(args); err != nil {
		return usageError(err.Error())
	}
	if global.NArg() < 1 {
		return usageError("missing command")
	}
	cmd, rest := global.Arg(0), global.Args()[1:]

	fs := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	authed := func() (*client, error) {
		tok, err := loadToken()
		if err != nil {
			return nil, err
		}
		return newClient(*addr, tok), nil
	}

	switch cmd {

	case "version":
		fmt.Fprintf(out, "catalog %s (%s)\n", version, buildDate)

	case "register", "login":
		u := fs.StringP("username", "u", "", "username")
		p := fs.StringP("password", "p", "", "password")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *u == "" {
			return errors.New("need -u and -p")
		}
		if *p == "" {
			pw, err := promptPassword(out)
			if err != nil {
				return err
			}
			*p = pw
		}
		c := newClient(*addr, "")
		if cmd == "register" {
			msg, err := c.Register(ctx, *u, *p)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, msg)
			return nil
		}
		tok, err := c.Login(ctx, *u, *p)
		if err != nil {
			return err
		}
		if err := saveToken(tok, tokenExpiry(tok, time.Now().Add(time.Hour))); err != nil {
			return err
		}
		fmt.Fprintln(out, "ok")

	case "list":
		var p listParams
		fs.StringVar(&p.Name, "name", "", "name substring")
		fs.StringVar(&p.MinPrice, "min", "", "min price")
		fs.StringVar(&p.MaxPrice, "max", "", "max price")
		fs.StringVar(&p.Page, "page", "", "page number")
		fs.StringVar(&p.Limit, "limit", "", "page size")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		page, err := newClient(*addr, "").List(ctx, p)
		if err != nil {
			return err
		}
		printJSON(out, page)

	case "get":
		id := fs.String("id", "", "product id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *id == "" {
			return errors.New("need --id")
		}
		p, err := newClient(*addr, "").Get(ctx, *id)
		if err != nil {
			return err
		}
		printJSON(out, p)

	case "add":
		var in model.NewProduct
		fs.StringVar(&in.Name, "name", "", "product name")
		fs.Float64Var(&in.Price, "price", 0, "price")
		fs.Float64Var(&in.Quantity, "qty", 0, "quantity")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		c, err := authed()
		if err != nil {
			return err
		}
		p, err := c.Create(ctx, in)
		if err != nil {
			return err
		}
		printJSON(out, p)

	case "edit":
		id := fs.String("id", "", "product id")
		name := fs.String("name", "", "new name")
		price := fs.Float64("price", 0, "new price")
		qty := fs.Float64("qty", 0, "new quantity")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *id == "" {
			return errors.New("need --id")
		}
		var patch model.ProductPatch
		if fs.Changed("name") {
			patch.Name = name
		}
		if fs.Changed("price") {
			patch.Price = price
		}
		if fs.Changed("qty") {
			patch.Quantity = qty
		}
		c, err := authed()
		if err != nil {
			return err
		}
		p, err := c.Update(ctx, *id, patch)
		if err != nil {
			return err
		}
		printJSON(out, p)

	case "rm":
		id := fs.String("id", "", "product id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *id == "" {
			return errors.New("need --id")
		}
		c, err := authed()
		if err != nil {
			return err
		}
		if err := c.Delete(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintln(out, "deleted")

	case "rm-many":
		ids := fs.StringSlice("ids", nil, "comma-separated product ids")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if len(*ids) == 0 {
			return errors.New("need --ids")
		}
		c, err := authed()
		if err != nil {
			return err
		}
		if err := c.DeleteMany(ctx, *ids); err != nil {
			return err
		}
		fmt.Fprintln(out, "deleted")

	default:
		return usageError("unknown command " + cmd)
	}
	return nil
}

// ---- helpers ----

func fail(err error) {
	var ae *apiError
	if errors.As(err, &ae) {
		fmt.Fprintf(os.Stderr, "api error: status=%d msg=%s\n", ae.Status, ae.Message)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
