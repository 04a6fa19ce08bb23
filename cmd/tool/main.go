// Command tool holds operator helpers for the auth service.
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
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/jiayou/auth-service/internal/infrastructure/redis"
	"github.com/jiayou/auth-service/internal/infrastructure/security"
)

const usage = `usage: tool <command> [flags]

commands:
  hash-password   read a password from stdin and print its hash
  mint-tokens     write signed access tokens, one per line
  inspect-token   validate a token and print its claims
  revoked         list revoked token IDs in redis, or reinstate one
`

var errUsage = errors.New("bad usage")

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "hash-password":
		err = hashPassword(args[1:], stdin, stdout, stderr)
	case "mint-tokens":
		err = mintTokens(args[1:], stdout, stderr)
	case "inspect-token":
		err = inspectToken(args[1:], stdout, stderr)
	case "revoked":
		err = revoked(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return 2
	default:
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	return nil
}

func hashPassword(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := newFlagSet("hash-password", stderr)
	algo := fs.String("algo", envOr("PASSWORD_HASH_ALGO", security.AlgoBcrypt), "bcrypt or argon2id")
	cost := fs.Int("cost", 12, "bcrypt cost")
	if err := parse(fs, args); err != nil {
		return err
	}

	password, err := readPassword(stdin, stderr)
	if err != nil {
		return err
	}
	if password == "" {
		return errors.New("empty password")
	}

	h, err := security.NewPasswordHasher(security.HasherConfig{
		Algorithm:  *algo,
		BcryptCost: *cost,
		Argon2:     security.DefaultArgon2Params,
	})
	if err != nil {
		return err
	}
	hash, err := h.Hash(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, hash)
	return nil
}

// readPassword prompts without echo on a terminal and reads one line
// otherwise.
func readPassword(stdin io.Reader, stderr io.Writer) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(stderr, "password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func mintTokens(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("mint-tokens", stderr)
	n := fs.Int("n", 1, "number of tokens")
	subject := fs.String("subject", "", "identity ID to put in sub (random per token when empty)")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	out := fs.String("out", "", "output file (stdout when empty)")
	secret := fs.String("secret", os.Getenv("JWT_SECRET"), "signing secret")
	issuer := fs.String("issuer", envOr("JWT_ISSUER", "jiayou-auth"), "iss claim")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *secret == "" {
		return errors.New("JWT_SECRET or -secret is required")
	}
	if *n < 1 || *ttl <= 0 {
		fmt.Fprintln(stderr, "-n and -ttl must be positive")
		return errUsage
	}

	w := stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	bw := bufio.NewWriter(w)
	issuerSvc := security.NewJWTIssuer(*secret, *issuer)
	for i := 0; i < *n; i++ {
		sub := *subject
		if sub == "" {
			sub = uuid.NewString()
		}
		tok, err := issuerSvc.Issue(sub, true, *ttl)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(bw, tok.Token); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if *out != "" {
		fmt.Fprintf(stderr, "wrote %d tokens to %s\n", *n, *out)
	}
	return nil
}

func inspectToken(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("inspect-token", stderr)
	secret := fs.String("secret", os.Getenv("JWT_SECRET"), "signing secret")
	issuer := fs.String("issuer", envOr("JWT_ISSUER", "jiayou-auth"), "expected iss claim")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: tool inspect-token [flags] <token>")
		return errUsage
	}
	if *secret == "" {
		return errors.New("JWT_SECRET or -secret is required")
	}

	claims, err := security.NewJWTIssuer(*secret, *issuer).Validate(fs.Arg(0))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"sub":    claims.Subject,
		"jti":    claims.ID,
		"active": claims.Active,
		"iat":    claims.IssuedAt.UTC().Format(time.RFC3339),
		"exp":    claims.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func revoked(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("revoked", stderr)
	addr := fs.String("addr", envOr("REDIS_ADDR", "127.0.0.1:6379"), "redis address host:port")
	pass := fs.String("pass", os.Getenv("REDIS_PASSWORD"), "redis password")
	db := fs.Int("db", envInt("REDIS_DB", 0), "redis db")
	reinstate := fs.String("reinstate", "", "token ID to remove from the list")
	timeout := fs.Duration("timeout", 5*time.Second, "overall timeout")
	if err := parse(fs, args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c := redis.New(*addr, *pass, *db)
	defer c.Close()
	if err := c.Ping(ctx); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	list := redis.NewRevocationList(c)

	if *reinstate != "" {
		ok, err := list.Reinstate(ctx, *reinstate)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("token %s is not revoked", *reinstate)
		}
		fmt.Fprintf(stdout, "reinstated %s\n", *reinstate)
		return nil
	}

	tokens, err := list.List(ctx, 200)
	if err != nil {
		return err
	}
	for _, t := range tokens {
		fmt.Fprintf(stdout, "%s\t%s\n", t.TokenID, t.Remaining.Round(time.Second))
	}
	fmt.Fprintf(stderr, "%d revoked\n", len(tokens))
	return nil
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
