// Package admin implements the sealvault-admin command: key generation for
// the content codec and development access tokens.
package admin

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/sealvault/internal/common"
	"github.com/dmitrijs2005/sealvault/internal/cryptox"
	"github.com/dmitrijs2005/sealvault/internal/server/auth"
	"github.com/dmitrijs2005/sealvault/internal/server/config"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

const usage = `usage: sealvault-admin <command> [flags]

commands:
  keygen   print a 256-bit content key as hex
  token    mint an access token for a user
`

// Run executes the command in args (without the program name). Output goes
// to stdout, prompts and usage to stderr.
func Run(args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("%w: missing command", common.ErrValidation)
	}

	switch args[0] {
	case "keygen":
		return keygen(args[1:], stdout, stderr)
	case "token":
		return token(args[1:], stdout, stderr, getenv)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stderr, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("%w: unknown command %q", common.ErrValidation, args[0])
	}
}

func keygen(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	usePassphrase := fs.Bool("passphrase", false, "derive the key from a passphrase read from the terminal")
	salt := fs.String("salt", "", "salt for passphrase derivation (at least 8 bytes)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*usePassphrase {
		fmt.Fprintln(stdout, hex.EncodeToString(common.GenerateRandByteArray(common.KeySize)))
		return nil
	}

	fmt.Fprint(stderr, "Enter passphrase: ")
	pass, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(stderr)
	if err != nil {
		return fmt.Errorf("read passphrase: %w", err)
	}
	defer clear(pass)

	if strings.TrimSpace(string(pass)) == "" {
		return fmt.Errorf("%w: empty passphrase", common.ErrValidation)
	}

	key, _, err := cryptox.LoadKey(cryptox.KeySource{Passphrase: string(pass), Salt: *salt})
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, hex.EncodeToString(key))
	return nil
}

// token signs with the server's secret key, resolved the way the server
// resolves it: defaults, then the -c config file, then the environment.
func token(args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(stderr)
	userID := fs.String("user", "", "principal id the token is issued to")
	ttl := fs.Duration("ttl", 0, "token validity (default: server access token validity)")
	configPath := fs.String("c", "", "server config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var cfgArgs []string
	if *configPath != "" {
		cfgArgs = []string{"-c", *configPath}
	}
	cfg, err := config.Load(cfgArgs, getenv)
	if err != nil {
		return fmt.Errorf("load server config: %w", err)
	}

	validity := cfg.AccessTokenValidityDuration
	if *ttl != 0 {
		validity = *ttl
	}
	if validity <= 0 {
		return fmt.Errorf("%w: ttl must be positive", common.ErrValidation)
	}

	tok, err := auth.GenerateToken(*userID, []byte(cfg.SecretKey), validity)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, tok)
	return nil
}
