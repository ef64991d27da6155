package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"textkit/internal/domain"
	"textkit/internal/infra/config"
)

// runEncrypt prints an "enc:" value for textkit.yaml. The secret is the
// argument, or stdin when the argument is "-" or missing.
func runEncrypt(args []string, stdin io.Reader, stdout io.Writer) error {
	passphrase := os.Getenv(config.EnvConfigKey)
	if passphrase == "" {
		return fmt.Errorf("%w: set %s to the passphrase used to decrypt config values", domain.ErrInvalidInput, config.EnvConfigKey)
	}

	var secret string
	if len(args) > 0 && args[0] != "-" {
		secret = args[0]
	} else {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		secret = strings.TrimRight(string(data), "\r\n")
	}
	if secret == "" {
		return fmt.Errorf("%w: nothing to encrypt", domain.ErrInvalidInput)
	}

	enc, err := config.EncryptValue(secret, passphrase)
	if err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}
	fmt.Fprintf(stdout, "enc:%s\n", enc)
	return nil
}
