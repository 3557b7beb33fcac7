package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/Alia5/GLIDER/internal/configpaths"
)

// KeyCommand groups API password subcommands.
type KeyCommand struct {
	Show KeyShow `cmd:"" help:"Print the API server password"`
	Set  KeySet  `cmd:"" help:"Replace the API server password"`
}

type KeyShow struct{}

func (k *KeyShow) Run() error {
	p, err := keyFilePath()
	if err != nil {
		return err
	}
	pwd, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New("no API password has been generated yet; run the server once first")
		}
		return fmt.Errorf("failed to read key file: %w", err)
	}
	fmt.Println(strings.TrimSpace(string(pwd)))
	return nil
}

type KeySet struct {
	Password string `help:"New password; prompts interactively when omitted"`
}

func (k *KeySet) Run() error {
	pwd := k.Password
	if pwd == "" {
		fmt.Print("New API password: ")
		first, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Print("Repeat password: ")
		second, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		if string(first) != string(second) {
			return errors.New("passwords do not match")
		}
		pwd = string(first)
	}
	pwd = strings.TrimSpace(pwd)
	if pwd == "" {
		return errors.New("password must not be empty")
	}

	p, err := keyFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return fmt.Errorf("failed to create config dir for key file: %w", err)
	}
	if err := os.WriteFile(p, []byte(pwd), 0o600); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	fmt.Println("API password updated. Restart the server for it to take effect.")
	return nil
}

func keyFilePath() (string, error) {
	dir, err := configpaths.DefaultConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve key file path: %w", err)
	}
	return filepath.Join(dir, keyFileName), nil
}
