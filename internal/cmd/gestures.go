package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Alia5/GLIDER/apiclient"
)

// GesturesCommand talks to a running GLIDER server over the control API.
type GesturesCommand struct {
	List   GesturesListCmd   `cmd:"" help:"List the gestures known to a running server"`
	Reload GesturesReloadCmd `cmd:"" help:"Tell a running server to re-read its gesture store"`

	Addr     string `help:"API server address" default:"127.0.0.1:3243" env:"GLIDER_API_ADDR"`
	Password string `help:"API password; read from the key file when omitted" env:"GLIDER_API_PASSWORD"`
}

func (g *GesturesCommand) client() (*apiclient.Client, error) {
	pwd := g.Password
	if pwd == "" {
		if p, err := keyFilePath(); err == nil {
			if data, err := os.ReadFile(p); err == nil {
				pwd = strings.TrimSpace(string(data))
			}
		}
	}
	if pwd == "" {
		return apiclient.New(g.Addr), nil
	}
	return apiclient.NewWithPassword(g.Addr, pwd), nil
}

type GesturesListCmd struct{}

func (c *GesturesListCmd) Run(parent *GesturesCommand) error {
	client, err := parent.client()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	res, err := client.GesturesListCtx(ctx)
	if err != nil {
		return err
	}
	if len(res.Gestures) == 0 {
		fmt.Println("no gestures configured")
		return nil
	}
	for _, g := range res.Gestures {
		state := ""
		if !g.Enabled {
			state = " (disabled)"
		}
		fmt.Printf("%-24s %-12s %s%s\n", g.Label, g.Tokens, strings.Join(g.Bindings, ", "), state)
	}
	return nil
}

type GesturesReloadCmd struct{}

func (c *GesturesReloadCmd) Run(parent *GesturesCommand) error {
	client, err := parent.client()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	res, err := client.GesturesReloadCtx(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("reloaded %d gestures\n", res.GestureCount)
	return nil
}
