package cli

import (
	"fmt"

	"chunkwise/internal/keyring"
)

type ConfigSetConnectionCmd struct {
	ConnString string `arg:"" help:"PostgreSQL connection string (stored in the OS keyring, never on disk)."`
}

func (c *ConfigSetConnectionCmd) Run(ctx *Context) error {
	if err := keyring.SetConnectionString(c.ConnString); err != nil {
		return err
	}
	fmt.Println("Connection string stored in the OS keyring")
	return nil
}

type ConfigClearConnectionCmd struct{}

func (c *ConfigClearConnectionCmd) Run(ctx *Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		return err
	}
	fmt.Println("Connection string removed from the OS keyring")
	return nil
}
