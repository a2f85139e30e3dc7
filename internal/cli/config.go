// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/docmind-tui/internal/config"
)

// ConfigCmd groups configuration commands.
type ConfigCmd struct {
	Show ConfigShowCmd `cmd:"" default:"1" help:"Print the effective configuration as TOML."`
	Path ConfigPathCmd `cmd:"" help:"Print the config file path."`
	Init ConfigInitCmd `cmd:"" help:"Write the effective configuration to the config file."`
}

// ConfigShowCmd prints the effective configuration.
type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(deps *Dependencies) error {
	return toml.NewEncoder(deps.Stdout).Encode(deps.Config)
}

// ConfigPathCmd prints where configuration is read from.
type ConfigPathCmd struct{}

func (c *ConfigPathCmd) Run(deps *Dependencies) error {
	status := "exists"
	if _, err := os.Stat(deps.ConfigPath); err != nil {
		status = "not created"
	}
	fmt.Fprintf(deps.Stdout, "%s (%s)\n", deps.ConfigPath, status)
	return nil
}

// ConfigInitCmd saves the effective configuration, refusing to overwrite an
// existing file unless forced.
type ConfigInitCmd struct {
	Force bool `help:"Overwrite an existing file."`
}

func (c *ConfigInitCmd) Run(deps *Dependencies) error {
	target := deps.ConfigPath
	if strings.EqualFold(filepath.Ext(target), ".json") {
		p, err := config.ConfigPathTOML()
		if err != nil {
			return err
		}
		target = p
	}
	if _, err := os.Stat(target); err == nil && !c.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", target)
	}
	if err := config.SaveTOML(deps.Config, target); err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "Wrote %s\n", target)
	return nil
}
