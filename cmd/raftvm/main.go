// Copyright The Raft-VM Authors
// This file is part of Raft-VM.
//
// Raft-VM is free software: you can redistribute it and/or modify it under
// the terms of the GNU Lesser General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.

// Command raftvm is the external-collaborator CLI described in spec §6:
// run a file, drop into a REPL, or print the version. Grounded in
// original_source/src/main.rs for the verb shape and in the teacher
// repository's cmd/gprobe for the gopkg.in/urfave/cli.v1 wiring.
package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/fatih/color"
	"github.com/inconshreveable/log15"
	"github.com/peterh/liner"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/probelang/raftvm/assembler"
	"github.com/probelang/raftvm/internal/config"
	"github.com/probelang/raftvm/internal/rlog"
	"github.com/probelang/raftvm/vm"
)

// Version is the CLI's reported version string, printed by the `version`
// verb (original_source/src/main.rs: raft::VERSION).
const Version = "0.1.0"

// applyConfig loads path (an empty path yields defaults), sets the root
// logger's verbosity from cfg.LogLevel, and returns the vm.Options a
// top-level VM should be constructed with.
func applyConfig(path string) (vm.Options, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return vm.Options{}, err
	}
	if lvl, err := log15.LvlFromString(cfg.LogLevel); err != nil {
		rlog.New("component", "cli").Warn("invalid log level in config, keeping default", "level", cfg.LogLevel)
	} else {
		rlog.SetVerbosity(lvl)
	}
	return vm.Options{MailboxCapacity: cfg.MailboxCapacity, DefaultStrategy: cfg.DefaultStrategy}, nil
}

func main() {
	app := cli.NewApp()
	app.Name = "raftvm"
	app.Usage = "run, explore and introspect raft-vm bytecode programs"
	app.Version = Version
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config", Usage: "path to an optional raftvm.toml"},
	}
	app.Commands = []cli.Command{
		runCommand,
		replCommand,
		versionCommand,
	}
	app.Action = func(c *cli.Context) error {
		cli.ShowAppHelp(c)
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}

var runCommand = cli.Command{
	Name:      "run",
	Usage:     "compile and execute a source file",
	ArgsUsage: "<file>",
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return fmt.Errorf("missing filename")
		}
		opts, err := applyConfig(c.GlobalString("config"))
		if err != nil {
			return err
		}

		source, err := ioutil.ReadFile(c.Args().First())
		if err != nil {
			return err
		}
		bytecode, err := assembler.Compile(string(source))
		if err != nil {
			return fmt.Errorf("%w: %s", vm.ErrCompilation, err)
		}
		machine, _ := vm.NewWithOptions(bytecode, nil, opts)
		if err := machine.Run(); err != nil {
			return err
		}
		if top, err := machine.PopStack(); err == nil {
			fmt.Println(top)
		}
		return nil
	},
}

var versionCommand = cli.Command{
	Name:  "version",
	Usage: "print the raftvm version",
	Action: func(c *cli.Context) error {
		fmt.Printf("raftvm version %s\n", Version)
		return nil
	},
}

var replCommand = cli.Command{
	Name:  "repl",
	Usage: "start an interactive read-eval-print loop",
	Action: func(c *cli.Context) error {
		opts, err := applyConfig(c.GlobalString("config"))
		if err != nil {
			return err
		}

		line := liner.NewLiner()
		defer line.Close()
		line.SetCtrlCAborts(true)

		cache := assembler.NewCache(0)
		prompt := color.CyanString("raft> ")
		for {
			input, err := line.Prompt(prompt)
			if err != nil {
				break
			}
			if input == "exit" || input == "quit" {
				break
			}
			line.AppendHistory(input)

			bytecode, err := cache.Compile(input)
			if err != nil {
				fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
				continue
			}
			machine, _ := vm.NewWithOptions(bytecode, nil, opts)
			if err := machine.Run(); err != nil {
				fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
				continue
			}
			if top, err := machine.PopStack(); err == nil {
				fmt.Println(top)
			} else {
				fmt.Println("Success")
			}
		}
		return nil
	},
}
