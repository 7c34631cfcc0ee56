package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var scriptCmd = &cobra.Command{
	Use:   "script [file]",
	Args:  cobra.MaximumNArgs(1),
	Short: "Run an anko script with codec builtins",
	Long: `Runs the script from file, or script.anko from the config
directory, with these builtins:

  sample                 the sample text from config
  analyze(text)          list of [symbol, frequency]
  build(text)            code table
  encode(table, text)    bit string
  decode(table, bits)    text
  codes(table)           map of symbol to code
  pairs(table)           list of {Prefix, Symbol}
  tree(text)             drawing of the code tree
  printf(format, ...)    formatted output`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, closeLog, err := setup()
		if err != nil {
			return err
		}
		defer closeLog()

		script := config.Script
		if len(args) > 0 {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			script = string(b)
		}

		host, err := NewScriptHost(os.Stdout, NewCodec(nil, nil), config.SampleText)
		if err != nil {
			return err
		}
		host.Width = terminalWidth(80)

		result, err := host.Run(cmd.Context(), script)
		log.Debug().Interface("result", result).Msg("script finished")
		return err
	},
}

var ircCmd = &cobra.Command{
	Use:   "irc",
	Short: "Run the IRC bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, closeLog, err := setup()
		if err != nil {
			return err
		}
		defer closeLog()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		bot := NewIRCBot(config, NewCodec(nil, nil))
		return bot.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(scriptCmd, ircCmd)
}

// vim: ai:ts=8:sw=8:noet:syntax=go
