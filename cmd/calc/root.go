package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/keypad"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/tui"
)

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"max-input-length":   "max_input_length",
	"max-display-length": "max_display_length",
	"precision":          "precision",
	"format-mode":        "format_mode",
}

func newRootCmd() *cobra.Command {
	v := config.New()
	var logFile string

	cmd := &cobra.Command{
		Use:          "calc",
		Short:        "Four-function keypad calculator for the terminal",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			if logFile == "" {
				return nil
			}
			return observability.InitFileLogger(logFile)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			observability.SyncLogger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromViper(v)
			if err != nil {
				return err
			}

			observability.Logger.Info("terminal calculator started",
				zap.Int("max_input_length", cfg.MaxInputLength),
				zap.String("format_mode", cfg.FormatMode),
			)

			p := tea.NewProgram(
				tui.NewModel(cfg.CalculatorOptions()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err = p.Run()
			return err
		},
	}

	flags := cmd.PersistentFlags()
	flags.Int("max-input-length", calculator.DefaultMaxInputLength, "maximum characters per operand")
	flags.Int("max-display-length", 10, "maximum characters of a formatted result")
	flags.Int("precision", 3, "decimal places kept in results (decimal mode)")
	flags.String("format-mode", string(calculator.FormatDecimal), "result format: decimal or significant")
	flags.StringVar(&logFile, "log-file", "", "write JSON logs to this file")

	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	cmd.AddCommand(newPressCmd(v))
	return cmd
}

// newPressCmd feeds keys to a fresh calculator without the interactive UI
// and prints the final display.
func newPressCmd(v *viper.Viper) *cobra.Command {
	var trace bool

	cmd := &cobra.Command{
		Use:     "press KEY...",
		Short:   "Apply keys in order and print the display",
		Example: "  calc press 1 2 + 3 Enter",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromViper(v)
			if err != nil {
				return err
			}

			tokens := make([]calculator.Token, 0, len(args))
			for _, key := range args {
				tok, ok := keypad.FromKey(key)
				if !ok {
					return fmt.Errorf("unknown key %q", key)
				}
				tokens = append(tokens, tok)
			}

			m := calculator.NewMachine(cfg.CalculatorOptions())
			out := cmd.OutOrStdout()
			for _, tok := range tokens {
				frame := m.Apply(tok)
				if frame.Message != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), frame.Message)
				}
				if trace && frame.Changed {
					fmt.Fprintf(out, "%-10s %s\n", tok, frame.Display)
				}
			}

			if !trace {
				fmt.Fprintln(out, m.Display())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&trace, "trace", false, "print the display after every key that changed it")
	return cmd
}
