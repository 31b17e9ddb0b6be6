package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	spacet "github.com/william-xian/SpaceT"
)

var (
	cfgFile string
	conf    *viper.Viper
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	conf = viper.New()
	root := &cobra.Command{
		Use:           "spacet",
		Short:         "Keplerian star system kinematics",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "configuration file, or directory holding conf.toml (default $"+spacet.ConfigEnv+")")
	root.PersistentFlags().String("system", "solar", "system to load: solar or toy")
	root.PersistentFlags().String("log-level", "info", "debug, info, warn or error")
	root.PersistentFlags().Float64("time-unit", 1, "simulated seconds per unit of simulation time")
	conf.BindPFlag("system", root.PersistentFlags().Lookup("system"))
	conf.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))
	conf.BindPFlag("engine.time_unit", root.PersistentFlags().Lookup("time-unit"))

	root.AddCommand(newRunCmd(), newBodiesCmd(), newResolveCmd())
	return root
}

func initConfig() error {
	spacet.SetDefaults(conf)
	conf.SetEnvPrefix("SPACET")
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	conf.AutomaticEnv()
	if cfgFile == "" {
		cfgFile = os.Getenv(spacet.ConfigEnv)
	}
	if cfgFile == "" {
		return nil
	}
	if info, err := os.Stat(cfgFile); err == nil && info.IsDir() {
		conf.SetConfigName("conf")
		conf.AddConfigPath(cfgFile)
	} else {
		conf.SetConfigFile(cfgFile)
	}
	if err := conf.ReadInConfig(); err != nil {
		return fmt.Errorf("%s: %w", cfgFile, err)
	}
	return nil
}

// loadTree builds the configured system and wraps it into a tree.
func loadTree(opts ...spacet.TreeOption) (*spacet.Tree, spacet.Config, error) {
	engine, err := spacet.ConfigFromViper(conf)
	if err != nil {
		return nil, engine, err
	}
	var root *spacet.Body
	switch system := conf.GetString("system"); system {
	case "solar":
		root, err = spacet.SolarSystem()
	case "toy":
		root, err = spacet.ToySystem()
		engine.G = spacet.ToyConfig().G
	default:
		return nil, engine, fmt.Errorf("unknown system %q", system)
	}
	if err != nil {
		return nil, engine, err
	}
	tree, err := spacet.NewTree(root, engine, opts...)
	return tree, engine, err
}

func newBodiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bodies",
		Short: "List the bodies with their paths and periods",
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, _, err := loadTree()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return tree.Walk(func(b *spacet.Body) error {
				_, err := fmt.Fprintf(out, "%-10s %*s%s\n", b.Path(), 2*b.Depth(), "", b)
				return err
			})
		},
	}
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <path>",
		Short: "Print the body at a dotted path, e.g. 1.4.1",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, _, err := loadTree()
			if err != nil {
				return err
			}
			b, err := tree.Resolve(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), b)
			return nil
		},
	}
}

func newLogger() log.Logger {
	return spacet.NewLogger(os.Stderr, conf.GetString("log.level"))
}
