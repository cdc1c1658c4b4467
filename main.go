package main

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/10gen/candiedyaml"
	"github.com/10gen/mongosql-air/mongosql"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
)

// config is the YAML configuration accepted by --config.
type config struct {
	Passes []string `yaml:"passes"`
	Debug  bool     `yaml:"debug"`
}

func loadConfig(path string) (*config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: '%s'", path)
	}
	var cfg config
	if err := candiedyaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	return &cfg, nil
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		passes     []string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "airdesugar [file]",
		Short: "Desugar an AIR pipeline",
		Long: `airdesugar reads the extended JSON form of an AIR pipeline from file, or
from stdin when no file is given, runs the desugarer passes over it, and
prints the result as relaxed extended JSON.`,
		Version:      mongosql.Version(),
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &config{}
			if configPath != "" {
				var err error
				if cfg, err = loadConfig(configPath); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("pass") {
				cfg.Passes = passes
			}
			if cmd.Flags().Changed("debug") {
				cfg.Debug = debug
			}
			if cfg.Debug {
				logrus.SetLevel(logrus.DebugLevel)
			}

			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			return run(in, cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	cmd.Flags().StringArrayVar(&passes, "pass", nil, "desugarer pass to run; may be repeated (default: all passes)")
	cmd.Flags().BoolVar(&debug, "debug", false, "log each pass at debug level")

	return cmd
}

func run(in io.Reader, out io.Writer, cfg *config) error {
	vr, err := bsonrw.NewExtJSONValueReader(in, false)
	if err != nil {
		return fmt.Errorf("failed to read JSON: %w", err)
	}
	pipeline, err := bsonrw.NewCopier().CopyDocumentToBytes(vr)
	if err != nil {
		return fmt.Errorf("failed to read AIR pipeline: %w", err)
	}

	logrus.WithField("passes", cfg.Passes).Debug("desugaring pipeline")

	desugaring, err := mongosql.Desugar(mongosql.DesugarArgs{
		Pipeline: pipeline,
		Passes:   cfg.Passes,
	})
	if err != nil {
		return err
	}

	result, err := bson.MarshalExtJSON(bson.Raw(desugaring.Pipeline), false, false)
	if err != nil {
		return fmt.Errorf("failed to marshal desugared pipeline: %w", err)
	}

	_, err = fmt.Fprintf(out, "%s\n", result)
	return err
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
