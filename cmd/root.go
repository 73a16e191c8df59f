package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/tilepad/internal/atlas"
	"github.com/kiesman99/tilepad/pkg/tile"
)

const (
	defaultInput  = "../image.png"
	defaultOutput = "outputImage.png"

	// legacyOutputName is where --legacy-output sends the atlas, next to the input
	legacyOutputName = "outPut.png"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tilepad [input] [output] [tilesize]",
	Short: "Pad every tile of a tile sheet with copies of its edge pixels",
	Long: `tilepad converts a tile sheet (a grid of equally sized square tiles) into a
padded atlas. Each tile is copied into its own cell and surrounded by a border
of pixels extruded from its own edges and corners, so that bilinear or
mipmapped sampling of the atlas does not bleed neighbouring tiles into each
other.

The border is tilesize/8 pixels per cell, half of it on each side. Width and
height of the input must be multiples of the tile size.

Examples:
  # Pad 32 pixel tiles
  tilepad sheet.png atlas.png

  # Pad 16 pixel tiles and write a manifest of tile positions
  tilepad sheet.png atlas.png 16 --manifest atlas.yaml

  # Use four workers and write TIFF
  tilepad sheet.png atlas.tif -t 64 -f tiff -w 4

  # Start HTTP server
  tilepad serve --port 8080`,
	Args:         cobra.MaximumNArgs(3),
	SilenceUsage: true,
	RunE:         runBuild,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tilepad.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log every painted tile")

	// Output options
	rootCmd.Flags().StringP("output", "o", defaultOutput, "output file")
	rootCmd.Flags().StringP("format", "f", "png", "output format (png|tiff)")
	rootCmd.Flags().StringP("manifest", "m", "", "write a YAML manifest of tile positions to this file")
	rootCmd.Flags().Bool("legacy-output", false, "always write to <input-dir>/"+legacyOutputName+", ignoring the output argument")

	// Tile options
	rootCmd.Flags().IntP("tilesize", "t", tile.DefaultSize, "tile size in pixels")
	rootCmd.Flags().IntP("workers", "w", 1, "number of grid rows painted concurrently")

	// Bind flags to viper for root command
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	viper.BindPFlag("format", rootCmd.Flags().Lookup("format"))
	viper.BindPFlag("manifest", rootCmd.Flags().Lookup("manifest"))
	viper.BindPFlag("legacy-output", rootCmd.Flags().Lookup("legacy-output"))
	viper.BindPFlag("tilesize", rootCmd.Flags().Lookup("tilesize"))
	viper.BindPFlag("workers", rootCmd.Flags().Lookup("workers"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".tilepad" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tilepad")
	}

	viper.SetEnvPrefix("tilepad")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	opts, err := resolveOptions(args, cmd.Flags().Changed)
	if err != nil {
		return err
	}
	if opts.LegacyOutput && opts.Format != tile.FormatPNG {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: --legacy-output always writes %s, using PNG\n", legacyOutputName)
		opts.Format = tile.FormatPNG
	}

	logger := newLogger(cmd.ErrOrStderr(), viper.GetBool("verbose"))
	logger.Debug("resolved options",
		"input", opts.Input, "output", opts.Output, "tile_size", opts.TileSize,
		"format", tile.FormatName(opts.Format), "workers", opts.Workers)

	src, err := tile.ReadImage(opts.Input)
	if err != nil {
		return err
	}

	builder := atlas.New(atlas.WithLogger(logger), atlas.WithWorkers(opts.Workers))
	result, err := builder.Build(cmd.Context(), src, opts.TileSize)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Output %s: %s (%dx%d)\n", strings.ToUpper(tile.FormatName(opts.Format)),
		opts.Output, result.Geometry.CanvasWidth, result.Geometry.CanvasHeight)
	if err := tile.WriteImage(opts.Output, result.Canvas, opts.Format); err != nil {
		return fmt.Errorf("failed to write atlas: %w", err)
	}

	if opts.Manifest != "" {
		m := tile.NewManifest(filepath.Base(opts.Output), result.Geometry)
		if err := tile.WriteManifest(opts.Manifest, m); err != nil {
			os.Remove(opts.Output)
			return fmt.Errorf("failed to write manifest: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Manifest written to '%s'.\n", opts.Manifest)
	}

	return nil
}

// resolveOptions merges the viper configuration with the positional
// arguments input, output and tile size. A positional replaces the
// configured value unless changed reports its flag as given on the
// command line.
func resolveOptions(args []string, changed func(name string) bool) (*tile.Options, error) {
	format, err := tile.ParseFormat(viper.GetString("format"))
	if err != nil {
		return nil, err
	}

	opts := &tile.Options{
		Input:        defaultInput,
		Output:       viper.GetString("output"),
		Manifest:     viper.GetString("manifest"),
		TileSize:     viper.GetInt("tilesize"),
		Format:       format,
		Workers:      viper.GetInt("workers"),
		LegacyOutput: viper.GetBool("legacy-output"),
	}

	switch len(args) {
	case 3:
		size, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("invalid tile size %q: %w", args[2], err)
		}
		if !changed("tilesize") {
			opts.TileSize = size
		}
		fallthrough
	case 2:
		if !changed("output") {
			opts.Output = args[1]
		}
		fallthrough
	case 1:
		opts.Input = args[0]
	}

	opts.Output, err = outputPath(opts.Input, opts.Output, opts.LegacyOutput)
	if err != nil {
		return nil, err
	}
	return opts, nil
}

// outputPath returns output, or with legacy set the absolute path of
// legacyOutputName in the directory of input.
func outputPath(input, output string, legacy bool) (string, error) {
	if !legacy {
		return output, nil
	}
	return filepath.Abs(filepath.Join(filepath.Dir(input), legacyOutputName))
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
