package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dyuri/gadgetconv/internal/model"
	"github.com/dyuri/gadgetconv/internal/palette"
	"github.com/dyuri/gadgetconv/internal/palmap"
	"github.com/dyuri/gadgetconv/internal/text"
	"github.com/dyuri/gadgetconv/pkg/gadgetconv"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var logger = logrus.New()

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gadgetconv",
	Short: "Extract and repack the sprites of a gadget container",
	Long: `gadgetconv works with the gadgets.dat/gadgets.off sprite container.

It can extract sprites to paletted PNG images using a sprite to palette map,
pack edited images back into the data file, list the chunks of a container
and check a palette map against it.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log per-chunk details")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Log warnings and errors only")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text, json")
	rootCmd.PersistentFlags().Bool("log-timestamps", false, "Include timestamps in text logs")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(repackCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(mapCmd)
	rootCmd.AddCommand(versionCmd)
}

func setupLogging(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	format, _ := cmd.Flags().GetString("log-format")
	timestamps, _ := cmd.Flags().GetBool("log-timestamps")

	logger.SetOutput(os.Stderr)

	switch {
	case verbose:
		logger.SetLevel(logrus.DebugLevel)
	case quiet:
		logger.SetLevel(logrus.WarnLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	switch format {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: !timestamps,
			FullTimestamp:    timestamps,
		})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format: %s", format)
	}

	return nil
}

// indexSetValue is a pflag.Value for sprite subsets like "0-20,35,40-45"
type indexSetValue struct {
	set *text.IndexSet
}

var _ pflag.Value = (*indexSetValue)(nil)

func (v *indexSetValue) String() string {
	if v.set == nil {
		return ""
	}
	return v.set.String()
}

func (v *indexSetValue) Set(s string) error {
	set, err := text.ParseIndexSet(s)
	if err != nil {
		return err
	}
	v.set = set
	return nil
}

func (v *indexSetValue) Type() string {
	return "indices"
}

func addSpritesFlag(cmd *cobra.Command, usage string) {
	cmd.Flags().Var(&indexSetValue{}, "sprites", usage)
}

func getSprites(cmd *cobra.Command) *text.IndexSet {
	f := cmd.Flags().Lookup("sprites")
	if f == nil {
		return nil
	}
	return f.Value.(*indexSetValue).set
}

func containerDir(path string) (string, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("container directory: %w", err)
	}
	if !stat.IsDir() {
		return "", fmt.Errorf("container directory: %s is not a directory", path)
	}
	return path, nil
}

// loadInventory reads and classifies the container in dir
func loadInventory(cmd *cobra.Command, dir string) (string, *gadgetconv.Inventory, error) {
	datName, _ := cmd.Flags().GetString("dat-name")
	offName, _ := cmd.Flags().GetString("off-name")

	datPath := gadgetconv.ResolvePath(dir, datName)
	c, err := gadgetconv.LoadContainer(datPath, gadgetconv.ResolvePath(dir, offName))
	if err != nil {
		return "", nil, err
	}
	return datPath, gadgetconv.Inspect(c), nil
}

func addContainerFlags(cmd *cobra.Command) {
	cmd.Flags().String("dat-name", gadgetconv.DefaultDatName, "Data file name or path, relative to the container directory")
	cmd.Flags().String("off-name", gadgetconv.DefaultOffName, "Offset table name or path, relative to the container directory")
}

// extract command
var extractCmd = &cobra.Command{
	Use:   "extract <dir>",
	Short: "Extract sprites to paletted PNG images",
	Long: `Extract every mapped sprite of the container in <dir> to
sprite_XXX__pal_YYY.png, using the palette chunk the palette map assigns
to it. Sprites without a mapping are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	addContainerFlags(extractCmd)
	extractCmd.Flags().StringP("output-dir", "o", gadgetconv.DefaultSpritesDir, "Directory to write images to")
	extractCmd.Flags().Int("interleave", gadgetconv.DefaultInterleave, "Horizontal interleave factor")
	extractCmd.Flags().String("palette-map", gadgetconv.DefaultPaletteMap, "Sprite to palette map")
	addSpritesFlag(extractCmd, `Sprite indices to extract, e.g. "0-20,35,40-45" (default: all)`)
}

func runExtract(cmd *cobra.Command, args []string) error {
	dir, err := containerDir(args[0])
	if err != nil {
		return err
	}
	datName, _ := cmd.Flags().GetString("dat-name")
	offName, _ := cmd.Flags().GetString("off-name")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	interleave, _ := cmd.Flags().GetInt("interleave")
	mapPath, _ := cmd.Flags().GetString("palette-map")
	sprites := getSprites(cmd)

	logger.WithFields(logrus.Fields{
		"dir":        dir,
		"output":     outputDir,
		"map":        mapPath,
		"interleave": interleave,
		"sprites":    sprites.String(),
	}).Info("Extracting sprites")

	report, err := gadgetconv.Extract(gadgetconv.ExtractOptions{
		DatPath:        gadgetconv.ResolvePath(dir, datName),
		OffPath:        gadgetconv.ResolvePath(dir, offName),
		PaletteMapPath: mapPath,
		OutputDir:      outputDir,
		Interleave:     interleave,
		Sprites:        sprites,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Extracted %d sprite(s) to %s", len(report.Extracted), outputDir)
	if len(report.Skipped) > 0 {
		fmt.Printf(", skipped %d", len(report.Skipped))
	}
	fmt.Println()
	return nil
}

// repack command
var repackCmd = &cobra.Command{
	Use:   "repack <dir>",
	Short: "Pack edited sprite images back into the data file",
	Long: `Apply every sprite_XXX__pal_YYY.png in the sprites directory to the
container in <dir> and write the patched data file.

The palette map decides which palette chunk an image updates; the palette
number in the file name is only a hint. Images must keep the size of the
original sprite.`,
	Args: cobra.ExactArgs(1),
	RunE: runRepack,
}

func init() {
	addContainerFlags(repackCmd)
	repackCmd.Flags().String("out-name", gadgetconv.DefaultOutName, "Output file name or path, relative to the container directory")
	repackCmd.Flags().String("sprites-dir", gadgetconv.DefaultSpritesDir, "Directory holding the edited images")
	repackCmd.Flags().Int("interleave", gadgetconv.DefaultInterleave, "Horizontal interleave factor (must match extract)")
	repackCmd.Flags().String("palette-map", gadgetconv.DefaultPaletteMap, "Sprite to palette map")
	repackCmd.Flags().Bool("dry-run", false, "Do everything except writing the output file")
	addSpritesFlag(repackCmd, `Sprite indices to apply, e.g. "0-20,35,40-45" (default: all)`)
}

func runRepack(cmd *cobra.Command, args []string) error {
	dir, err := containerDir(args[0])
	if err != nil {
		return err
	}
	datName, _ := cmd.Flags().GetString("dat-name")
	offName, _ := cmd.Flags().GetString("off-name")
	outName, _ := cmd.Flags().GetString("out-name")
	spritesDir, _ := cmd.Flags().GetString("sprites-dir")
	interleave, _ := cmd.Flags().GetInt("interleave")
	mapPath, _ := cmd.Flags().GetString("palette-map")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	sprites := getSprites(cmd)

	outPath := gadgetconv.ResolvePath(dir, outName)

	logger.WithFields(logrus.Fields{
		"dir":        dir,
		"sprites":    spritesDir,
		"map":        mapPath,
		"output":     outPath,
		"interleave": interleave,
		"subset":     sprites.String(),
		"dry_run":    dryRun,
	}).Info("Repacking sprites")

	report, err := gadgetconv.Repack(gadgetconv.RepackOptions{
		DatPath:        gadgetconv.ResolvePath(dir, datName),
		OffPath:        gadgetconv.ResolvePath(dir, offName),
		OutPath:        outPath,
		PaletteMapPath: mapPath,
		SpritesDir:     spritesDir,
		Interleave:     interleave,
		Sprites:        sprites,
		DryRun:         dryRun,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Updated sprites: %d\n", len(report.Updated))
	fmt.Printf("Palettes touched: %v\n", report.PalettesTouched)
	if len(report.Skipped) > 0 {
		fmt.Printf("Skipped files: %d\n", len(report.Skipped))
	}
	if !dryRun {
		fmt.Printf("Wrote %d bytes to %s\n", report.Size, outPath)
	}
	return nil
}

// info command
var infoCmd = &cobra.Command{
	Use:   "info <dir>",
	Short: "List the chunks of a container",
	Long: `Display the chunk table of the container in <dir>.

Shows offset, length and kind of every chunk, sprite dimensions and
whether a bin holds a 6-bit palette.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	addContainerFlags(infoCmd)
	infoCmd.Flags().Bool("json", false, "Output as JSON")
	infoCmd.Flags().Bool("brief", false, "Show only summary")
}

func runInfo(cmd *cobra.Command, args []string) error {
	dir, err := containerDir(args[0])
	if err != nil {
		return err
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")
	brief, _ := cmd.Flags().GetBool("brief")

	path, inv, err := loadInventory(cmd, dir)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputInfoJSON(path, inv)
	}
	return outputInfoText(path, inv, brief)
}

func outputInfoText(path string, inv *gadgetconv.Inventory, brief bool) error {
	s := inv.Summary
	if brief {
		fmt.Printf("%s: Chunks=%d Sprites=%d Bins=%d Palettes=%d Invalid=%d\n",
			path, s.Chunks, s.Sprites, s.Bins, s.Palettes, s.Invalid)
		return nil
	}

	w := text.NewWriter(os.Stdout)
	if err := w.WriteSummary(path, len(inv.Container.Data), s); err != nil {
		return err
	}
	fmt.Println()
	return w.WriteChunks(inv.Chunks)
}

func outputInfoJSON(path string, inv *gadgetconv.Inventory) error {
	chunks := make([]map[string]interface{}, len(inv.Chunks))
	for i, c := range inv.Chunks {
		entry := map[string]interface{}{
			"index":  c.Index,
			"offset": c.Ref.Offset,
			"length": c.Ref.Length,
			"kind":   c.Kind.String(),
		}
		switch c.Kind {
		case model.KindSprite:
			entry["width"] = c.Width
			entry["height"] = c.Height
		case model.KindBin:
			if palette.IsValid6Bit(c.Payload) {
				entry["paletteColors"] = palette.ColorCount(c.Payload)
			}
		default:
			if c.Err != nil {
				entry["error"] = c.Err.Error()
			}
		}
		chunks[i] = entry
	}

	s := inv.Summary
	info := map[string]interface{}{
		"file":     path,
		"dataSize": len(inv.Container.Data),
		"counts": map[string]int{
			"chunks":   s.Chunks,
			"sprites":  s.Sprites,
			"bins":     s.Bins,
			"palettes": s.Palettes,
			"invalid":  s.Invalid,
		},
		"chunks": chunks,
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

// validate command
var validateCmd = &cobra.Command{
	Use:   "validate <dir>",
	Short: "Check a palette map against a container",
	Long: `Validate the palette map against the container in <dir>.

Checks that mapped keys are sprites and that every palette target is an
in-range bin holding a valid 6-bit palette.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	addContainerFlags(validateCmd)
	validateCmd.Flags().String("palette-map", gadgetconv.DefaultPaletteMap, "Sprite to palette map")
	validateCmd.Flags().Bool("strict", false, "Fail on warnings")
}

func runValidate(cmd *cobra.Command, args []string) error {
	dir, err := containerDir(args[0])
	if err != nil {
		return err
	}
	mapPath, _ := cmd.Flags().GetString("palette-map")
	strict, _ := cmd.Flags().GetBool("strict")

	_, inv, err := loadInventory(cmd, dir)
	if err != nil {
		return err
	}
	m, err := palmap.LoadFile(mapPath)
	if err != nil {
		return fmt.Errorf("%s: %w", mapPath, err)
	}

	v := gadgetconv.Validate(inv, m)
	printResults(mapPath, v, strict)

	if v.Failed(strict) {
		return fmt.Errorf("validation failed")
	}
	return nil
}

func printResults(file string, v *gadgetconv.Validation, strict bool) {
	fmt.Printf("Validating: %s\n", file)
	fmt.Println(strings.Repeat("=", 50))

	if !v.HasErrors() && !v.HasWarnings() {
		fmt.Println("✓ Valid palette map - no issues found")
		return
	}

	if v.HasErrors() {
		fmt.Printf("\nErrors (%d):\n", len(v.Errors))
		for _, issue := range v.Errors {
			fmt.Printf("  ✗ %s\n", issue)
		}
	}

	if v.HasWarnings() {
		fmt.Printf("\nWarnings (%d):\n", len(v.Warnings))
		for _, issue := range v.Warnings {
			fmt.Printf("  ⚠ %s\n", issue)
		}
	}

	fmt.Println()
	if v.HasErrors() {
		fmt.Printf("Validation failed: %d error(s)", len(v.Errors))
		if v.HasWarnings() {
			fmt.Printf(", %d warning(s)", len(v.Warnings))
		}
		fmt.Println()
	} else {
		fmt.Printf("Validation passed with %d warning(s)\n", len(v.Warnings))
		if strict {
			fmt.Println("(use without --strict to ignore warnings)")
		}
	}
}

// map command
var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Work with palette maps",
}

var mapInitCmd = &cobra.Command{
	Use:   "init <dir>",
	Short: "Generate a skeleton palette map",
	Long: `Write a palette map for the container in <dir> with every sprite
marked "unknown" and every 6-bit palette chunk marked "palette".

Replace the "unknown" values with palette chunk indices to make the
sprites extractable.`,
	Args: cobra.ExactArgs(1),
	RunE: runMapInit,
}

func init() {
	addContainerFlags(mapInitCmd)
	mapInitCmd.Flags().StringP("output", "o", gadgetconv.DefaultPaletteMap, "Output file (- for stdout)")
	mapInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
	mapCmd.AddCommand(mapInitCmd)
}

func runMapInit(cmd *cobra.Command, args []string) error {
	dir, err := containerDir(args[0])
	if err != nil {
		return err
	}
	outputPath, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	_, inv, err := loadInventory(cmd, dir)
	if err != nil {
		return err
	}
	m := palmap.Generate(inv.Chunks)

	if outputPath == "-" {
		return m.Write(os.Stdout)
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", outputPath)
		}
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer out.Close()

	if err := m.Write(out); err != nil {
		return fmt.Errorf("write palette map: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"file":    outputPath,
		"entries": m.Len(),
	}).Info("Palette map written")
	return out.Close()
}

// version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gadgetconv version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
	},
}
