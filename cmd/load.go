package cmd

import (
	"fmt"
	"github.com/cottand/tip/frontend/ilerr"
	"github.com/cottand/tip/internal/log"
	"github.com/cottand/tip/tip"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type programFlags struct {
	entryPoint *string
	logLevel   *int
	configPath *string
	colorMode  *string
}

// addProgramFlags registers the flags shared by every command that checks a program
func addProgramFlags(c *cobra.Command) *programFlags {
	f := &programFlags{}
	f.entryPoint = c.Flags().StringP("entry", "e", "", "entry point function, whose formals and result are int (default \"main\")")
	f.logLevel = c.Flags().IntP("log-level", "l", int(slog.LevelError), "log level")
	f.configPath = c.Flags().StringP("config", "c", "", "settings file (default "+tip.SettingsFile+" next to the program, if present)")
	f.colorMode = c.Flags().String("color", "auto", "colour output: auto, always or never")
	return f
}

// settingsFor resolves the settings of the program at target: the config file first,
// then any flag given explicitly
func (f *programFlags) settingsFor(cmd *cobra.Command, target string) (tip.Settings, error) {
	settings := tip.DefaultSettings()
	config := *f.configPath
	if config == "" {
		candidate := filepath.Join(filepath.Dir(target), tip.SettingsFile)
		if _, err := os.Stat(candidate); err == nil {
			config = candidate
		}
	}
	if config != "" {
		var err error
		settings, err = tip.LoadSettings(os.DirFS(filepath.Dir(config)), filepath.Base(config))
		if err != nil {
			return settings, err
		}
	}
	if cmd.Flags().Changed("entry") {
		settings.EntryPoint = *f.entryPoint
	}

	level, err := settings.Level()
	if err != nil {
		return settings, err
	}
	if cmd.Flags().Changed("log-level") {
		level = slog.Level(*f.logLevel)
	}
	log.SetLevel(level)
	return settings, nil
}

// loadTarget checks the file named by the first argument
func (f *programFlags) loadTarget(cmd *cobra.Command, args []string) (*tip.Program, error) {
	target, err := filepath.Abs(args[0])
	if err != nil {
		return nil, fmt.Errorf("could not get absolute path of target: %w", err)
	}
	stat, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("could not stat target: %w", err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%s is a directory, expected a .tip file", args[0])
	}
	settings, err := f.settingsFor(cmd, target)
	if err != nil {
		return nil, fmt.Errorf("could not load settings: %w", err)
	}

	var folderFS fs.FS = os.DirFS(filepath.Dir(target))
	prog, err := tip.LoadProgram(folderFS, filepath.Base(target), settings)
	if err != nil {
		return nil, fmt.Errorf("could not load program (this is a bug and not a type error): %w", err)
	}
	return prog, nil
}

// reportErrors writes every error of prog to w and returns a summary error, or nil
func reportErrors(w io.Writer, prog *tip.Program, p palette) error {
	if !prog.Errors().HasError() {
		return nil
	}
	sb := &strings.Builder{}
	for _, tipError := range prog.Errors().Errors() {
		sb.WriteString("\n")
		sb.WriteString(p.err(ilerr.FormatWithCodeAndSource(tipError, prog.FileSet())))
	}
	_, _ = fmt.Fprintln(w, sb.String())
	return fmt.Errorf("%d error(s) found in %s", len(prog.Errors().Errors()), prog.Filename())
}

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiRed   = "\x1b[31m"
	ansiFaint = "\x1b[2m"
)

type palette struct {
	enabled bool
}

func (f *programFlags) palette(out *os.File) (palette, error) {
	switch mode := *f.colorMode; mode {
	case "always":
		return palette{enabled: true}, nil
	case "never":
		return palette{}, nil
	case "auto", "":
		fd := out.Fd()
		return palette{enabled: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)}, nil
	}
	return palette{}, fmt.Errorf("unknown colour mode %q", *f.colorMode)
}

func (p palette) wrap(code, s string) string {
	if !p.enabled {
		return s
	}
	return code + s + ansiReset
}

func (p palette) name(s string) string  { return p.wrap(ansiBold, s) }
func (p palette) err(s string) string   { return p.wrap(ansiRed, s) }
func (p palette) faint(s string) string { return p.wrap(ansiFaint, s) }
