package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/teris-io/cli"

	"jodin.dev/jodinc/pkg/build"
	"jodin.dev/jodinc/pkg/parsing"
)

// sourceExtension is the minimal front end's source file suffix.
const sourceExtension = ".jodin"

var Description = strings.ReplaceAll(`
jodinc compiles one or more Jodin source files (or directories, searched
recursively) into compiled objects under the target directory, resolving
identifiers and generating code incrementally across the whole project.
`, "\n", " ")

var Jodinc = cli.New(Description).
	WithArg(cli.NewArg("inputs", "The source files or directories to be compiled").
		AsOptional().WithType(cli.TypeString)).
	WithOption(cli.NewOption("debug_level", "Verbosity of build logging, 0 (quiet) through 5 (trace)").
		WithType(cli.TypeInt)).
	WithOption(cli.NewOption("target_directory", "Where compiled objects and the build manifest are written").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("object_path", "Colon/semicolon separated list of directories of precompiled objects").
		WithType(cli.TypeString)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Printf("ERROR: Not enough arguments provided, use --help\n")
		return -1
	}

	settings := build.DefaultSettings()
	if raw, ok := options["debug_level"]; ok {
		level, err := strconv.Atoi(raw)
		if err != nil {
			fmt.Printf("ERROR: debug_level must be an integer: %s\n", err)
			return -1
		}
		settings.DebugLevel = level
	}
	if dir, ok := options["target_directory"]; ok {
		settings.TargetDirectory = dir
	}
	if raw, ok := options["object_path"]; ok {
		settings.ObjectPath = append(settings.ObjectPath, build.ParseObjectPath(raw)...)
	}
	logrus.SetLevel(levelFor(settings.DebugLevel))

	var paths []string
	for _, input := range args {
		filepath.Walk(input, func(path string, info fs.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || filepath.Ext(path) != sourceExtension {
				return nil
			}
			paths = append(paths, path)
			return nil
		})
	}

	var files []build.FileInput
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("ERROR: Unable to open input file: %s\n", err)
			return -1
		}

		parser := parsing.NewParser(bytes.NewReader(content))
		tree, err := parser.Parse()
		if err != nil {
			fmt.Printf("ERROR: Unable to complete 'parsing' pass for %s: %s\n", path, err)
			return -1
		}
		files = append(files, build.FileInput{Path: path, Source: content, Tree: tree})
	}

	result, err := build.Build(settings, files)
	if err != nil {
		fmt.Printf("ERROR: Unable to complete build: %s\n", err)
		return -1
	}

	for _, path := range result.Compiled {
		fmt.Printf("compiled  %s\n", path)
	}
	for _, path := range result.Reused {
		fmt.Printf("unchanged %s\n", path)
	}
	return 0
}

// levelFor maps the CLI's 0..5 debug_level onto logrus' own severity scale.
func levelFor(debugLevel int) logrus.Level {
	switch {
	case debugLevel <= 0:
		return logrus.ErrorLevel
	case debugLevel == 1:
		return logrus.WarnLevel
	case debugLevel == 2:
		return logrus.InfoLevel
	case debugLevel == 3:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

func main() { os.Exit(Jodinc.Run(os.Args, os.Stdout)) }
