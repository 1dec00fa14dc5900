// This file is part of langfilter (https://github.com/paranoidi/langfilter)
// See instructions in the README.md file that accompanies this program.

package main

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/alecthomas/kingpin.v2"
)

// BuildVersion holds the git build number (set by make).
var BuildVersion = "dev"

func main() {
	var (
		app = kingpin.New("langfilter", "Remove unwanted language tracks from Matroska files.")

		output         = app.Flag("output", "Output file path (only valid with a single input file).").Short('o').String()
		nonInteractive = app.Flag("non-interactive", "Only apply config rules, no user interaction.").Short('n').Bool()
		noBackup       = app.Flag("no-backup", "Don't create a backup when replacing the original file.").Bool()
		configPath     = app.Flag("config", "Path to configuration file (default: auto-detect).").Short('c').String()
		dryrun         = app.Flag("dry-run", "Dry-run mode (only show commands).").Bool()
		showOnly       = app.Flag("show", "List the tracks of the input file(s) and exit.").Bool()
		doRename       = app.Flag("rename", "Rename processed files based on scene information in the filename.").Bool()
		renameMask     = app.Flag("rename-format", "Format mask for --rename (default: scene name rebuild).").String()

		files = app.Arg("mkvfile", "Matroska file(s) to process.").Required().Strings()
	)

	app.Version(BuildVersion)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	// Plain logs.
	log.SetFlags(0)

	u := newUI(os.Stdout)

	// --show only reads the container; it works without mkvtoolnix.
	if *showOnly {
		code := 0
		for _, fname := range *files {
			if err := showFile(fname, u); err != nil {
				log.Printf("Error: %v", err)
				code = 1
			}
		}
		os.Exit(code)
	}

	if err := requirements(); err != nil {
		log.Fatalf("Requirements check: %v", err)
	}

	if *output != "" && len(*files) > 1 {
		log.Fatal("Error: --output can only be used with a single input file.")
	}

	for _, fname := range *files {
		fi, err := os.Stat(fname)
		if err != nil {
			log.Fatalf("Error: file %q does not exist.", fname)
		}
		if !fi.Mode().IsRegular() {
			log.Fatalf("Error: %q is not a file.", fname)
		}
		if !strings.EqualFold(filepath.Ext(fname), ".mkv") {
			log.Printf("Warning: %q does not have .mkv extension.", fname)
		}
	}

	rules := loadRulesOrWarn(*configPath, u)

	if *nonInteractive && !rules.hasRules() {
		log.Print("Error: non-interactive mode requires a configuration file with rules.")
		log.Fatal("Please create a config file with 'keep' or 'remove' rules, or run without --non-interactive.")
	}
	if *nonInteractive {
		u.printf("Running in non-interactive mode with rules: %s\n", rules)
	}

	var run runner = runCommand(0)
	if *dryrun {
		run = fakeRunCommand(0)
	}

	code := runBatch(*files, batchOptions{
		rules:          rules,
		nonInteractive: *nonInteractive,
		output:         *output,
		backup:         !*noBackup,
		dryrun:         *dryrun,
		rename:         *doRename,
		renameMask:     *renameMask,
		run:            run,
		in:             os.Stdin,
		ui:             u,
	})
	os.Exit(code)
}

// loadRulesOrWarn resolves and loads the configuration. An explicitly
// given path must exist; a malformed config degrades to empty rules with
// a warning, never a fatal error.
func loadRulesOrWarn(path string, u *ui) *ruleSet {
	explicit := path != ""
	if explicit {
		if _, err := os.Stat(path); err != nil {
			log.Fatalf("Error: specified config file %q does not exist.", path)
		}
	} else {
		path = findRulesFile()
	}
	if path == "" {
		return newRuleSet()
	}

	rules, err := loadRules(path)
	if err != nil {
		log.Printf("Warning: failed to load config from %s: %v", path, err)
		return newRuleSet()
	}
	if rules.hasRules() {
		if explicit {
			u.printf("Loaded configuration from: %s\n", path)
		} else {
			u.printf("Found and loaded configuration from: %s\n", path)
		}
	}
	return rules
}
