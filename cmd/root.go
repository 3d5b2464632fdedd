// crossforge [flags] [path/to/manifest.gyp]
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/crossforge-build/crossforge/internal/builder"
	"github.com/crossforge-build/crossforge/internal/config"
	"github.com/crossforge-build/crossforge/internal/msg"
	"github.com/crossforge-build/crossforge/internal/strategy"
	"github.com/crossforge-build/crossforge/internal/vcs"
)

var (
	flagOS               string
	flagGenerator        string
	flagNinja            bool
	flagConfiguration    string
	flagThreads          int
	flagKeepGoing        bool
	flagVerbose          bool
	flagNoGyp            bool
	flagNoBuild          bool
	flagClean            bool
	flagDeps             bool
	flagTest             bool
	flagTestUntilFailure bool
	flagTestFilter       string
	flagDefines          []string
	flagGenFlags         []string
	flagTestArgs         []string
)

// buildRoot is the directory the tool was invoked from; manifest paths,
// output directories and bundled toolchains are all resolved against it.
var buildRoot string

// buildFlagDefaults holds the per-project build flags discovered from the
// manifest's declared-defaults document before the real argument parse.
var buildFlagDefaults = map[string]any{}

var rootCmd = &cobra.Command{
	Use:   "crossforge [flags] [path/to/manifest.gyp]",
	Short: "Cross-platform gyp build driver",
	Long: `Generates native build files for a gyp manifest, runs the native build
tool, and optionally runs the built test targets.`,
	Args: cobra.MaximumNArgs(1),
	Run:  doBuild,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&flagOS, "os", "o", "", "Target OS, optionally with a flavor (e.g. linux, android-x86); defaults to the host OS")
	f.StringVarP(&flagGenerator, "generator", "g", "", "Generator to build with; defaults to the platform's first registered builder")
	f.BoolVar(&flagNinja, "ninja", false, "Shorthand for --generator ninja")
	f.StringVarP(&flagConfiguration, "configuration", "c", "", "Build configuration; defaults to the first configuration the project declares")
	f.IntVarP(&flagThreads, "threads", "j", 0, "Number of parallel build and test jobs; defaults per tool")
	f.BoolVarP(&flagKeepGoing, "keep-going", "k", false, "Keep building past the first error")
	f.BoolVarP(&flagVerbose, "verbose", "w", false, "Verbose build and test output")
	f.BoolVar(&flagNoGyp, "nogyp", false, "Skip the generator phase")
	f.BoolVar(&flagNoBuild, "nobuild", false, "Skip the native build phase")
	f.BoolVar(&flagClean, "clean", false, "Remove the selected builder's output before anything else")
	f.BoolVar(&flagDeps, "deps", false, "Print the manifest's dependency graph and exit")
	f.BoolVarP(&flagTest, "test", "t", false, "Run the test targets after building")
	f.BoolVarP(&flagTestUntilFailure, "test_until_failure", "T", false, "Run test targets one at a time and stop at the first failure")
	f.StringVar(&flagTestFilter, "test_filter", "", "Only run test targets whose name matches this glob")
	f.StringArrayVarP(&flagDefines, "define", "D", nil, "Extra var=value define forwarded to the generator; repeatable")
	f.StringArrayVarP(&flagGenFlags, "genflag", "G", nil, "Extra generator flag; repeatable")
	f.StringArrayVar(&flagTestArgs, "test_arg", nil, "Extra argument forwarded to every test invocation; repeatable")
}

func Execute() {
	rootDir, err := os.Getwd()
	if err != nil {
		msg.Fatal("%v", err)
	}
	buildRoot = rootDir

	registerManifestFlags(rootDir)

	if hostOS, err := strategy.HostOS(); err == nil {
		rootCmd.Long += "\n\n" + buildList(hostOS)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func doBuild(cmd *cobra.Command, args []string) {
	hostOS, err := strategy.HostOS()
	if err != nil {
		msg.Fatal("%v", err)
	}

	platform := flagOS
	if platform == "" {
		platform = hostOS
	}
	generator := flagGenerator
	if flagNinja && generator == "" {
		generator = "ninja"
	}

	manifest := ""
	if len(args) > 0 {
		manifest, err = resolveManifest(buildRoot, args[0])
		if err != nil {
			msg.Fatal("%v", err)
		}
	}
	if manifest == "" && !flagClean {
		msg.Fatal("no build manifest given; see --help for usage")
	}

	// The configuration document nearest the manifest governs this run; a
	// project without one gets the empty configuration list.
	docPath := filepath.Join(buildRoot, config.ConfigurationsDocument)
	if manifest != "" {
		if found := config.FindNearest(manifest, config.ConfigurationsDocument, buildRoot); found != "" {
			docPath = found
		}
	}
	resolver := config.NewResolver(docPath)

	opts := &strategy.Options{
		RootDir:   buildRoot,
		HostOS:    hostOS,
		Threads:   flagThreads,
		KeepGoing: flagKeepGoing,
		Verbose:   flagVerbose,
		Vars:      composeVars(cmd),
		GenFlags:  flagGenFlags,
		Resolver:  resolver,
	}
	// Untracked trees build fine, they just get no revision stamp.
	if revision, err := vcs.Revision(buildRoot); err == nil {
		opts.Revision = revision
	}

	if flagDeps {
		dumpDeps(opts, platform, manifest)
		return
	}

	b, err := strategy.DefaultRegistry().New(platform, generator, opts)
	if err != nil {
		msg.Fatal("%v", err)
	}

	orchestrator := &builder.Orchestrator{
		Strategy: b,
		Resolver: resolver,
		Tests:    &testRunner{build: b, opts: opts, manifest: manifest, platform: platform},
		Flags: builder.Flags{
			Clean:            flagClean,
			NoGyp:            flagNoGyp,
			NoBuild:          flagNoBuild,
			Test:             flagTest,
			TestUntilFailure: flagTestUntilFailure,
			Configuration:    flagConfiguration,
		},
	}
	if err := orchestrator.Run(manifest); err != nil {
		msg.Fatal("%v", err)
	}
}
