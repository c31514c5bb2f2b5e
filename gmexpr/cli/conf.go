package cli

import (
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/npillmayer/gmexpr"
	"github.com/npillmayer/schuko/schukonf/koanfadapter"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/spf13/pflag"
)

// defaults for parser settings; config files and flags override them
var defaults = map[string]interface{}{
	"parse.comparisons":   true,
	"parse.rightgrouping": false,
	"parse.keepabandoned": false,
	"format":              "canonical",
}

// flags which set a configuration key of a different name
var flagKeys = map[string]string{
	"comparisons":    "parse.comparisons",
	"right-grouping": "parse.rightgrouping",
	"keep-abandoned": "parse.keepabandoned",
}

// loadConfig is a callback function used by cobra's initialization mechanism.
// Unfortunately we're not allowed a return value.
func loadConfig() {
	k := koanf.New(".") // '.' is hierarchy delimiter
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		tracing.Errorf(err.Error())
		gmexpr.Exit(1)
	}
	// We locate gmexpr configuration with an application-key of 'GMEXPR' and
	// use NestedText-format (nt) for config-files
	konf := koanfadapter.New(k, "GMEXPR", []string{"nt"})
	konf.InitDefaults()
	if err := mergeFlags(konf, rootCmd.PersistentFlags()); err != nil {
		tracing.Errorf(err.Error())
		gmexpr.Exit(1)
	}
	paths := locateAppPaths()
	if err := configureTracing(konf, paths); err != nil {
		tracing.Errorf(err.Error())
		gmexpr.Exit(1)
	}
	if k.String("prelude") == "" {
		if p := locatePrelude(paths); p != "" {
			konf.Set("prelude", p)
		}
	}
	gmexpr.Configuration = k // push the configuration to app-global scope
}

func mergeFlags(konf *koanfadapter.KConf, flags *pflag.FlagSet) error {
	err := konf.Koanf().Load(posflag.Provider(flags, ".", konf.Koanf()), nil)
	if err != nil {
		return err
	}
	flags.Visit(func(f *pflag.Flag) { // flags set on the command line only
		if key, ok := flagKeys[f.Name]; ok {
			konf.Set(key, f.Value.String() == "true")
		}
	})
	if logname := konf.GetString("logfile"); logname != "" && logname != "stderr" {
		if strings.Contains(logname, ":/") {
			konf.Set("tracing.destination", logname)
		} else {
			konf.Set("tracing.destination", "file://"+logname)
		}
	}
	return nil
}

func configureTracing(konf *koanfadapter.KConf, paths AppPaths) error {
	if a := konf.GetString("tracing.adapter"); a != "" && a != "go" {
		tracing.Errorf("tracing adapter type '%s' currently not supported", a)
	}
	konf.Set("tracing.adapter", "go") // use Go builtin logging facilities
	tracing.Infof("searching for trace redirection")
	if dest := konf.GetString("tracing.destination"); dest != "" {
		if !strings.Contains(dest, ":") && paths.ConfigDir() != "" {
			dest = "file://" + paths.ConfigDir() + "/" + dest
			konf.Set("tracing.destination", dest)
		}
	}
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	if err := trace2go.ConfigureRoot(konf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return err
	}
	tracing.SetTraceSelector(trace2go.Selector())
	tracing.Infof(rootCmd.Long)
	return nil
}

func locateAppPaths() AppPaths {
	paths, err := DefaultAppPaths("GMEXPR")
	if err != nil {
		tracing.Errorf("cannot configure paths: %v", err)
	}
	return paths
}
