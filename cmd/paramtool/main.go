package main

import (
	"flag"
	"os"
	"strings"

	"github.com/gwparam/paramstore/engine/attr"
	"github.com/gwparam/paramstore/engine/classes"
	"github.com/gwparam/paramstore/engine/config"
	"github.com/gwparam/paramstore/engine/gwlog"
)

var args struct {
	configFile string
	className  string
	filter     string
	objectID   string
	hex        bool
}

func parseArgs() {
	flag.StringVar(&args.configFile, "configfile", "", "set config file path")
	flag.StringVar(&args.className, "class", "", "class of the object")
	flag.StringVar(&args.filter, "filter", "all", "attribute filter of encode: all, client or privileged")
	flag.StringVar(&args.objectID, "id", "", "object id for save and load")
	flag.BoolVar(&args.hex, "hex", false, "binary input and output as hex dump")
	flag.Usage = func() {
		showMsg("usage: paramtool [flags] classes|encode|decode|save|load|list")
		flag.PrintDefaults()
	}
	flag.Parse()
}

func main() {
	parseArgs()
	cmdArgs := flag.Args()
	if len(cmdArgs) != 1 {
		showMsg("arguments: %s", strings.Join(cmdArgs, " "))
		flag.Usage()
		os.Exit(1)
	}

	var cfg *config.ParamStoreConfig
	if args.configFile != "" {
		config.SetConfigFile(args.configFile)
		cfg = config.Get()
		setupLog(&cfg.Log)
	} else {
		gwlog.SetLevel(gwlog.WarnLevel)
	}
	registry := loadSchema(cfg)
	defer gwlog.Sync()

	switch cmd := cmdArgs[0]; cmd {
	case "classes":
		listClasses(os.Stdout, registry)
	case "encode":
		checkErrorOrQuit(encode(os.Stdin, os.Stdout, mustClass(registry), args.filter, args.hex), "encode failed")
	case "decode":
		checkErrorOrQuit(decode(os.Stdin, os.Stdout, mustClass(registry), args.hex), "decode failed")
	case "save", "load", "list":
		if cfg == nil {
			showMsgAndQuit("%s needs -configfile with a [storage] section", cmd)
		}
		runStorageCommand(cmd, registry)
	default:
		showMsgAndQuit("unknown command: %s", cmd)
	}
}

func setupLog(cfg *config.LogConfig) {
	if len(cfg.Output) > 0 {
		gwlog.SetOutput(cfg.Output)
	}
	if cfg.Source != "" {
		gwlog.SetSource(cfg.Source)
	}
	gwlog.SetLevel(gwlog.ParseLevel(cfg.Level))
}

func loadSchema(cfg *config.ParamStoreConfig) *attr.Registry {
	registry := attr.Default()
	if cfg == nil || len(cfg.Schema.Files) == 0 {
		checkErrorOrQuit(classes.Register(registry), "load builtin schema")
		return registry
	}
	for _, f := range cfg.Schema.Files {
		loaded, err := registry.LoadYAMLFile(f)
		checkErrorOrQuit(err, "load schema")
		gwlog.Infof("loaded %d classes from %s", len(loaded), f)
	}
	return registry
}

func mustClass(registry *attr.Registry) *attr.ClassDesc {
	if args.className == "" {
		showMsgAndQuit("should specify -class")
	}
	class, err := registry.Class(args.className)
	checkErrorOrQuit(err, "bad class")
	return class
}
