package main

import (
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const envPrefix = "SCOUTER_"

// configure fills the flags that weren't set on the command line, first from the YAML file (if
// any) and then from SCOUTER_* environment variables, which take precedence over the file.
//
// Keys of the file are flag names: "log-level: debug". Environment variables use the upper-case
// flag name with underscores: SCOUTER_LOG_LEVEL=debug. The file itself comes from the config flag
// or SCOUTER_CONFIG. Keys that known accepts but flags lacks belong to other commands and are
// skipped.
func configure(flags *pflag.FlagSet, known func(name string) bool, environ []string) error {
	env := make(map[string]string)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, envPrefix) {
			continue
		}
		name := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(key, envPrefix), "_", "-"))
		if flags.Lookup(name) != nil {
			env[name] = value
		}
	}

	var file string
	if flag := flags.Lookup("config"); flag != nil {
		if value, ok := env["config"]; ok && !flag.Changed {
			if err := flag.Value.Set(value); err != nil {
				return fmt.Errorf("invalid value %q for config: %w", value, err)
			}
		}
		delete(env, "config")
		file = flag.Value.String()
	}

	values := make(map[string]string)
	if file != "" {
		fromFile, err := readConfig(file)
		if err != nil {
			return err
		}
		for key, value := range fromFile {
			if flags.Lookup(key) != nil {
				values[key] = value
				continue
			}
			if key == "config" || !known(key) {
				return fmt.Errorf("config %s: unknown key %q", file, key)
			}
		}
	}
	maps.Copy(values, env)

	for name, value := range values {
		flag := flags.Lookup(name)
		if flag.Changed || name == "config" {
			continue
		}
		if err := flag.Value.Set(value); err != nil {
			return fmt.Errorf("invalid value %q for %s: %w", value, name, err)
		}
	}

	return nil
}

// flagNames returns a function reporting whether any command of the tree under root has a flag
// with the given name.
func flagNames(root *cobra.Command) func(name string) bool {
	names := make(map[string]bool)
	var walk func(cmd *cobra.Command)
	walk = func(cmd *cobra.Command) {
		cmd.LocalFlags().VisitAll(func(f *pflag.Flag) { names[f.Name] = true })
		for _, sub := range cmd.Commands() {
			walk(sub)
		}
	}
	walk(root)
	return func(name string) bool { return names[name] }
}

func readConfig(file string) (map[string]string, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", file, err)
	}

	values := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case []any:
			items := make([]string, len(v))
			for i, item := range v {
				items[i] = fmt.Sprint(item)
			}
			values[key] = strings.Join(items, ",")
		case nil:
		default:
			values[key] = fmt.Sprint(v)
		}
	}

	return values, nil
}
