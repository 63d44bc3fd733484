package config

import "github.com/spf13/pflag"

// BindFlags registers the global flags read by Load.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a TOML config file")
	fs.String("mode", "", "storage mode: local or remote")
	fs.String("data-file", "", "JSON file used by local mode")
	fs.String("database", "", "SQLite path or postgres:// DSN used by the server")
	fs.String("url", "", "server URL used by remote mode")
	fs.String("token", "", "bearer token used by remote mode")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("log-format", "", "log format: text, logfmt, json")
}

func applyFlags(cfg *Config, fs *pflag.FlagSet) {
	for name, dst := range map[string]*string{
		"mode":       &cfg.Mode,
		"data-file":  &cfg.DataFile,
		"database":   &cfg.Database,
		"url":        &cfg.Remote.URL,
		"token":      &cfg.Remote.Token,
		"log-level":  &cfg.Log.Level,
		"log-format": &cfg.Log.Format,
		"addr":       &cfg.Server.Addr,
	} {
		if v, ok := changedString(fs, name); ok {
			*dst = v
		}
	}
}

func changedString(fs *pflag.FlagSet, name string) (string, bool) {
	if fs == nil {
		return "", false
	}
	f := fs.Lookup(name)
	if f == nil || !f.Changed {
		return "", false
	}
	return f.Value.String(), true
}

func flagString(fs *pflag.FlagSet, name string) string {
	v, _ := changedString(fs, name)
	return v
}
