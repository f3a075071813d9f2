package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FileName is the configuration file searched for in the config directory.
const FileName = "skyplot.cfg.json"

// PlotConfig holds the projection and map settings of one render.
type PlotConfig struct {
	Frame          string    `json:"frame" mapstructure:"frame"`
	Projection     string    `json:"projection" mapstructure:"projection"`
	Center         string    `json:"center" mapstructure:"center"`
	Radius         string    `json:"radius" mapstructure:"radius"`
	Contours       []float64 `json:"contours" mapstructure:"contours"`
	Annotate       bool      `json:"annotate" mapstructure:"annotate"`
	Colorbar       bool      `json:"colorbar" mapstructure:"colorbar"`
	Nested         string    `json:"nested" mapstructure:"nested"`
	// OutputOrdering reorders the exported density map; empty keeps the input ordering.
	OutputOrdering string    `json:"outputOrdering" mapstructure:"outputOrdering"`
	AreaUnit       string    `json:"areaUnit" mapstructure:"areaUnit"`
	CoastlinePath  string    `json:"coastlinePath" mapstructure:"coastlinePath"`
}

// MarkerConfig holds the explicit marker list, its style and the catalog source.
type MarkerConfig struct {
	RADec       []string `json:"radec" mapstructure:"radec"`
	Symbol      string   `json:"symbol" mapstructure:"symbol"`
	Color       string   `json:"color" mapstructure:"color"`
	EdgeColor   string   `json:"edgeColor" mapstructure:"edgeColor"`
	Size        float64  `json:"size" mapstructure:"size"`
	CatalogPath string   `json:"catalogPath" mapstructure:"catalogPath"`
	CatalogMax  int      `json:"catalogMax" mapstructure:"catalogMax"`
}

// InjectionDBConfig points at the database holding injected source positions.
// An empty Type disables the lookup.
type InjectionDBConfig struct {
	Type      string `json:"type" mapstructure:"type"`
	Path      string `json:"path" mapstructure:"path"`
	Host      string `json:"host" mapstructure:"host"`
	Port      string `json:"port" mapstructure:"port"`
	Username  string `json:"username" mapstructure:"username"`
	Password  string `json:"password" mapstructure:"password"`
	Database  string `json:"database" mapstructure:"database"`
	AngleUnit string `json:"angleUnit" mapstructure:"angleUnit"`
}

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds the SQLite ledger settings.
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// PostgresConfig holds the Postgres ledger settings.
type PostgresConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// WebSocketConfig holds the remote renderer endpoint.
type WebSocketConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
}

// StorageConfig selects and configures the render output sink.
type StorageConfig struct {
	Type      string          `json:"type" mapstructure:"type"`
	Memory    MemoryConfig    `json:"memory" mapstructure:"memory"`
	SQLite    SQLiteConfig    `json:"sqlite" mapstructure:"sqlite"`
	Postgres  PostgresConfig  `json:"postgres" mapstructure:"postgres"`
	WebSocket WebSocketConfig `json:"websocket" mapstructure:"websocket"`
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// InfluxConfig holds InfluxDB metrics settings.
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
}

// GraylogConfig holds Graylog log shipping settings.
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./skyplotlogs")

	viper.SetDefault("plot.frame", "celestial")
	viper.SetDefault("plot.projection", "mollweide")
	viper.SetDefault("plot.center", "")
	viper.SetDefault("plot.radius", "")
	viper.SetDefault("plot.contours", []float64{})
	viper.SetDefault("plot.annotate", false)
	viper.SetDefault("plot.colorbar", false)
	viper.SetDefault("plot.nested", "")
	viper.SetDefault("plot.outputOrdering", "")
	viper.SetDefault("plot.areaUnit", "deg2")
	viper.SetDefault("plot.coastlinePath", "")

	viper.SetDefault("markers.radec", []string{})
	viper.SetDefault("markers.symbol", "*")
	viper.SetDefault("markers.color", "white")
	viper.SetDefault("markers.edgeColor", "black")
	viper.SetDefault("markers.size", 10.0)
	viper.SetDefault("markers.catalogPath", "")
	viper.SetDefault("markers.catalogMax", 0)

	viper.SetDefault("injectionDB.type", "")
	viper.SetDefault("injectionDB.path", "")
	viper.SetDefault("injectionDB.host", "localhost")
	viper.SetDefault("injectionDB.port", "5432")
	viper.SetDefault("injectionDB.username", "postgres")
	viper.SetDefault("injectionDB.password", "postgres")
	viper.SetDefault("injectionDB.database", "injections")
	viper.SetDefault("injectionDB.angleUnit", "radians")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./renders")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "./skyplot.db")
	viper.SetDefault("storage.postgres.host", "localhost")
	viper.SetDefault("storage.postgres.port", "5432")
	viper.SetDefault("storage.postgres.username", "postgres")
	viper.SetDefault("storage.postgres.password", "postgres")
	viper.SetDefault("storage.postgres.database", "skyplot")
	viper.SetDefault("storage.websocket.url", "ws://localhost:5000/render")
	viper.SetDefault("storage.websocket.secret", "")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "skyplot")
	viper.SetDefault("influx.bucket", "skyplot_renders")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "skyplot")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// Load sets default values and reads the JSON config file from configDir.
// A missing file is not an error: defaults and flags still apply.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"log-level":       "logLevel",
	"logs-dir":        "logsDir",
	"geo":             "plot.frame",
	"projection":      "plot.projection",
	"center":          "plot.center",
	"radius":          "plot.radius",
	"contour":         "plot.contours",
	"annotate":        "plot.annotate",
	"colorbar":        "plot.colorbar",
	"nested":          "plot.nested",
	"output-ordering": "plot.outputOrdering",
	"area-unit":       "plot.areaUnit",
	"coastlines":      "plot.coastlinePath",
	"radec":           "markers.radec",
	"marker":          "markers.symbol",
	"marker-color":    "markers.color",
	"marker-ecolor":   "markers.edgeColor",
	"marker-size":     "markers.size",
	"catalog":         "markers.catalogPath",
	"catalog-max":     "markers.catalogMax",
	"inj-database":    "injectionDB.path",
	"inj-db-type":     "injectionDB.type",
	"inj-angle-unit":  "injectionDB.angleUnit",
	"storage":         "storage.type",
	"output-dir":      "storage.memory.outputDir",
}

// RegisterFlags adds the plot flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("logs-dir", "./skyplotlogs", "directory for log files")
	fs.String("geo", "celestial", "frame: celestial or terrestrial")
	fs.String("projection", "mollweide", "projection: mollweide, aitoff, globe or zoom")
	fs.String("center", "", "projection center for globe and zoom, e.g. '14h 10d'")
	fs.String("radius", "", "zoom radius, e.g. '4deg'")
	fs.Float64Slice("contour", nil, "plot contour enclosing this percentage of probability mass")
	fs.Bool("annotate", false, "annotate plot with information about the event")
	fs.Bool("colorbar", false, "show colorbar")
	fs.String("nested", "", "force pixel ordering: nested or ring")
	fs.String("output-ordering", "", "reorder the exported map: nested or ring")
	fs.String("area-unit", "deg2", "density unit: deg2 or sr")
	fs.String("coastlines", "", "GeoJSON coastline file for the terrestrial frame")
	fs.StringSlice("radec", nil, "right ascension and declination of a marker, e.g. '14h 10d'")
	fs.String("marker", "*", "marker symbol")
	fs.String("marker-color", "white", "marker fill color")
	fs.String("marker-ecolor", "black", "marker edge color")
	fs.Float64("marker-size", 10, "marker size")
	fs.String("catalog", "", "catalog of (ra, dec, noise) rows to mark")
	fs.Int("catalog-max", 0, "maximum number of catalog rows to mark (0 for all)")
	fs.String("inj-database", "", "SQLite injection database to mark the injected position")
	fs.String("inj-db-type", "", "injection database type: sqlite or postgres")
	fs.String("inj-angle-unit", "radians", "unit of the stored injection angles: radians or degrees")
	fs.String("storage", "memory", "output sink: memory, sqlite, postgres or websocket")
	fs.String("output-dir", "./renders", "directory for exported render requests")
}

// BindFlags binds every registered flag in fs to its config key.
func BindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetPlotConfig returns the plot settings.
func GetPlotConfig() PlotConfig {
	return PlotConfig{
		Frame:          viper.GetString("plot.frame"),
		Projection:     viper.GetString("plot.projection"),
		Center:         viper.GetString("plot.center"),
		Radius:         viper.GetString("plot.radius"),
		Contours:       getFloat64Slice("plot.contours"),
		Annotate:       viper.GetBool("plot.annotate"),
		Colorbar:       viper.GetBool("plot.colorbar"),
		Nested:         viper.GetString("plot.nested"),
		OutputOrdering: viper.GetString("plot.outputOrdering"),
		AreaUnit:       viper.GetString("plot.areaUnit"),
		CoastlinePath:  viper.GetString("plot.coastlinePath"),
	}
}

// GetMarkerConfig returns the marker settings.
func GetMarkerConfig() MarkerConfig {
	return MarkerConfig{
		RADec:       viper.GetStringSlice("markers.radec"),
		Symbol:      viper.GetString("markers.symbol"),
		Color:       viper.GetString("markers.color"),
		EdgeColor:   viper.GetString("markers.edgeColor"),
		Size:        viper.GetFloat64("markers.size"),
		CatalogPath: viper.GetString("markers.catalogPath"),
		CatalogMax:  viper.GetInt("markers.catalogMax"),
	}
}

// GetInjectionDBConfig returns the injection database settings. A path
// given without a type selects SQLite.
func GetInjectionDBConfig() InjectionDBConfig {
	cfg := InjectionDBConfig{
		Type:      viper.GetString("injectionDB.type"),
		Path:      viper.GetString("injectionDB.path"),
		Host:      viper.GetString("injectionDB.host"),
		Port:      viper.GetString("injectionDB.port"),
		Username:  viper.GetString("injectionDB.username"),
		Password:  viper.GetString("injectionDB.password"),
		Database:  viper.GetString("injectionDB.database"),
		AngleUnit: viper.GetString("injectionDB.angleUnit"),
	}
	if cfg.Type == "" && cfg.Path != "" {
		cfg.Type = "sqlite"
	}
	return cfg
}

// GetStorageConfig returns the storage backend configuration
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("storage.postgres.host"),
			Port:     viper.GetString("storage.postgres.port"),
			Username: viper.GetString("storage.postgres.username"),
			Password: viper.GetString("storage.postgres.password"),
			Database: viper.GetString("storage.postgres.database"),
		},
		WebSocket: WebSocketConfig{
			URL:    viper.GetString("storage.websocket.url"),
			Secret: viper.GetString("storage.websocket.secret"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry configuration
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetInfluxConfig returns the InfluxDB configuration
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}

// GetGraylogConfig returns the Graylog configuration
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// getFloat64Slice reads a list of numbers that may come from JSON (a []any)
// or from a bound pflag, which viper reports as a string such as "[50.000000,90.000000]".
func getFloat64Slice(key string) []float64 {
	switch v := viper.Get(key).(type) {
	case []float64:
		return v
	case []any:
		out := make([]float64, 0, len(v))
		for _, x := range v {
			switch n := x.(type) {
			case float64:
				out = append(out, n)
			case int:
				out = append(out, float64(n))
			}
		}
		return out
	case string:
		v = strings.Trim(strings.TrimSpace(v), "[]")
		if v == "" {
			return nil
		}
		var out []float64
		for _, part := range strings.Split(v, ",") {
			f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				continue
			}
			out = append(out, f)
		}
		return out
	}
	return nil
}
