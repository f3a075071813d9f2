package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"plot": { "frame": "terrestrial", "contours": [50, 90] },
		"injectionDB": { "path": "/data/inj.sqlite" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "terrestrial", viper.GetString("plot.frame"))
	assert.Equal(t, []float64{50, 90}, GetPlotConfig().Contours)
	assert.Equal(t, "mollweide", GetPlotConfig().Projection)

	inj := GetInjectionDBConfig()
	assert.Equal(t, "sqlite", inj.Type, "a path alone selects sqlite")
	assert.Equal(t, "/data/inj.sqlite", inj.Path)
	assert.Equal(t, "radians", inj.AngleUnit)
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./skyplotlogs", viper.GetString("logsDir"))
	assert.Equal(t, "celestial", viper.GetString("plot.frame"))
	assert.Equal(t, "deg2", viper.GetString("plot.areaUnit"))
	assert.Equal(t, "*", viper.GetString("markers.symbol"))
	assert.Equal(t, 10.0, viper.GetFloat64("markers.size"))
	assert.Equal(t, "", viper.GetString("injectionDB.type"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))

	plot := GetPlotConfig()
	assert.Empty(t, plot.Contours)
	assert.False(t, plot.Annotate)
	assert.Empty(t, plot.OutputOrdering)
	assert.Empty(t, GetMarkerConfig().RADec)
	assert.Equal(t, 0, GetMarkerConfig().CatalogMax)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.NoError(t, err)
	assert.Equal(t, "memory", GetStorageConfig().Type)
}

func TestLoad_BrokenFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(writeConfig(t, `{ "plot": `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetStorageConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetStorageConfig()
	assert.Equal(t, "memory", cfg.Type)
	assert.Equal(t, "./renders", cfg.Memory.OutputDir)
	assert.Equal(t, true, cfg.Memory.CompressOutput)
	assert.Equal(t, "./skyplot.db", cfg.SQLite.Path)
	assert.Equal(t, "skyplot", cfg.Postgres.Database)
	assert.Equal(t, "ws://localhost:5000/render", cfg.WebSocket.URL)
}

func TestGetStorageConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"storage": {
			"type": "websocket",
			"memory": { "outputDir": "/tmp/out", "compressOutput": false },
			"websocket": { "url": "ws://renderer:9000/render", "secret": "s3cret" }
		}
	}`)))

	sc := GetStorageConfig()
	assert.Equal(t, "websocket", sc.Type)
	assert.Equal(t, "/tmp/out", sc.Memory.OutputDir)
	assert.Equal(t, false, sc.Memory.CompressOutput)
	assert.Equal(t, "ws://renderer:9000/render", sc.WebSocket.URL)
	assert.Equal(t, "s3cret", sc.WebSocket.Secret)
}

func TestGetOTelConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetOTelConfig()
	assert.Equal(t, false, cfg.Enabled)
	assert.Equal(t, "skyplot", cfg.ServiceName)
	assert.Equal(t, 5*time.Second, cfg.BatchTimeout)
	assert.Equal(t, "", cfg.Endpoint)
	assert.Equal(t, true, cfg.Insecure)
}

func TestGetOTelConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"otel": {
			"enabled": true,
			"serviceName": "my-service",
			"batchTimeout": "30s",
			"endpoint": "localhost:4317",
			"insecure": false
		}
	}`)))

	oc := GetOTelConfig()
	assert.Equal(t, true, oc.Enabled)
	assert.Equal(t, "my-service", oc.ServiceName)
	assert.Equal(t, 30*time.Second, oc.BatchTimeout)
	assert.Equal(t, "localhost:4317", oc.Endpoint)
	assert.Equal(t, false, oc.Insecure)
}

func TestGetInfluxAndGraylogConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"influx": { "enabled": true, "bucket": "renders" },
		"graylog": { "enabled": true, "address": "graylog:12201" }
	}`)))

	ic := GetInfluxConfig()
	assert.True(t, ic.Enabled)
	assert.Equal(t, "renders", ic.Bucket)
	assert.Equal(t, "skyplot", ic.Org)
	assert.Equal(t, "http", ic.Protocol)

	gc := GetGraylogConfig()
	assert.True(t, gc.Enabled)
	assert.Equal(t, "graylog:12201", gc.Address)
}

func TestBindFlags(t *testing.T) {
	t.Cleanup(viper.Reset)

	fs := pflag.NewFlagSet("skyplot", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{
		"--geo=terrestrial",
		"--projection", "zoom",
		"--radius", "4deg",
		"--contour", "50",
		"--contour", "90",
		"--radec", "14h 10d",
		"--radec", "3h -20d",
		"--catalog-max", "3",
		"--annotate",
		"--output-ordering", "ring",
	}))
	require.NoError(t, BindFlags(fs))
	require.NoError(t, Load(t.TempDir()))

	plot := GetPlotConfig()
	assert.Equal(t, "terrestrial", plot.Frame)
	assert.Equal(t, "zoom", plot.Projection)
	assert.Equal(t, "4deg", plot.Radius)
	assert.Equal(t, []float64{50, 90}, plot.Contours)
	assert.True(t, plot.Annotate)
	assert.False(t, plot.Colorbar)
	assert.Equal(t, "ring", plot.OutputOrdering)

	mc := GetMarkerConfig()
	assert.Equal(t, []string{"14h 10d", "3h -20d"}, mc.RADec)
	assert.Equal(t, 3, mc.CatalogMax)
	assert.Equal(t, "white", mc.Color)
}

func TestBindFlags_FileValueKeptWhenFlagUnset(t *testing.T) {
	t.Cleanup(viper.Reset)

	fs := pflag.NewFlagSet("skyplot", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(nil))
	require.NoError(t, BindFlags(fs))
	require.NoError(t, Load(writeConfig(t, `{ "plot": { "projection": "globe", "contours": [90] } }`)))

	plot := GetPlotConfig()
	assert.Equal(t, "globe", plot.Projection)
	assert.Equal(t, []float64{90}, plot.Contours)
}
