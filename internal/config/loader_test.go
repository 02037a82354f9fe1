package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/puzzlenode/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Store, convey.ShouldEqual, config.StorePostgres)
				convey.So(cfg.DefaultLimit, convey.ShouldEqual, 10)
				convey.So(cfg.QueryTimeoutMS, convey.ShouldEqual, 5000)
				convey.So(cfg.FusedQuery, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PUZZLENODE_STORE", "memory")
			_ = os.Setenv("PUZZLENODE_DEFAULT_LIMIT", "25")
			_ = os.Setenv("PUZZLENODE_FUSED_QUERY", "false")
			_ = os.Setenv("PUZZLENODE_LOG_LEVEL", "debug")
			_ = os.Setenv("PUZZLENODE_DB_MAX_CONNS", "8")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory)
				convey.So(cfg.DefaultLimit, convey.ShouldEqual, 25)
				convey.So(cfg.FusedQuery, convey.ShouldBeFalse)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.DBMaxConns, convey.ShouldEqual, 8)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
store: postgres
database_url: "postgres://app@db:5432/puzzlenode"
default_limit: 20
query_timeout_ms: 1500
metrics_namespace: site
`
			tmpFile := createTempConfigFile(t, yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PUZZLENODE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DatabaseURL, convey.ShouldEqual, "postgres://app@db:5432/puzzlenode")
				convey.So(cfg.DefaultLimit, convey.ShouldEqual, 20)
				convey.So(cfg.QueryTimeoutMS, convey.ShouldEqual, 1500)
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "site")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
default_limit: 20
query_timeout_ms: 1500
`
			tmpFile := createTempConfigFile(t, yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PUZZLENODE_CONFIG", tmpFile)
			_ = os.Setenv("PUZZLENODE_DEFAULT_LIMIT", "30")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DefaultLimit, convey.ShouldEqual, 30)    // Overridden by env
				convey.So(cfg.QueryTimeoutMS, convey.ShouldEqual, 1500) // From file
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("PUZZLENODE_CONFIG", "/nonexistent/puzzlenode.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fail with a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the loaded values are invalid", func() {
			_ = os.Setenv("PUZZLENODE_DEFAULT_LIMIT", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation should reject them", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, name := range []string{
		"PUZZLENODE_CONFIG",
		"PUZZLENODE_LOG_LEVEL",
		"PUZZLENODE_STORE",
		"PUZZLENODE_DATABASE_URL",
		"PUZZLENODE_DB_MAX_CONNS",
		"PUZZLENODE_DEFAULT_LIMIT",
		"PUZZLENODE_QUERY_TIMEOUT_MS",
		"PUZZLENODE_FUSED_QUERY",
		"PUZZLENODE_METRICS_NAMESPACE",
	} {
		_ = os.Unsetenv(name)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp("", "puzzlenode-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return f.Name()
}
