package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/football-scraper/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.WarehouseBackend != BackendPostgres {
		t.Fatalf("unexpected warehouse backend: %q", cfg.WarehouseBackend)
	}
	if cfg.SessionRestartDelay != 5*time.Second {
		t.Fatalf("unexpected session restart delay: %s", cfg.SessionRestartDelay)
	}
	if cfg.SessionMaxURLAttempts != 10 {
		t.Fatalf("unexpected max url attempts: %d", cfg.SessionMaxURLAttempts)
	}
	if cfg.WhoScoredPaginationWait != time.Second {
		t.Fatalf("unexpected pagination wait: %s", cfg.WhoScoredPaginationWait)
	}
	if cfg.WhoScoredMaxPaginationCycles != 400 {
		t.Fatalf("unexpected pagination cycles: %d", cfg.WhoScoredMaxPaginationCycles)
	}
	if cfg.ProxyProbeWorkers != 50 {
		t.Fatalf("unexpected probe workers: %d", cfg.ProxyProbeWorkers)
	}
	if cfg.ReconcileMinSimilarity != 0.6 {
		t.Fatalf("unexpected min similarity: %v", cfg.ReconcileMinSimilarity)
	}
	if !cfg.SessionHeadless {
		t.Fatalf("expected headless session by default")
	}
	if !cfg.DBDisablePreparedBinary {
		t.Fatalf("expected DBDisablePreparedBinary=true by default")
	}
}

func TestLoad_LogFormatByEnv(t *testing.T) {
	t.Run("dev logs to console", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("LOG_FORMAT", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.LogFormat != logging.FormatConsole {
			t.Fatalf("expected console format in dev, got %q", cfg.LogFormat)
		}
	})

	t.Run("prod logs json", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("LOG_FORMAT", "")
		t.Setenv("LOG_LEVEL", "warn")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.LogFormat != logging.FormatJSON {
			t.Fatalf("expected json format in prod, got %q", cfg.LogFormat)
		}
		if cfg.LogLevel.String() != "warn" {
			t.Fatalf("unexpected log level: %s", cfg.LogLevel.String())
		}
	})
}

func TestLoad_WarehouseBackendValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("WAREHOUSE_BACKEND", "bigquery")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown WAREHOUSE_BACKEND")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `foo=bar, uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected uptrace dsn: %q", cfg.UptraceDSN)
	}
}

func TestLoad_BetterStackRequiresEndpointWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("BETTERSTACK_ENABLED", "true")
	t.Setenv("BETTERSTACK_ENDPOINT", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when BETTERSTACK_ENABLED=true without BETTERSTACK_ENDPOINT")
	}
}

func TestLoad_LogShippingDefaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_LOGS_ENABLED", "")
	t.Setenv("BETTERSTACK_ENABLED", "true")
	t.Setenv("BETTERSTACK_ENDPOINT", "in.logs.betterstack.com")
	t.Setenv("BETTERSTACK_TIMEOUT", "")
	t.Setenv("BETTERSTACK_MIN_LEVEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.UptraceLogsEnabled {
		t.Fatalf("expected uptrace logs enabled by default")
	}
	if cfg.BetterStackTimeout != 3*time.Second {
		t.Fatalf("unexpected betterstack timeout: %s", cfg.BetterStackTimeout)
	}
	if cfg.BetterStackMinLevel != logging.LevelError {
		t.Fatalf("unexpected betterstack min level: %s", cfg.BetterStackMinLevel)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SERVICE_NAME", "football-scraper-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "football-scraper-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_SessionConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("lists and durations", func(t *testing.T) {
		t.Setenv("SESSION_USER_AGENTS", " agent-a , agent-b ,")
		t.Setenv("SESSION_PAGE_LOAD_TIMEOUT", "45s")
		t.Setenv("SESSION_HEADLESS", "false")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.SessionUserAgents) != 2 || cfg.SessionUserAgents[1] != "agent-b" {
			t.Fatalf("unexpected user agents: %+v", cfg.SessionUserAgents)
		}
		if cfg.SessionPageLoadTimeout != 45*time.Second {
			t.Fatalf("unexpected page load timeout: %s", cfg.SessionPageLoadTimeout)
		}
		if cfg.SessionHeadless {
			t.Fatalf("expected SessionHeadless=false")
		}
	})

	t.Run("invalid restart delay", func(t *testing.T) {
		t.Setenv("SESSION_RESTART_DELAY", "soon")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid SESSION_RESTART_DELAY")
		}
	})

	t.Run("zero attempts", func(t *testing.T) {
		t.Setenv("SESSION_MAX_URL_ATTEMPTS", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for SESSION_MAX_URL_ATTEMPTS=0")
		}
	})
}

func TestLoad_FBrefConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("wait may be zero", func(t *testing.T) {
		t.Setenv("FBREF_WAIT", "0s")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.FBrefWait != 0 {
			t.Fatalf("unexpected fbref wait: %s", cfg.FBrefWait)
		}
	})

	t.Run("invalid retries", func(t *testing.T) {
		t.Setenv("FBREF_MAX_RETRIES", "many")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid FBREF_MAX_RETRIES")
		}
	})
}

func TestLoad_ProxyConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("enabled requires sources", func(t *testing.T) {
		t.Setenv("PROXY_ENABLED", "true")
		t.Setenv("PROXY_SOURCES", " , ")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when PROXY_ENABLED=true without PROXY_SOURCES")
		}
	})

	t.Run("invalid similarity", func(t *testing.T) {
		t.Setenv("PROXY_ENABLED", "false")
		t.Setenv("RECONCILE_MIN_SIMILARITY", "1.5")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for RECONCILE_MIN_SIMILARITY > 1")
		}
	})
}
