package postgres

import (
	"testing"
	"time"

	"github.com/ogurasousui/hrlink/internal/platform/config"
)

func TestBuildPoolConfig(t *testing.T) {
	t.Parallel()

	poolCfg, err := BuildPoolConfig(config.DatabaseConfig{
		Host:            "localhost",
		Port:            5432,
		User:            "hrlink",
		Password:        "secret",
		Name:            "hrlink",
		SSLMode:         "disable",
		MaxOpenConns:    12,
		MaxIdleConns:    3,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 15 * time.Minute,
		ApplicationName: "hrlink-housekeeper",
	})
	if err != nil {
		t.Fatalf("BuildPoolConfig returned error: %v", err)
	}

	if poolCfg.MaxConns != 12 || poolCfg.MinConns != 3 {
		t.Errorf("unexpected conns max=%d min=%d", poolCfg.MaxConns, poolCfg.MinConns)
	}
	if poolCfg.MaxConnLifetime != time.Hour || poolCfg.MaxConnIdleTime != 15*time.Minute {
		t.Errorf("unexpected lifetimes %v %v", poolCfg.MaxConnLifetime, poolCfg.MaxConnIdleTime)
	}
	if poolCfg.HealthCheckPeriod != defaultHealthCheckPeriod {
		t.Errorf("unexpected health check period %v", poolCfg.HealthCheckPeriod)
	}
	if poolCfg.ConnConfig.Database != "hrlink" || poolCfg.ConnConfig.Port != 5432 {
		t.Errorf("unexpected conn config %s:%d", poolCfg.ConnConfig.Database, poolCfg.ConnConfig.Port)
	}

	params := poolCfg.ConnConfig.RuntimeParams
	if params["application_name"] != "hrlink-housekeeper" {
		t.Errorf("unexpected application_name %q", params["application_name"])
	}
	if params["statement_timeout"] != defaultStatementTimeout {
		t.Errorf("unexpected statement_timeout %q", params["statement_timeout"])
	}
}

func TestBuildPoolConfig_KeepsPoolDefaults(t *testing.T) {
	t.Parallel()

	poolCfg, err := BuildPoolConfig(config.DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "hrlink",
		Password: "secret",
		Name:     "hrlink",
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("BuildPoolConfig returned error: %v", err)
	}

	if poolCfg.MaxConns <= 0 {
		t.Errorf("expected pgxpool default MaxConns, got %d", poolCfg.MaxConns)
	}
	if _, ok := poolCfg.ConnConfig.RuntimeParams["application_name"]; ok {
		t.Errorf("application_name should not be set when empty")
	}
}
