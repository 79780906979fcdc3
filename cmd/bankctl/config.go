package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rabiot125/Banking-Microservice/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect service configuration",
	}
	cmd.AddCommand(newConfigPrintCmd())
	return cmd
}

func newConfigPrintCmd() *cobra.Command {
	var service string

	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the effective configuration of a service (secrets redacted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := parseService(service)
			if err != nil {
				return err
			}
			cfg, err := config.LoadConfig(".", svc)
			if err != nil {
				return err
			}
			printConfig(cmd.OutOrStdout(), cfg)
			return nil
		},
	}

	cmd.Flags().StringVar(&service, "service", string(config.CustomerService), "customer-service, account-service or card-service")
	return cmd
}

func parseService(s string) (config.Service, error) {
	switch svc := config.Service(s); svc {
	case config.CustomerService, config.AccountService, config.CardService:
		return svc, nil
	default:
		return "", fmt.Errorf("unknown service %q (want customer-service, account-service or card-service)", s)
	}
}

func printConfig(w io.Writer, cfg *config.Config) {
	rows := []struct {
		key   string
		value interface{}
	}{
		{"SERVICE", cfg.Service},
		{"SERVER_PORT", cfg.ServerPort},
		{"SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout},
		{"REPO_BACKEND", cfg.RepoBackend},
		{"DATABASE_URL", cfg.RedactedDatabaseURL()},
		{"AUTO_MIGRATE", cfg.AutoMigrate},
		{"DB_MAX_CONNS", cfg.DBMaxConns},
		{"DB_MIN_CONNS", cfg.DBMinConns},
		{"CARD_SERVICE_URL", cfg.CardServiceURL},
		{"CARD_LOOKUP_TIMEOUT", cfg.CardLookupTimeout},
		{"CARD_LOOKUP_CONCURRENCY", cfg.CardLookupConcurrency},
		{"LOG_MODE", cfg.LogMode},
		{"LOG_LEVEL", cfg.LogLevel},
		{"CORS_ALLOWED_ORIGINS", cfg.CORSAllowedOrigins},
		{"OTEL_ENABLED", cfg.OTelEnabled},
		{"OTEL_EXPORTER", cfg.OTelExporter},
		{"OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTelEndpoint},
		{"OTEL_SAMPLE_RATIO", cfg.OTelSampleRatio},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%s=%v\n", row.key, row.value)
	}
}
