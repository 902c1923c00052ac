package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rodrigiego-coder/beauty-manager/internal/config"
	"github.com/rodrigiego-coder/beauty-manager/internal/version"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show beautyd status and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("beautyd %s (commit %s)\n\n", version.Version, version.Commit)

			fmt.Printf("Config:  %s\n", paths.Config)
			fmt.Printf("Data:    %s\n", paths.Data)
			fmt.Printf("Logs:    %s\n", paths.Logs)
			fmt.Println()

			cfg, err := config.Load(paths.Config)
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Println("Config:  not found (using defaults)")
				} else {
					fmt.Printf("Config:  error loading: %v\n", err)
				}
				return nil
			}

			salonID := cfg.Salon.ID
			if salonID == "" {
				salonID = "(not set)"
			}
			fmt.Printf("Salon:   id=%s name=%q tz=%s\n", salonID, cfg.Salon.Name, cfg.Salon.Timezone)
			fmt.Printf("Server:  port=%d bind=%s auth=%s\n",
				cfg.Server.Port, cfg.Server.Bind, authMode(cfg))
			fmt.Printf("Store:   %s\n", paths.DatabasePath(&cfg))

			if cfg.Redis.Enabled {
				fmt.Printf("Redis:   %s db=%d prefix=%s\n", cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.Prefix)
			} else {
				fmt.Println("Redis:   disabled (in-process buffer)")
			}

			if cfg.Genai.Endpoint != "" {
				fmt.Printf("Genai:   %s model=%s\n", cfg.Genai.Endpoint, cfg.Genai.Model)
			} else {
				fmt.Println("Genai:   (not configured — fallback replies only)")
			}

			if cfg.Whatsapp.Endpoint != "" {
				fmt.Printf("Send:    %s\n", cfg.Whatsapp.Endpoint)
			} else {
				fmt.Println("Send:    console (no provider endpoint)")
			}

			fmt.Printf("Engine:  debounce=%dms session_ttl=%dmin greeting=%dh\n",
				cfg.Engine.DebounceMillis, cfg.Engine.SessionTTLMin, cfg.Engine.GreetingWindowHr)

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Printf("\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Printf("  - %s: %s\n", issue.Path, issue.Message)
				}
			}

			return nil
		},
	}

	return cmd
}

func authMode(cfg config.Config) string {
	if cfg.Server.Token != "" {
		return "token"
	}
	return "none"
}
