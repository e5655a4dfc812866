package cli

import (
	"errors"
	"fmt"
	"os"

	"alcyxob/fitness-content/internal/config"
	"alcyxob/fitness-content/internal/domain"
	"alcyxob/fitness-content/internal/repository/mongo"
	"alcyxob/fitness-content/internal/service"

	"github.com/spf13/cobra"
)

// EditorCmd returns the editor account command
func EditorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "editor",
		Short: "Manage editor accounts",
	}

	cmd.AddCommand(editorCreateCmd())

	return cmd
}

func editorCreateCmd() *cobra.Command {
	var (
		name      string
		email     string
		password  string
		role      string
		configDir string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an editor account directly in MongoDB",
		Long: `Create an editor account without going through the API. This is how the
first admin is created, since registering through the API needs an admin token.

The password can also be given in the CONTENTCTL_PASSWORD environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("CONTENTCTL_PASSWORD")
			}
			if name == "" || email == "" || password == "" {
				return errors.New("--name, --email and --password are required")
			}
			r := domain.Role(role)
			if !r.Valid() {
				return fmt.Errorf("unknown role %q (want admin, editor or producer)", role)
			}

			log := cmdLogger(cmd)
			defer log.Sync()

			cfg, err := config.LoadConfig(configDir)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			client, err := mongo.ConnectDB(cfg.Database.URI)
			if err != nil {
				return fmt.Errorf("connect to MongoDB: %w", err)
			}
			defer func() { _ = mongo.DisconnectDB(client) }()

			db := client.Database(cfg.Database.Name)
			// The unique email index must exist before the first insert.
			mongo.EnsureIndexes(cmd.Context(), db, log)

			// Registering never signs a token, so any non-empty secret will do.
			secret := cfg.JWT.Secret
			if secret == "" {
				secret = "unused"
			}
			auth := service.NewAuthService(mongo.NewMongoEditorRepository(db), secret, cfg.JWT.Expiration)
			editor, err := auth.Register(cmd.Context(), name, email, password, r)
			if err != nil {
				if errors.Is(err, service.ErrEditorAlreadyExists) {
					return fmt.Errorf("an editor with email %s already exists", email)
				}
				return err
			}

			good.Fprintf(cmd.OutOrStdout(), "✓ Created %s %s", editor.Role, editor.Email)
			fmt.Fprintf(cmd.OutOrStdout(), " (%s)\n", editor.ID.Hex())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Login email")
	cmd.Flags().StringVar(&password, "password", "", "Login password")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleAdmin), "Role: admin, editor or producer")
	cmd.Flags().StringVar(&configDir, "config", ".", "Directory holding config.yaml for the MongoDB connection")

	return cmd
}
